package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdpress/scaffold"
)

func newInitCmd() *cobra.Command {
	var title, baseURL, author string

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter site",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if title == "" {
				title = siteTitle(dir)
			}
			if baseURL == "" {
				baseURL = "https://example.com"
			}

			created, err := scaffold.Init(dir, scaffold.SiteData{
				Title:  title,
				URL:    baseURL,
				Author: author,
				Date:   time.Now().Format("2006-01-02"),
			})
			if err != nil {
				return err
			}
			for _, f := range created {
				fmt.Printf("  created %s\n", filepath.Join(dir, f))
			}

			fmt.Println()
			fmt.Println("Done. Next steps:")
			fmt.Println()
			if dir != "." {
				fmt.Printf("  cd %s\n", dir)
			}
			fmt.Println("  mdpress serve")
			fmt.Println()
			fmt.Println("Then open http://localhost:3000/. Edit press.toml to name your")
			fmt.Println("site, and see .env.example to enable the web admin.")
			return nil
		},
	}
	c.Flags().StringVar(&title, "title", "", "site title (default: derived from the directory name)")
	c.Flags().StringVar(&baseURL, "url", "", "canonical base URL (default https://example.com)")
	c.Flags().StringVar(&author, "author", "", "author name for feeds and meta tags")
	return c
}

// siteTitle derives a starter title from the target directory:
// "my-blog" becomes "My Blog".
func siteTitle(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "My Site"
	}
	parts := strings.Split(filepath.Base(abs), "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
