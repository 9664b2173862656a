package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdpress"
	"github.com/eringen/mdpress/scaffold"
)

func newNewCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create a draft post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			slug := mdpress.Slugify(title)
			if slug == "" {
				return fmt.Errorf("cannot derive a slug from %q", title)
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			path, err := scaffold.NewPost(cfg.PostsDir(), slug, title, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("created %s (draft)\n", path)
			return nil
		},
	}
}
