package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdpress"
)

func newBuildCmd(configPath *string) *cobra.Command {
	var force, drafts, future bool

	c := &cobra.Command{
		Use:   "build",
		Short: "Render the site to static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if drafts {
				cfg.Build.IncludeDrafts = true
			}
			if future {
				cfg.Build.IncludeFuture = true
			}

			res, err := mdpress.BuildWith(cfg, mdpress.BuildOptions{Force: force})
			if err != nil {
				return err
			}
			fmt.Printf("built %d posts, %d pages, %d tag pages and %d assets into %s in %s\n",
				res.Posts, res.Pages, res.TagPages, res.Assets, res.OutputDir,
				res.Duration.Round(time.Millisecond))
			if res.ImagesResized > 0 {
				fmt.Printf("resized %d images\n", res.ImagesResized)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "replace the output directory even if it holds foreign files")
	c.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")
	c.Flags().BoolVar(&future, "future", false, "include future-dated posts")
	return c
}
