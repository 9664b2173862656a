package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/mdpress"
)

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate content files and internal links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			problems, err := mdpress.Check(cfg)
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				fmt.Println("no problems found")
				return nil
			}
			for _, p := range problems {
				fmt.Println(p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}
