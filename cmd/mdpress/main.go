package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/mdpress"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "mdpress",
		Short: "mdpress turns a directory of Markdown into a personal blog",
		Long: `mdpress turns a directory of Markdown into a personal blog.

The same press.toml drives two modes: "build" renders plain static files
for any web host, "serve" hosts the site directly with a web editor and
optional analytics on top.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", mdpress.DefaultConfigFile, "path to the site configuration")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newInitCmd(),
		newNewCmd(&configPath),
		newBuildCmd(&configPath),
		newServeCmd(&configPath),
		newCheckCmd(&configPath),
		newVersionCmd(),
	)
	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig wraps mdpress.LoadConfig with a friendlier message when the
// config file is missing entirely.
func loadConfig(path string) (*mdpress.Config, error) {
	cfg, err := mdpress.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s found; run `mdpress init` to start a site or pass --config", path)
	}
	return cfg, err
}
