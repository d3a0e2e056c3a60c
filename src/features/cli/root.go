// Package cli is the musevault command line: the HTTP server plus one-shot catalog queries.
package cli

import (
	"context"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/contre95/musevault/src/music"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is read when --config is not given.
const DefaultConfigPath = "config.yaml"

// Catalog is the read side of the catalog façade used by the query commands.
type Catalog interface {
	GetFeed(ctx context.Context, mode catalog.FeedMode, limit int, forceRefresh bool) ([]music.Release, error)
	Search(ctx context.Context, query string) ([]music.Release, error)
	GetDetails(ctx context.Context, id string) (*music.Release, error)
}

// Runner builds the application for a given config file.
type Runner interface {
	Serve(ctx context.Context, configPath string) error
	Catalog(configPath string) (Catalog, error)
}

type options struct {
	configPath string
	json       bool
}

// NewRootCommand creates the musevault root command. Without a subcommand it serves.
func NewRootCommand(runner Runner) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "musevault",
		Short:         "Discogs catalog proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Serve(cmd.Context(), opts.configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", DefaultConfigPath, "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON instead of tables")

	rootCmd.AddCommand(newServeCommand(runner, opts))
	rootCmd.AddCommand(newFeaturedCommand(runner, opts))
	rootCmd.AddCommand(newSearchCommand(runner, opts))
	rootCmd.AddCommand(newReleaseCommand(runner, opts))

	return rootCmd
}
