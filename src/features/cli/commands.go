package cli

import (
	"fmt"
	"strings"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/spf13/cobra"
)

func newServeCommand(runner Runner, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Serve(cmd.Context(), opts.configPath)
		},
	}
}

func newFeaturedCommand(runner Runner, opts *options) *cobra.Command {
	var limit int
	var mode string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List the featured releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runner.Catalog(opts.configPath)
			if err != nil {
				return err
			}
			releases, err := svc.GetFeed(cmd.Context(), catalog.ParseFeedMode(mode), limit, refresh)
			if err != nil {
				return fmt.Errorf("featured: %w", err)
			}
			if opts.json {
				return writeJSON(cmd, releases)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReleases(releases))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 24, "Number of releases")
	cmd.Flags().StringVar(&mode, "mode", string(catalog.FeedFeatured), "Feed mode (featured or recent-popular)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache")
	return cmd
}

func newSearchCommand(runner Runner, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runner.Catalog(opts.configPath)
			if err != nil {
				return err
			}
			releases, err := svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if opts.json {
				return writeJSON(cmd, releases)
			}
			if len(releases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No releases found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReleases(releases))
			return nil
		},
	}
}

func newReleaseCommand(runner Runner, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "release <id>",
		Short: "Show one release with its tracklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runner.Catalog(opts.configPath)
			if err != nil {
				return err
			}
			release, err := svc.GetDetails(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("release %s: %w", args[0], err)
			}
			if opts.json {
				return writeJSON(cmd, release)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRelease(release))
			return nil
		},
	}
}
