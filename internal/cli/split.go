package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tengrikut/galeri/internal/logging"
	"github.com/tengrikut/galeri/internal/partition"
)

type splitOptions struct {
	source      string
	out         string
	perPage     int
	watch       bool
	debounce    time.Duration
	lockTimeout time.Duration
}

func newSplitCmd(root *rootOptions) *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Partition the source catalog into page files and a search index",
		Long: `Split reads sunum.json and cizelge.json from the source directory and
writes json/page-N.json, json/cizelge.json and pagefind/pagefind.json to the
output directory. With --watch it rebuilds whenever a source file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplit(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "source directory (overrides build.source_dir)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (overrides build.out_dir)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 0, "items per page (overrides build.items_per_page)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild when source files change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", partition.DefaultWatchDebounce, "quiet period before a watch rebuild")
	cmd.Flags().DurationVar(&opts.lockTimeout, "lock-timeout", 0, "how long to wait for another build (default 10s)")
	return cmd
}

func runSplit(cmd *cobra.Command, root *rootOptions, opts *splitOptions) error {
	cfg, err := root.load()
	if err != nil {
		return fmt.Errorf("load galeri config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

	buildOpts := partition.Options{
		SourceDir:    cfg.Build.SourceDir,
		OutDir:       cfg.Build.OutDir,
		ItemsPerPage: cfg.Build.ItemsPerPage,
		LockTimeout:  opts.lockTimeout,
		Logger:       logger,
	}
	if opts.source != "" {
		buildOpts.SourceDir = opts.source
	}
	if opts.out != "" {
		buildOpts.OutDir = opts.out
	}
	if opts.perPage < 0 {
		return fmt.Errorf("--per-page must be positive, got %d", opts.perPage)
	}
	if opts.perPage > 0 {
		buildOpts.ItemsPerPage = opts.perPage
	}

	out := cmd.OutOrStdout()
	report := func(res partition.Result) {
		fmt.Fprintf(out, "%d items in %d pages written to %s\n", res.TotalItems(), len(res.Pages), buildOpts.OutDir)
		if res.Skipped > 0 {
			fmt.Fprintf(out, "%d invalid items skipped\n", res.Skipped)
		}
	}

	if !opts.watch {
		res, err := partition.Run(cmd.Context(), buildOpts)
		if err != nil {
			return err
		}
		report(res)
		return nil
	}

	logger.Info("watching source directory", "dir", buildOpts.SourceDir)
	return partition.Watch(cmd.Context(), buildOpts, opts.debounce, func(res partition.Result, err error) {
		if err != nil {
			logger.Error("build failed", "error", err)
			return
		}
		report(res)
	})
}
