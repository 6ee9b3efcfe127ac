package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tengrikut/galeri/internal/app"
	"github.com/tengrikut/galeri/internal/logging"
)

type browseOptions struct {
	site      string
	prefsPath string
	headless  bool
	timeout   time.Duration
}

func newBrowseCmd(root *rootOptions) *cobra.Command {
	opts := &browseOptions{}
	cmd := &cobra.Command{
		Use:   "browse [location]",
		Short: "Browse the gallery in the terminal",
		Long: `Browse opens the gallery at the given location, for example "/3" or
"/ara/kedi/2". When stdout is not a terminal, or with --headless, the items
shown at that location are printed as tab-separated lines instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.site, "site", "", "gallery site URL (overrides site_url)")
	cmd.Flags().StringVar(&opts.prefsPath, "prefs", "", "path to UI preferences file")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "print items instead of starting the UI")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "headless wait limit (default 15s)")
	return cmd
}

func runBrowse(cmd *cobra.Command, root *rootOptions, opts *browseOptions, args []string) error {
	start := ""
	if len(args) == 1 {
		start = args[0]
	}
	appOpts := app.Options{
		ConfigPath:      root.configPath,
		PrefsPath:       opts.prefsPath,
		StartPath:       start,
		SiteURL:         opts.site,
		HeadlessTimeout: opts.timeout,
	}

	if opts.headless || !isTerminal(cmd.OutOrStdout()) {
		level := root.logLevel
		if level == "" {
			level = "warn"
		}
		logger := logging.New(cmd.ErrOrStderr(), level)
		return app.RunHeadless(cmd.Context(), appOpts, cmd.OutOrStdout(), logger)
	}
	return app.Run(cmd.Context(), appOpts)
}
