// Package cli defines the galeri command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tengrikut/galeri/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the config file and applies the --log-level override.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// Execute builds the command tree and runs it with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command. Without a subcommand it browses
// the gallery.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "galeri",
		Short:         "Browse, build and serve a paginated image gallery",
		SilenceUsage:  true, // don't show usage on runtime errors
		SilenceErrors: true, // let main print errors once
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ~/.config/galeri/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug|info|warn|error)")

	browse := newBrowseCmd(opts)
	cmd.AddCommand(browse)
	cmd.AddCommand(newSplitCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	cmd.Args = browse.Args
	cmd.Flags().AddFlagSet(browse.Flags())
	cmd.RunE = browse.RunE

	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
