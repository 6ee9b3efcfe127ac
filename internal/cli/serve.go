package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tengrikut/galeri/internal/logging"
	"github.com/tengrikut/galeri/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, dir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built gallery over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return fmt.Errorf("load galeri config: %w", err)
			}
			opts := server.Options{
				Addr:   cfg.Serve.Addr,
				Dir:    cfg.Serve.Dir,
				Logger: logging.New(cmd.ErrOrStderr(), cfg.LogLevel),
			}
			if addr != "" {
				opts.Addr = addr
			}
			if dir != "" {
				opts.Dir = dir
			}
			return server.Run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serve.addr)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to serve (overrides serve.dir)")
	return cmd
}
