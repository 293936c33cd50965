package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devansh-m12/doraemon-sub001/internal/config"
	"github.com/devansh-m12/doraemon-sub001/internal/server"
)

func newHTTPCmd(opts *rootOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve MCP JSON-RPC and the REST endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application, err := bootstrap(ctx, opts, cmd, func(cfg *config.Config) {
				config.ApplyFlagOverrides(cfg, port, host)
			})
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			srv := server.New(application)
			return runUntilDone(ctx, application.Logger, srv)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "server port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "server host (overrides config)")
	return cmd
}
