package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/devansh-m12/doraemon-sub001/internal/mcp"
)

func newStdioCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application, err := bootstrap(ctx, opts, cmd, nil)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			s := mcp.NewServer(application.Orchestrator, application.Orchestrator, application.Logger)
			application.Logger.Info().Msg("Serving MCP over stdio")

			err = mcp.ServeStdio(ctx, s, os.Stdin, os.Stdout, application.Logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
