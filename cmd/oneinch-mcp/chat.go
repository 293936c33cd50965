package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/devansh-m12/doraemon-sub001/internal/chat"
	"github.com/devansh-m12/doraemon-sub001/internal/config"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Serve the chat API backed by the OpenRouter LLM service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application, err := bootstrap(ctx, opts, cmd, func(cfg *config.Config) {
				config.ApplyChatFlagOverrides(cfg, port)
			})
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			if application.LLM == nil {
				return errors.New("chat server requires openrouter.api_key (or OPENROUTER_API_KEY)")
			}

			cfg := application.Config.Chat
			srv := chat.New(chat.Config{
				Host:           cfg.Host,
				Port:           cfg.Port,
				AllowedOrigins: cfg.AllowedOrigins,
			}, application.LLM, application.Logger)
			return runUntilDone(ctx, application.Logger, srv)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "chat server port (overrides config)")
	return cmd
}
