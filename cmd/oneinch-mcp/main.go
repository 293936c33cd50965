// Command oneinch-mcp exposes the 1inch DeFi APIs as an MCP server over
// stdio or HTTP, and serves the companion chat API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devansh-m12/doraemon-sub001/internal/app"
	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/config"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configFiles []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "oneinch-mcp",
		Short:        "MCP server for the 1inch DeFi APIs",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringArrayVarP(&opts.configFiles, "config", "c", nil,
		"configuration file path (can be specified multiple times)")

	root.AddCommand(
		newStdioCmd(opts),
		newHTTPCmd(opts),
		newChatCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)

	return root
}

// loadConfig loads the explicit config files, or the auto-discovered one.
func (o *rootOptions) loadConfig() (*config.Config, []string, error) {
	files := o.configFiles
	if len(files) == 0 {
		files = config.Discover()
	}
	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, files, nil
}

// validate reports configuration issues in the same shape for every command.
func validate(cfg *config.Config, w io.Writer) error {
	issues := cfg.Validate()
	if len(issues) == 0 {
		return nil
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Configuration error: mandatory fields are missing or invalid:")
	fmt.Fprintln(w, "")
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Values can be set in %s, via environment variables (ONEINCH_API_KEY, ...), or CLI flags.\n", config.FileName)
	fmt.Fprintln(w, "")
	return errors.New("invalid configuration")
}

// setupLogger creates an arbor logger based on config.
func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(cfg.Logging)
}

// bootstrap loads and validates config, then builds the logger and the app.
func bootstrap(ctx context.Context, opts *rootOptions, cmd *cobra.Command, override func(*config.Config)) (*app.App, error) {
	cfg, files, err := opts.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := validate(cfg, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}

	logger := setupLogger(cfg)
	logger.Info().
		Str("config_files", strings.Join(files, ",")).
		Str("version", common.GetVersion()).
		Msg("Configuration loaded")

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return nil, err
	}
	return application, nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without starting a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, files, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := validate(cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (files: %v)\n", files)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oneinch-mcp version %s\n", common.GetFullVersion())
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
