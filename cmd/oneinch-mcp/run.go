package main

import (
	"context"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// httpServer is the lifecycle shared by the MCP HTTP and chat servers.
type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// runUntilDone starts srv and shuts it down when ctx is cancelled. A start
// failure is returned immediately.
func runUntilDone(ctx context.Context, logger *common.Logger, srv httpServer) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info().Msg("Server stopped")
	return nil
}
