// Package server runs the MCP HTTP transport: JSON-RPC on /mcp plus the REST
// catalog, health, version and metrics routes.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/devansh-m12/doraemon-sub001/internal/app"
	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// maxBodySize caps request bodies on every route.
const maxBodySize = 1 << 20

// Server owns the http.Server for one App.
type Server struct {
	app     *app.App
	logger  *common.Logger
	metrics *httpMetrics
	server  *http.Server
}

// New wires routes and middleware for application. HTTP metrics are
// registered on the app registry when metrics are enabled.
func New(application *app.App) *Server {
	s := &Server{
		app:    application,
		logger: application.Logger,
	}
	if application.Metrics != nil {
		s.metrics = newHTTPMetrics(application.Registry)
	}

	cfg := application.Config.Server
	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           s.withMiddleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second, // llm_chat may run several tool rounds
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("endpoint", "http://"+s.server.Addr+"/mcp").
		Int("services", len(s.app.Orchestrator.GetServiceNames())).
		Msg("MCP HTTP server listening")

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("MCP HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
