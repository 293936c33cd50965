package mcp

import (
	"context"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// ServerName is advertised in initialize responses.
const ServerName = "oneinch-mcp"

// ServiceLister reports the registered service keys.
type ServiceLister interface {
	GetServiceNames() []string
}

// NewServer builds an MCP server exposing every manifest entry of r.
func NewServer(r Router, services ServiceLister, logger *common.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	counts := RegisterFromRouter(s, r, logger)
	s.AddTool(VersionTool(), VersionToolHandler(services.GetServiceNames))

	logger.Info().
		Int("tools", counts.Tools).
		Int("resources", counts.Resources).
		Int("prompts", counts.Prompts).
		Msg("MCP server initialized")
	return s
}

// ServeStdio serves s over in/out until ctx is cancelled or in closes.
// Protocol errors are written to the logger; stdout carries only protocol
// messages.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *common.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(logWriter{logger}, "", 0))
	return stdio.Listen(ctx, in, out)
}

// logWriter adapts the structured logger for the stdio server's *log.Logger.
type logWriter struct {
	logger *common.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Error().Str("source", "mcp-stdio").Msg(string(p))
	return len(p), nil
}
