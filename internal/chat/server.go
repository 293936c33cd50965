// Package chat serves the web chat API backed by the LLM proxy service.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/llm"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// Chatter answers one chat turn.
type Chatter interface {
	Chat(ctx context.Context, message, conversationID string) (*llm.ChatResponse, error)
	Model() string
}

// Config holds the chat server listen address and CORS origins.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// Request is the POST /chat body.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// Response is the envelope for every chat API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server is the gin-based chat HTTP server.
type Server struct {
	chatter Chatter
	logger  *common.Logger
	engine  *gin.Engine
	server  *http.Server
}

// New builds the chat server and its routes.
func New(cfg Config, chatter Chatter, logger *common.Logger) *Server {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Server{chatter: chatter, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || containsWildcard(cfg.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	engine.POST("/chat", s.handleChat)
	engine.GET("/health", s.handleHealth)
	s.engine = engine

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("Chat server starting")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("chat server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down chat server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("chat server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleChat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, Response{Error: (&service.MissingParamsError{Params: []string{"message"}}).Error()})
		return
	}

	resp, err := s.chatter.Chat(c.Request.Context(), req.Message, req.ConversationID)
	if err != nil {
		s.logger.Error().
			Str("correlation_id", c.GetString("correlation_id")).
			Str("conversation_id", req.ConversationID).
			Err(err).
			Msg("Chat request failed")
		c.JSON(http.StatusInternalServerError, Response{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "chat",
		"model":     s.chatter.Model(),
		"version":   common.GetVersion(),
		"timestamp": time.Now().UTC(),
	})
}

// requestLogger assigns a correlation ID and logs each request, with the
// level chosen by status code.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set("correlation_id", correlationID)
		c.Header("X-Correlation-ID", correlationID)

		c.Next()

		status := c.Writer.Status()
		event := s.logger.Debug()
		if status >= 500 {
			event = s.logger.Error()
		} else if status >= 400 {
			event = s.logger.Warn()
		}
		event.
			Str("correlation_id", correlationID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("HTTP request")
	}
}
