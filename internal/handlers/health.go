package handlers

import (
	"context"
	"net/http"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/orchestrator"
)

// HealthChecker checks every registered service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) *orchestrator.HealthStatus
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checker HealthChecker
	logger  *common.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker HealthChecker, logger *common.Logger) *HealthHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &HealthHandler{checker: checker, logger: logger}
}

// ServeHTTP handles GET /health. Anything but healthy is reported with 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := h.checker.HealthCheck(r.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		h.logger.Warn().Str("status", status.Status).Msg("Health check reported failing services")
	}
	WriteJSON(w, code, status)
}
