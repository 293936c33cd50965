package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ServiceHealth is the check result of one service.
type ServiceHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthStatus aggregates the check results of every registered service.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
}

// Healthy reports whether every service check succeeded.
func (h *HealthStatus) Healthy() bool {
	return h.Status == StatusHealthy
}

// HealthCheck checks every service concurrently. A failing or slow check
// only affects its own entry.
func (o *Orchestrator) HealthCheck(ctx context.Context) *HealthStatus {
	results := make([]ServiceHealth, len(o.entries))

	var wg sync.WaitGroup
	for i, e := range o.entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.check(ctx, e)
		}()
	}
	wg.Wait()

	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]ServiceHealth, len(o.entries)),
	}
	for i, e := range o.entries {
		status.Services[e.key] = results[i]
		if results[i].Status != StatusHealthy {
			status.Status = StatusDegraded
		}
	}
	return status
}

func (o *Orchestrator) check(ctx context.Context, e entry) (h ServiceHealth) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("service", e.key).Msgf("Health check panicked: %v", r)
			h = ServiceHealth{Status: StatusUnhealthy, Error: "health check panicked"}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.checkTimeout)
	defer cancel()

	ctx, span := o.tracer.Start(ctx, "orchestrator.health")
	defer span.End()

	if err := e.svc.Ping(ctx); err != nil {
		o.logger.Warn().Str("service", e.key).Err(err).Msg("Health check failed")
		return ServiceHealth{Status: StatusUnhealthy, Error: err.Error()}
	}
	return ServiceHealth{Status: StatusHealthy}
}
