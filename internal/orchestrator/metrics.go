package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the routing collectors. A nil *Metrics records nothing.
type Metrics struct {
	routeDuration *prometheus.HistogramVec
	unknown       *prometheus.CounterVec
}

// NewMetrics registers the routing collectors with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		routeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oneinch_mcp_route_duration_seconds",
				Help:    "Duration of routed tool, resource and prompt calls in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind", "service", "status"},
		),
		unknown: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oneinch_mcp_route_unknown_total",
				Help: "Total number of requests for names no service owns",
			},
			[]string{"kind"},
		),
	}
}

// ObserveRoute records one routed call.
func (m *Metrics) ObserveRoute(kind, svc string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.routeDuration.WithLabelValues(kind, svc, status).Observe(duration.Seconds())
}

// IncUnknown counts a lookup that matched no service.
func (m *Metrics) IncUnknown(kind string) {
	if m == nil {
		return
	}
	m.unknown.WithLabelValues(kind).Inc()
}
