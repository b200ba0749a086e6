// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for authentication operations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthAttemptsTotal   *prometheus.CounterVec
	GuardRejectionTotal *prometheus.CounterVec
	IdentityCacheTotal  *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates and registers all metrics on registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookworm_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookworm_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookworm_auth_attempts_total",
				Help: "Register and login attempts by outcome",
			},
			[]string{"operation", "outcome", "code"},
		),
		GuardRejectionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookworm_guard_rejections_total",
				Help: "Requests rejected by the access guard by reason",
			},
			[]string{"reason"},
		),
		IdentityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookworm_identity_cache_lookups_total",
				Help: "Identity cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.GuardRejectionTotal,
		m.IdentityCacheTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// AuthAttempt records the outcome of a register or login call.
func (m *Metrics) AuthAttempt(operation, outcome, code string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(operation, outcome, code).Inc()
}

// GuardRejection records a request rejected by the access guard.
func (m *Metrics) GuardRejection(reason string) {
	if m == nil {
		return
	}
	m.GuardRejectionTotal.WithLabelValues(reason).Inc()
}

// IdentityCacheLookup records an identity cache hit or miss.
func (m *Metrics) IdentityCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.IdentityCacheTotal.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
