// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apiplate"

// Outcome labels for AuthOperations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	// AuthOperations counts account lifecycle operations by operation and outcome.
	AuthOperations *prometheus.CounterVec
	// EmailsSent counts notification attempts by template and result.
	EmailsSent *prometheus.CounterVec
	// RateLimited counts requests rejected by the auth rate limiter.
	RateLimited *prometheus.CounterVec
	// HTTPRequests counts handled requests by route pattern, method and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by route pattern and method.
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_operations_total",
				Help:      "Total number of account lifecycle operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_sent_total",
				Help:      "Total number of notification emails by template and result",
			},
			[]string{"template", "result"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and method",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthOperations,
		m.EmailsSent,
		m.RateLimited,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAuth records one lifecycle operation. A nil receiver is a no-op so
// services can run without metrics.
func (m *Metrics) ObserveAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveEmail records one notification attempt.
func (m *Metrics) ObserveEmail(template string, sent bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	m.EmailsSent.WithLabelValues(template, result).Inc()
}

// ObserveRateLimited records a rejected request.
func (m *Metrics) ObserveRateLimited(path string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(path).Inc()
}
