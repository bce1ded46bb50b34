// Package metrics owns the Prometheus collectors exported by the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "venyro"

// Metrics is a private Prometheus registry with the gateway's collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the gateway collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway requests by action and HTTP status code.",
		}, []string{"action", "code"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "provider_attempts_total",
			Help:      "Provider calls made, including retries, by action and outcome.",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "End-to-end gateway request latency by action.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 60},
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.attempts,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records one completed gateway request.
func (m *Metrics) ObserveRequest(action string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(action, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveAttempt records one provider call, labelled "retried", "succeeded"
// or "failed".
func (m *Metrics) ObserveAttempt(action, outcome string) {
	m.attempts.WithLabelValues(action, outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
