package swaggermcp

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates instrumentation for the upload pipeline and the
// generated endpoints. It carries its own registry so tests can create
// isolated instances without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	uploads            *prometheus.CounterVec
	activations        *prometheus.CounterVec
	activationDuration prometheus.Histogram
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swaggermcp",
		Name:      "uploads_total",
		Help:      "Source uploads received, by outcome.",
	}, []string{"outcome"})

	m.activations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swaggermcp",
		Name:      "activations_total",
		Help:      "Generation activations attempted, by outcome.",
	}, []string{"outcome"})

	m.activationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "swaggermcp",
		Name:      "activation_duration_seconds",
		Help:      "Time to stop the old listener and bring up the new one.",
		Buckets:   prometheus.DefBuckets,
	})

	m.invocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swaggermcp",
		Name:      "endpoint_invocations_total",
		Help:      "Generated endpoint invocations, by route and outcome.",
	}, []string{"route", "outcome"})

	m.invocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "swaggermcp",
		Name:      "endpoint_invocation_duration_seconds",
		Help:      "Generated endpoint invocation latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	m.registry.MustRegister(
		m.uploads,
		m.activations,
		m.activationDuration,
		m.invocations,
		m.invocationDuration,
	)
	return m
}

// ObserveUpload records one upload attempt.
func (m *Metrics) ObserveUpload(outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

// ObserveActivation records one activation attempt and its duration.
func (m *Metrics) ObserveActivation(outcome string, d time.Duration) {
	m.activations.WithLabelValues(outcome).Inc()
	m.activationDuration.Observe(d.Seconds())
}

// ObserveInvocation records one generated endpoint call.
func (m *Metrics) ObserveInvocation(route, outcome string, d time.Duration) {
	m.invocations.WithLabelValues(route, outcome).Inc()
	m.invocationDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
