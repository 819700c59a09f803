// Package metrics provides the Prometheus request metrics of the sample service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label names shared by the request metrics.
const (
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"
)

// Manager owns a registry and the request metrics registered on it.
// It is created once per process and handed to middleware and the
// exposition handler.
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	constLabels       prometheus.Labels
	registry          *prometheus.Registry
	runtimeCollectors bool

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := []string{LabelMethod, LabelRoute, LabelStatusCode}

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		labels,
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: m.constLabels,
		},
		labels,
	)

	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// RecordHTTPRequest counts one finished request and observes its duration.
func (m *Manager) RecordHTTPRequest(method, route, statusCode string, seconds float64) {
	m.httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(seconds)
	m.httpRequests.WithLabelValues(method, route, statusCode).Inc()
}

// Handler serves every metric registered on the manager's registry in
// the Prometheus text exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPRequests returns the request counter, mainly for assertions.
func (m *Manager) HTTPRequests() *prometheus.CounterVec {
	return m.httpRequests
}
