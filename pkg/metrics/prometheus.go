// Package metrics provides Prometheus metrics for schema derivation and the describe API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	runtimeCollectors bool

	// Derivation Metrics
	schemaBuilds          *prometheus.CounterVec
	schemaBuildDuration   prometheus.Histogram
	descriptorsBuilt      *prometheus.CounterVec
	fieldErrors           *prometheus.CounterVec
	exclusionTokensLoaded prometheus.Counter
	exclusionSourcesMiss  prometheus.Counter

	// Registry Metrics
	registeredSchemas prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before any metric is recorded.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "numl",
		subsystem:        "schema",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: m.namespace}),
		)
	}

	m.schemaBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "builds_total",
		Help:        "Total number of schema builds by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.schemaBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "build_duration_milliseconds",
		Help:        "Histogram of schema build duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.descriptorsBuilt = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "descriptors_built_total",
		Help:        "Total number of property descriptors built by variant",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.fieldErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "field_errors_total",
		Help:        "Total number of field derivation failures by error type",
		ConstLabels: m.constLabels,
	}, []string{"error_type"})

	m.exclusionTokensLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exclusion_tokens_loaded_total",
		Help:        "Total number of exclusion tokens imported from sources",
		ConstLabels: m.constLabels,
	})

	m.exclusionSourcesMiss = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exclusion_sources_missing_total",
		Help:        "Total number of exclusion sources that did not exist and yielded an empty set",
		ConstLabels: m.constLabels,
	})

	m.registeredSchemas = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "registered",
		Help:        "Current number of registered schemas",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "Total number of HTTP errors by endpoint",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})
}

// RecordSchemaBuild counts one schema build and observes its duration.
func (m *Manager) RecordSchemaBuild(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.schemaBuilds.WithLabelValues(outcome).Inc()
	m.schemaBuildDuration.Observe(durationMs)
}

// RecordDescriptorBuilt counts one descriptor of the given variant.
func (m *Manager) RecordDescriptorBuilt(kind string) {
	if !m.enabled {
		return
	}
	m.descriptorsBuilt.WithLabelValues(kind).Inc()
}

// RecordFieldError counts one field failure of the given error type.
func (m *Manager) RecordFieldError(errorType string) {
	if !m.enabled {
		return
	}
	m.fieldErrors.WithLabelValues(errorType).Inc()
}

// RecordExclusionTokens adds n imported exclusion tokens.
func (m *Manager) RecordExclusionTokens(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.exclusionTokensLoaded.Add(float64(n))
}

// RecordExclusionSourceMissing counts one absent exclusion source.
func (m *Manager) RecordExclusionSourceMissing() {
	if !m.enabled {
		return
	}
	m.exclusionSourcesMiss.Inc()
}

// UpdateRegisteredSchemas sets the registered schema count.
func (m *Manager) UpdateRegisteredSchemas(count int) {
	if !m.enabled {
		return
	}
	m.registeredSchemas.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordSchemaBuild counts one schema build and observes its duration.
func RecordSchemaBuild(outcome string, durationMs float64) {
	globalManager.RecordSchemaBuild(outcome, durationMs)
}

// RecordDescriptorBuilt counts one descriptor of the given variant.
func RecordDescriptorBuilt(kind string) {
	globalManager.RecordDescriptorBuilt(kind)
}

// RecordFieldError counts one field failure of the given error type.
func RecordFieldError(errorType string) {
	globalManager.RecordFieldError(errorType)
}

// RecordExclusionTokens adds n imported exclusion tokens.
func RecordExclusionTokens(n int) {
	globalManager.RecordExclusionTokens(n)
}

// RecordExclusionSourceMissing counts one absent exclusion source.
func RecordExclusionSourceMissing() {
	globalManager.RecordExclusionSourceMissing()
}

// UpdateRegisteredSchemas sets the registered schema count.
func UpdateRegisteredSchemas(count int) {
	globalManager.UpdateRegisteredSchemas(count)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
