// Package metrics provides Prometheus metrics for the Mission Control dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authFailures        prometheus.Counter

	// Upstream Metrics - external store, payments provider, AI providers
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	// Business Metrics
	healthScores      prometheus.Histogram
	knowledgeLookups  *prometheus.CounterVec
	secondaryFailures *prometheus.CounterVec
	pipelinePartners  prometheus.Gauge
	pipelineValue     prometheus.Gauge

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mission_control",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "auth_failures_total",
		Help:        "Requests rejected by the Basic-Auth check",
		ConstLabels: m.constLabels,
	})

	m.upstreamCalls = m.counterVec("upstream_calls_total",
		"Outbound calls by target, operation and outcome (status code or transport_error)",
		"target", "operation", "outcome")
	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds",
		"Outbound call latency in milliseconds",
		"target", "operation")

	m.healthScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "partner_health_score",
		Help:        "Distribution of computed partner health scores",
		Buckets:     []float64{10, 40, 70, 100},
		ConstLabels: m.constLabels,
	})
	m.knowledgeLookups = m.counterVec("knowledge_lookups_total",
		"Knowledge lookups by answering mode (ai, search, fallback)",
		"mode")
	m.secondaryFailures = m.counterVec("secondary_failures_total",
		"Non-fatal secondary effects that failed, by operation",
		"operation")
	m.pipelinePartners = m.gauge("pipeline_partners",
		"Partners counted by the last pipeline aggregation")
	m.pipelineValue = m.gauge("pipeline_value",
		"Pipeline value estimate from the last aggregation")

	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total errors by error type",
		"error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total errors by HTTP endpoint",
		"endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of requests that resulted in errors",
		"component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordAuthFailure counts a rejected Basic-Auth attempt.
func RecordAuthFailure() {
	globalManager.authFailures.Inc()
}

// RecordUpstreamCall counts an outbound call.
func RecordUpstreamCall(target, operation, outcome string) {
	globalManager.upstreamCalls.WithLabelValues(target, operation, outcome).Inc()
}

// RecordUpstreamLatency records outbound call latency.
func RecordUpstreamLatency(target, operation string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(target, operation).Observe(latencyMs)
}

// ObserveHealthScore records a computed partner health score.
func ObserveHealthScore(score int) {
	globalManager.healthScores.Observe(float64(score))
}

// RecordKnowledgeLookup counts a knowledge lookup by answering mode.
func RecordKnowledgeLookup(mode string) {
	globalManager.knowledgeLookups.WithLabelValues(mode).Inc()
}

// RecordSecondaryFailure counts a failed non-fatal side effect.
func RecordSecondaryFailure(operation string) {
	globalManager.secondaryFailures.WithLabelValues(operation).Inc()
}

// UpdatePipeline publishes the totals of the last pipeline aggregation.
func UpdatePipeline(partners, value int) {
	globalManager.pipelinePartners.Set(float64(partners))
	globalManager.pipelineValue.Set(float64(value))
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records errors by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records latency for requests that resulted in errors.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage updates the system memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry for serving metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
