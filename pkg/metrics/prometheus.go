// Package metrics provides Prometheus metrics for the PromptElo novelty service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	promptsScored   prometheus.Counter
	noveltyRequests *prometheus.CounterVec
	noveltyScores   prometheus.Histogram

	// Embedding provider metrics
	embeddingLatency prometheus.Histogram
	embeddingErrors  prometheus.Counter

	// Vector store metrics
	storeRecords      prometheus.Gauge
	storeInsertErrors prometheus.Counter
	storeQueryLatency prometheus.Histogram
	storeInsertLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimitRejections prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
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
		namespace:        "promptelo",
		subsystem:        "server",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.promptsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prompts_scored_total",
		Help:      "Total number of prompts scored for novelty",
	})

	m.noveltyRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "novelty_requests_total",
		Help:      "Total novelty evaluations by outcome",
	}, []string{"outcome"})

	m.noveltyScores = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "novelty_score",
		Help:      "Distribution of computed novelty scores",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.embeddingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_latency_ms",
		Help:      "Embedding provider call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.embeddingErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_errors_total",
		Help:      "Total embedding provider failures",
	})

	m.storeRecords = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_records",
		Help:      "Number of embeddings currently stored",
	})

	m.storeInsertErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_insert_errors_total",
		Help:      "Total vector store insert failures (swallowed after scoring)",
	})

	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_ms",
		Help:      "Vector store similarity query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeInsertLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_insert_latency_ms",
		Help:      "Vector store insert latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.rateLimitRejections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_rejections_total",
		Help:      "Total requests rejected by the per-client rate limiter",
	})
}

// RecordPromptScored increments the scored prompts counter and observes the score.
func RecordPromptScored(noveltyScore float64) {
	globalManager.promptsScored.Inc()
	globalManager.noveltyScores.Observe(noveltyScore)
}

// RecordNoveltyRequest records a novelty evaluation by outcome ("ok", "embedding_error",
// "query_error", "insert_error").
func RecordNoveltyRequest(outcome string) {
	globalManager.noveltyRequests.WithLabelValues(outcome).Inc()
}

// RecordEmbeddingLatency records embedding provider latency in milliseconds.
func RecordEmbeddingLatency(latencyMs float64) {
	globalManager.embeddingLatency.Observe(latencyMs)
}

// RecordEmbeddingError increments the embedding failure counter.
func RecordEmbeddingError() {
	globalManager.embeddingErrors.Inc()
}

// UpdateStoreRecords sets the stored embeddings gauge.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreInsertError increments the swallowed insert failure counter.
func RecordStoreInsertError() {
	globalManager.storeInsertErrors.Inc()
}

// RecordStoreQueryLatency records similarity query latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreInsertLatency records insert latency in milliseconds.
func RecordStoreInsertLatency(latencyMs float64) {
	globalManager.storeInsertLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited increments the rate limiter rejection counter.
func RecordRateLimited() {
	globalManager.rateLimitRejections.Inc()
}

// GetRegistry returns the custom Prometheus registry for serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
