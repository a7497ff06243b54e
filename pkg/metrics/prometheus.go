// Package metrics provides Prometheus metrics for the cpstats service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the cpstats service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Aggregation pipeline
	aggregations        *prometheus.CounterVec
	aggregationDuration prometheus.Histogram
	submissionsScanned  prometheus.Counter
	duplicatesSkipped   prometheus.Counter
	problemsSolved      prometheus.Histogram

	// Cache
	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec
	cacheEntries *prometheus.GaugeVec

	// Upstream judges
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// LLM
	llmRequests *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
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
		namespace:        "cpstats",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauges should be resampled.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)
	latencyBuckets := []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	m.aggregations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "aggregations_total",
		Help:        "Aggregation requests by policy and outcome",
		ConstLabels: constLabels,
	}, []string{"policy", "outcome"})

	m.aggregationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "aggregation_duration_milliseconds",
		Help:        "End-to-end aggregation latency including upstream fetches",
		Buckets:     latencyBuckets,
		ConstLabels: constLabels,
	})

	m.submissionsScanned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_scanned_total",
		Help:        "Submissions scanned by the dedupe pass",
		ConstLabels: constLabels,
	})

	m.duplicatesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_accepted_total",
		Help:        "Accepted submissions skipped because the problem was already solved",
		ConstLabels: constLabels,
	})

	m.problemsSolved = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "solved_problems",
		Help:        "Distinct solved problems per aggregated handle",
		Buckets:     []float64{0, 10, 50, 100, 250, 500, 1000, 2000, 5000},
		ConstLabels: constLabels,
	})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_lookups_total",
		Help:        "Cache lookups by cache name and status (hit, miss, expired, version_mismatch, shape_mismatch)",
		ConstLabels: constLabels,
	}, []string{"cache", "status"})

	m.cacheWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_writes_total",
		Help:        "Cache writes by cache name",
		ConstLabels: constLabels,
	}, []string{"cache"})

	m.cacheEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_entries",
		Help:        "Entries currently held per cache, stale ones included",
		ConstLabels: constLabels,
	}, []string{"cache"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Judge API requests by judge, endpoint and outcome",
		ConstLabels: constLabels,
	}, []string{"judge", "endpoint", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_latency_milliseconds",
		Help:        "Judge API latency by judge and endpoint",
		Buckets:     latencyBuckets,
		ConstLabels: constLabels,
	}, []string{"judge", "endpoint"})

	m.llmRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "llm_requests_total",
		Help:        "Coaching advice generations by source (llm, fallback, unavailable)",
		ConstLabels: constLabels,
	}, []string{"source"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     latencyBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rate_limited_total",
		Help:        "Requests rejected by the per-client rate limiter",
		ConstLabels: constLabels,
	}, []string{"endpoint"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Total number of errors by component",
		ConstLabels: constLabels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Total number of errors by type and severity",
		ConstLabels: constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Total number of errors by HTTP endpoint",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "error_latency_milliseconds",
		Help:        "Latency of operations that resulted in errors",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Current memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average garbage collection pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: constLabels,
	})
}

// Aggregation Pipeline Functions.

// RecordAggregation counts one aggregation by policy and outcome.
func RecordAggregation(policy, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregations.WithLabelValues(policy, outcome).Inc()
}

// RecordAggregationDuration records end-to-end aggregation latency.
func RecordAggregationDuration(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregationDuration.Observe(latencyMs)
}

// RecordScan records one dedupe pass.
func RecordScan(scanned, duplicates, solved int) {
	if !globalManager.enabled {
		return
	}
	globalManager.submissionsScanned.Add(float64(scanned))
	globalManager.duplicatesSkipped.Add(float64(duplicates))
	globalManager.problemsSolved.Observe(float64(solved))
}

// Cache Functions.

// RecordCacheLookup counts a lookup outcome for the named cache.
func RecordCacheLookup(cache, status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheLookups.WithLabelValues(cache, status).Inc()
}

// RecordCacheWrite counts a write to the named cache.
func RecordCacheWrite(cache string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheWrites.WithLabelValues(cache).Inc()
}

// UpdateCacheEntries sets the entry gauge for the named cache.
func UpdateCacheEntries(cache string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheEntries.WithLabelValues(cache).Set(float64(count))
}

// Upstream Functions.

// RecordUpstreamRequest counts a judge API call and observes its latency.
func RecordUpstreamRequest(judge, endpoint, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(judge, endpoint, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(judge, endpoint).Observe(latencyMs)
}

// RecordAdvice counts a coaching advice generation by source.
func RecordAdvice(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.llmRequests.WithLabelValues(source).Inc()
}

// HTTP Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited(endpoint string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// Error Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Configure rebuilds the global manager on a fresh registry. Call it once at
// startup, before any handler reads GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// RefreshInterval reports how often the global manager's gauges should be resampled.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
