// Package metrics provides Prometheus metrics for the paddock aggregation service.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the paddock service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Aggregation
	aggregateComputations *prometheus.CounterVec
	aggregateLatency      *prometheus.HistogramVec
	aggregateEmpty        *prometheus.CounterVec
	aggregateRows         *prometheus.GaugeVec
	invalidRanges         prometheus.Counter

	// Ingestion
	ingestRowsLoaded  *prometheus.GaugeVec
	ingestRowsSkipped *prometheus.CounterVec
	ingestDuration    prometheus.Histogram
	fetchAttempts     *prometheus.CounterVec
	fetchLatency      prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	exportBytes         *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:        "paddock",
		subsystem:        "aggregator",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.aggregateComputations = auto.NewCounterVec(
		m.counterOpts("aggregate_computations_total", "Total number of aggregate computations by aggregate"),
		[]string{"aggregate"},
	)
	m.aggregateLatency = auto.NewHistogramVec(
		m.histogramOpts("aggregate_latency_milliseconds", "Latency of aggregate computations in milliseconds", m.histogramBuckets),
		[]string{"aggregate"},
	)
	m.aggregateEmpty = auto.NewCounterVec(
		m.counterOpts("aggregate_empty_total", "Total number of aggregate computations that produced no rows"),
		[]string{"aggregate"},
	)
	m.aggregateRows = auto.NewGaugeVec(
		m.gaugeOpts("aggregate_output_rows", "Number of rows produced by the latest computation of an aggregate"),
		[]string{"aggregate"},
	)
	m.invalidRanges = auto.NewCounter(
		m.counterOpts("invalid_ranges_total", "Total number of rejected year ranges"),
	)

	m.ingestRowsLoaded = auto.NewGaugeVec(
		m.gaugeOpts("ingest_rows_loaded", "Number of rows loaded per source table"),
		[]string{"table"},
	)
	m.ingestRowsSkipped = auto.NewCounterVec(
		m.counterOpts("ingest_rows_skipped_total", "Total number of source rows skipped during ingestion"),
		[]string{"table", "reason"},
	)
	m.ingestDuration = auto.NewHistogram(
		m.histogramOpts("ingest_duration_milliseconds", "Duration of the full record store load in milliseconds",
			[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}),
	)
	m.fetchAttempts = auto.NewCounterVec(
		m.counterOpts("fetch_attempts_total", "Total number of remote fetch attempts by outcome"),
		[]string{"outcome"},
	)
	m.fetchLatency = auto.NewHistogram(
		m.histogramOpts("fetch_latency_milliseconds", "Latency of successful remote fetches in milliseconds",
			[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.exportBytes = auto.NewCounterVec(
		m.counterOpts("export_bytes_total", "Total number of bytes written by table exports"),
		[]string{"format"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordAggregate records one computation of the named aggregate.
func (m *Manager) RecordAggregate(aggregate string, rows int, elapsed time.Duration) {
	m.aggregateComputations.WithLabelValues(aggregate).Inc()
	m.aggregateLatency.WithLabelValues(aggregate).Observe(float64(elapsed.Microseconds()) / 1000)
	m.aggregateRows.WithLabelValues(aggregate).Set(float64(rows))
	if rows == 0 {
		m.aggregateEmpty.WithLabelValues(aggregate).Inc()
	}
}

// RecordAggregate records one computation of the named aggregate.
func RecordAggregate(aggregate string, rows int, elapsed time.Duration) {
	globalManager.RecordAggregate(aggregate, rows, elapsed)
}

// RecordInvalidRange increments the rejected year range counter.
func RecordInvalidRange() {
	globalManager.invalidRanges.Inc()
}

// UpdateIngestRowsLoaded sets the number of rows loaded for a table.
func UpdateIngestRowsLoaded(table string, count int) {
	globalManager.ingestRowsLoaded.WithLabelValues(table).Set(float64(count))
}

// RecordIngestRowsSkipped adds count skipped rows for a table and reason.
func RecordIngestRowsSkipped(table, reason string, count int) {
	if count <= 0 {
		return
	}
	globalManager.ingestRowsSkipped.WithLabelValues(table, reason).Add(float64(count))
}

// RecordIngestDuration records the duration of a full store load.
func RecordIngestDuration(elapsed time.Duration) {
	globalManager.ingestDuration.Observe(float64(elapsed.Milliseconds()))
}

// RecordFetchAttempt increments the fetch attempt counter for an outcome
// (ok, retry, failed).
func RecordFetchAttempt(outcome string) {
	globalManager.fetchAttempts.WithLabelValues(outcome).Inc()
}

// RecordFetchLatency records the latency of a completed fetch.
func RecordFetchLatency(elapsed time.Duration) {
	globalManager.fetchLatency.Observe(float64(elapsed.Milliseconds()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordExportBytes adds n bytes written in the given export format.
func RecordExportBytes(format string, n int) {
	globalManager.exportBytes.WithLabelValues(format).Add(float64(n))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

// CollectSystemMetrics samples runtime memory, goroutine and GC statistics.
func CollectSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / 1e6)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
