// Package metrics provides Prometheus metrics for the planner service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcome label values.
const (
	OutcomeFound          = "found"
	OutcomeNone           = "none"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeCancelled      = "cancelled"
)

// Manager manages all Prometheus metrics for the planner service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	bundlesScored       prometheus.Counter
	scoringFailures     *prometheus.CounterVec
	predictionFallbacks prometheus.Counter
	scoringLatency      prometheus.Histogram

	// Search
	searches              *prometheus.CounterVec
	searchDuration        prometheus.Histogram
	combinationsEvaluated prometheus.Counter
	searchNodes           prometheus.Counter
	schedulesReturned     prometheus.Histogram

	// Reference data
	catalogCourses  prometheus.Gauge
	sectionsLoaded  prometheus.Gauge
	studentsLoaded  prometheus.Gauge
	catalogDegraded prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

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
		namespace:        "unitrack",
		subsystem:        "planner",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      prometheus.Labels{},
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

	m.bundlesScored = auto.NewCounter(m.counterOpts(
		"bundles_scored_total", "Total number of course bundles scored"))
	m.scoringFailures = auto.NewCounterVec(m.counterOpts(
		"scoring_failures_total", "Bundles that could not be scored, by reason"),
		[]string{"reason"})
	m.predictionFallbacks = auto.NewCounter(m.counterOpts(
		"prediction_fallbacks_total", "Scoring calls that used the default grade because the predictor failed"))
	m.scoringLatency = auto.NewHistogram(m.histogramOpts(
		"scoring_latency_milliseconds", "Bundle scoring latency in milliseconds", m.histogramBuckets))

	m.searches = auto.NewCounterVec(m.counterOpts(
		"searches_total", "Schedule searches by outcome"),
		[]string{"outcome"})
	m.searchDuration = auto.NewHistogram(m.histogramOpts(
		"search_duration_milliseconds", "Schedule search wall time in milliseconds",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}))
	m.combinationsEvaluated = auto.NewCounter(m.counterOpts(
		"combinations_evaluated_total", "Leaf schedules inside the credit window that were scored"))
	m.searchNodes = auto.NewCounter(m.counterOpts(
		"search_nodes_total", "Search tree nodes visited"))
	m.schedulesReturned = auto.NewHistogram(m.histogramOpts(
		"schedules_returned", "Number of schedules returned per search", []float64{0, 1, 2, 3, 5, 10}))

	m.catalogCourses = auto.NewGauge(m.gaugeOpts(
		"catalog_courses", "Courses in the loaded catalog"))
	m.sectionsLoaded = auto.NewGauge(m.gaugeOpts(
		"sections_loaded", "Class sections in the section store"))
	m.studentsLoaded = auto.NewGauge(m.gaugeOpts(
		"students_loaded", "Students in the student store"))
	m.catalogDegraded = auto.NewGauge(m.gaugeOpts(
		"catalog_degraded", "1 when the catalog failed to load and the service runs degraded"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.rateLimited = auto.NewCounterVec(m.counterOpts(
		"rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

func on() bool { return globalManager != nil && globalManager.enabled }

// RecordBundleScored increments the bundles scored counter and observes latency.
func RecordBundleScored(latencyMs float64) {
	if !on() {
		return
	}
	globalManager.bundlesScored.Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringFailure counts a bundle rejected for reason.
func RecordScoringFailure(reason string) {
	if !on() {
		return
	}
	globalManager.scoringFailures.WithLabelValues(reason).Inc()
}

// RecordPredictionFallback counts a predictor failure recovered with the default grade.
func RecordPredictionFallback() {
	if !on() {
		return
	}
	globalManager.predictionFallbacks.Inc()
}

// RecordSearch records one finished schedule search.
func RecordSearch(outcome string, durationMs float64, evaluated, nodes, returned int) {
	if !on() {
		return
	}
	globalManager.searches.WithLabelValues(outcome).Inc()
	globalManager.searchDuration.Observe(durationMs)
	globalManager.combinationsEvaluated.Add(float64(evaluated))
	globalManager.searchNodes.Add(float64(nodes))
	globalManager.schedulesReturned.Observe(float64(returned))
}

// UpdateCatalogSize sets the catalog gauges. An empty catalog flags degradation.
func UpdateCatalogSize(courses int) {
	if !on() {
		return
	}
	globalManager.catalogCourses.Set(float64(courses))
	if courses == 0 {
		globalManager.catalogDegraded.Set(1)
	} else {
		globalManager.catalogDegraded.Set(0)
	}
}

// UpdateSectionsLoaded sets the number of loaded sections.
func UpdateSectionsLoaded(count int) {
	if !on() {
		return
	}
	globalManager.sectionsLoaded.Set(float64(count))
}

// UpdateStudentsLoaded sets the number of loaded students.
func UpdateStudentsLoaded(count int) {
	if !on() {
		return
	}
	globalManager.studentsLoaded.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !on() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !on() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the limiter.
func RecordRateLimited(endpoint string) {
	if !on() {
		return
	}
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !on() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !on() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !on() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !on() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// SetEnabled turns recording through the package functions on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
