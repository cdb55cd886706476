// Package metrics provides Prometheus metrics for the inningsim service.
package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the inningsim service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Simulation Metrics
	replications        prometheus.Counter
	replicationFailures *prometheus.CounterVec
	slates              *prometheus.CounterVec
	slateDuration       prometheus.Histogram
	gameInnings         prometheus.Histogram
	pitchingChanges     prometheus.Counter
	bullpenFallbacks    *prometheus.CounterVec
	extraInnings        prometheus.Counter
	walkOffs            prometheus.Counter
	ties                prometheus.Counter

	// Job Metrics
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueWaitLatency   prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Result Store Metrics
	resultsStored  prometheus.Gauge
	resultsEvicted prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "inningsim",
		subsystem:        "simulator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Simulation Metrics - the numbers prices are built from
	m.replications = m.counter("replications_total", "Total number of completed game replications")
	m.replicationFailures = m.counterVec("replication_failures_total", "Replications excluded by failure kind", "kind")
	m.slates = m.counterVec("slates_total", "Slate runs by final status", "status")
	m.slateDuration = m.histogram("slate_duration_milliseconds", "Wall time of a full slate run in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000})
	m.gameInnings = m.histogram("game_innings", "Innings played per simulated game",
		[]float64{8, 9, 10, 11, 12, 13, 15, 18, 21})
	m.pitchingChanges = m.counter("pitching_changes_total", "Total pitching changes across simulated games")
	m.bullpenFallbacks = m.counterVec("bullpen_fallbacks_total", "Bullpen fallbacks by policy", "policy")
	m.extraInnings = m.counter("extra_inning_games_total", "Simulated games that needed extra innings")
	m.walkOffs = m.counter("walk_offs_total", "Simulated games ended by a walk-off")
	m.ties = m.counter("ties_total", "Simulated games ended tied by the extra inning cap")

	// Job Metrics
	m.jobsSubmitted = m.counter("jobs_submitted_total", "Total number of slate jobs accepted")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Total number of duplicate slate submissions")

	// Queue Metrics - Message queue performance
	m.queueSize = m.gauge("queue_size", "Current size of the job queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of queue enqueue errors")
	m.queueWaitLatency = m.histogram("queue_wait_milliseconds", "Time jobs wait in the queue in milliseconds", m.histogramBuckets)

	// Worker Metrics - Processing performance
	m.workerCount = m.gauge("worker_count", "Number of job workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of job workers running a slate")
	m.workerProcessingLatency = m.histogram("worker_processing_milliseconds", "Job processing time in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000})
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed jobs")

	// Result Store Metrics
	m.resultsStored = m.gauge("results_stored", "Number of slate results held in memory")
	m.resultsEvicted = m.counter("results_evicted_total", "Results evicted to respect the store capacity")

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds (user experience)",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component and type",
		"component", "error_type")

	// System Performance Metrics
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Garbage collection pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Simulation Metrics Functions.

// RecordReplications adds completed replications.
func RecordReplications(n int) {
	globalManager.replications.Add(float64(n))
}

// RecordReplicationFailures adds excluded replications of one kind.
func RecordReplicationFailures(kind string, n int) {
	globalManager.replicationFailures.WithLabelValues(kind).Add(float64(n))
}

// RecordSlate records the final status of a slate run and its duration.
func RecordSlate(status string, durationMs float64) {
	globalManager.slates.WithLabelValues(status).Inc()
	globalManager.slateDuration.Observe(durationMs)
}

// ObserveGameInnings records the length of one simulated game.
func ObserveGameInnings(innings int) {
	globalManager.gameInnings.Observe(float64(innings))
}

// RecordPitchingChanges adds pitching changes.
func RecordPitchingChanges(n int) {
	globalManager.pitchingChanges.Add(float64(n))
}

// RecordBullpenFallback increments the fallback counter for a policy.
func RecordBullpenFallback(policy string, n int) {
	globalManager.bullpenFallbacks.WithLabelValues(policy).Add(float64(n))
}

// RecordGameEndings adds extra-inning, walk-off and tied games.
func RecordGameEndings(extra, walkOffs, ties int) {
	globalManager.extraInnings.Add(float64(extra))
	globalManager.walkOffs.Add(float64(walkOffs))
	globalManager.ties.Add(float64(ties))
}

// Job Metrics Functions.

// RecordJobSubmitted increments the accepted jobs counter.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate increments the duplicate submissions counter.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueWaitLatency records how long a job waited in the queue.
func RecordQueueWaitLatency(latencyMs float64) {
	globalManager.queueWaitLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the number of job workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Result Store Metrics Functions.

// UpdateResultsStored sets the number of stored results.
func UpdateResultsStored(count int) {
	globalManager.resultsStored.Set(float64(count))
}

// RecordResultEvicted increments the eviction counter.
func RecordResultEvicted() {
	globalManager.resultsEvicted.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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

// CollectSystem samples runtime memory, goroutine and GC pause figures.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RefreshInterval returns how often gauges should be sampled.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// Enabled reports whether background collection is switched on.
func Enabled() bool {
	return globalManager.enabled
}

// ReplicationsTotal reads back the completed replications counter.
func ReplicationsTotal() (float64, error) {
	return readCounter(globalManager.replications)
}

func readCounter(c prometheus.Counter) (float64, error) {
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	if out.Counter == nil {
		return 0, ErrObserveFailed
	}
	return out.Counter.GetValue(), nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
