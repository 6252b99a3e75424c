package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Session metrics
var (
	SessionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_sessions_created_total",
			Help: "Total number of session creations by status",
		},
		[]string{"status"},
	)

	SessionCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_session_create_duration_seconds",
			Help:    "Time spent opening and probing an input",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_sessions_open",
			Help: "Number of sessions currently open",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_extractions_total",
			Help: "Total number of frame extractions by status",
		},
		[]string{"status"},
	)

	ThumbnailExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_extraction_duration_seconds",
			Help:    "Frame extraction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_extraction_stage_duration_seconds",
			Help:    "Duration of each extraction stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // "locate", "convert", "encode"
	)

	ThumbnailDecodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_decode_attempts",
			Help:    "Number of scan attempts needed to locate a frame",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200},
		},
	)

	ThumbnailPipelineBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_pipeline_builds_total",
			Help: "Total number of lazily built pipeline components",
		},
		[]string{"component"}, // "converter", "encoder"
	)

	ThumbnailOutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_output_bytes",
			Help:    "Size of encoded thumbnails in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)

// Admission metrics
var (
	WorkersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_workers_total",
			Help: "Maximum number of concurrent extractions",
		},
	)

	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_workers_busy",
			Help: "Number of extractions currently running",
		},
	)

	AdmissionWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_admission_wait_seconds",
			Help:    "Time requests spent waiting for a free worker",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	AdmissionRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_admission_rejected_total",
			Help: "Requests turned away before extraction, by reason",
		},
		[]string{"reason"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnailer_filesystem_retry_duration_seconds",
			Help:    "Total time spent retrying filesystem operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes",
		},
	)

	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_go_memory_alloc_bytes",
			Help: "Current heap allocation in bytes",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_go_memory_sys_bytes",
			Help: "Total memory obtained from the OS in bytes",
		},
	)

	GoGCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_go_gc_runs",
			Help: "Number of completed GC cycles",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_memory_usage_ratio",
			Help: "Heap allocation as a ratio of GOMEMLIMIT (0.0-1.0)",
		},
	)

	MemoryShedding = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_memory_shedding",
			Help: "1 while new extractions are refused because memory is critical",
		},
	)

	MemoryCriticalEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_thumbnailer_memory_critical_events_total",
			Help: "Number of times memory usage crossed the critical threshold",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_thumbnailer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version", "backend"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion, backend string) {
	AppInfo.WithLabelValues(version, commit, goVersion, backend).Set(1)
}
