// Package metrics provides Prometheus instrumentation for the video-thumbnailer.
//
// All metrics are registered with the default Prometheus registry through
// promauto and are prefixed with "video_thumbnailer_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Session Metrics
//
//   - SessionsCreatedTotal: Counter of session creations by status
//   - SessionCreateDuration: Histogram of open + probe time
//   - SessionsOpen: Gauge of sessions not yet closed
//
// ## Thumbnail Metrics
//
//   - ThumbnailExtractionsTotal: Counter of extractions by status
//   - ThumbnailExtractionDuration: Histogram of end-to-end extraction time
//   - ThumbnailStageDuration: Histogram by stage (locate/convert/encode)
//   - ThumbnailDecodeAttempts: Histogram of scan attempts per located frame
//   - ThumbnailPipelineBuildsTotal: Counter of lazy converter/encoder builds
//   - ThumbnailOutputBytes: Histogram of encoded thumbnail sizes
//
// ## Admission Metrics
//
//   - WorkersTotal: Gauge of the extraction concurrency limit
//   - WorkersBusy: Gauge of extractions currently holding a worker slot
//   - AdmissionWaitDuration: Histogram of time spent waiting for a slot
//   - AdmissionRejectedTotal: Counter of refused requests by reason
//
// ## Filesystem Metrics
//
// Recorded through [NewFilesystemObserver] by the filesystem package:
//   - FilesystemOperationDuration / FilesystemOperationErrors
//   - FilesystemRetryAttempts / FilesystemRetrySuccess / FilesystemRetryFailures
//   - FilesystemRetryDuration / FilesystemStaleErrors
//
// ## Memory Metrics
//
//   - GoMemLimit: Gauge of configured GOMEMLIMIT
//   - GoMemAllocBytes: Gauge of current heap allocation
//   - GoMemSysBytes: Gauge of total memory from OS
//   - GoGCRuns: Gauge of completed GC cycles
//   - MemoryUsageRatio: Gauge of memory usage as ratio of limit (0.0-1.0)
//   - MemoryShedding: Gauge, 1 while extractions are refused for memory
//   - MemoryCriticalEvents: Counter of critical threshold crossings
//
// ## Application Info
//
//   - AppInfo: Gauge with version, commit, Go version and backend labels
//
// # Usage
//
// Mount promhttp.Handler() on the metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Record from other packages through the exported variables:
//
//	metrics.ThumbnailExtractionsTotal.WithLabelValues("success").Inc()
//
// # Collector
//
// [Collector] periodically gathers Go runtime memory statistics and the
// admission statistics of a [StatsProvider]:
//
//	collector := metrics.NewCollector(limiter, 15*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Extraction failure rate by cause:
//
//	sum(rate(video_thumbnailer_extractions_total{status!="success"}[5m])) by (status)
//
// P95 locate time:
//
//	histogram_quantile(0.95, sum(rate(video_thumbnailer_extraction_stage_duration_seconds_bucket{stage="locate"}[5m])) by (le))
//
// Sessions leaked by callers (should stay near zero when idle):
//
//	video_thumbnailer_sessions_open
package metrics
