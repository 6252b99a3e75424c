package metrics

// Statuses reported by ThumbnailExtractionsTotal and SessionsCreatedTotal
// besides "success". They mirror the error kinds of the thumb package.
var ExtractionStatuses = []string{
	"success",
	"container_open",
	"probe",
	"no_video_stream",
	"decoder_open",
	"not_found",
	"decode",
	"conversion",
	"encoder_open",
	"encode",
	"invalid_position",
	"closed",
}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Filesystem operation metrics (per volume × operation) ---
	volumes := []string{"media", "unknown"}
	fsOps := []string{"stat", "open"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- Extraction outcomes ---
	for _, status := range ExtractionStatuses {
		ThumbnailExtractionsTotal.WithLabelValues(status)
		SessionsCreatedTotal.WithLabelValues(status)
	}

	for _, stage := range []string{"locate", "convert", "encode"} {
		ThumbnailStageDuration.WithLabelValues(stage)
	}

	for _, reason := range []string{"memory", "canceled"} {
		AdmissionRejectedTotal.WithLabelValues(reason)
	}

	for _, component := range []string{"converter", "encoder"} {
		ThumbnailPipelineBuildsTotal.WithLabelValues(component)
	}
}
