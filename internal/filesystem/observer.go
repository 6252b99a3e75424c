package filesystem

// Observer receives timings and retry events from StatWithRetry and
// OpenWithRetry. The metrics package implements it; filesystem cannot import
// metrics without a cycle.
//
// volume is the label from the VolumeResolver ("media" or "unknown") and op
// is "stat" or "open".
type Observer interface {
	// ObserveOperation is called once per call with its total duration and
	// final error.
	ObserveOperation(volume, op string, durationSeconds float64, err error)

	ObserveRetryAttempt(op, volume string)
	ObserveRetrySuccess(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveRetryDuration(op, volume string, durationSeconds float64)
	ObserveStaleError(op, volume string)
}

var defaultObserver Observer

// SetObserver installs the package-level observer. Call it once at startup;
// with none installed nothing is recorded.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
