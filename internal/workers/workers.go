package workers

import (
	"os"
	"runtime"
	"strconv"

	"video-thumbnailer/internal/logging"
)

// OverrideEnv names the environment variable that replaces the computed count.
const OverrideEnv = "THUMBNAIL_WORKERS"

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS.
//
// The multiplier scales the per-CPU count; decoding and encoding are
// CPU-bound and use 1.0. The limit caps the result; use 0 for no limit.
// A positive integer in THUMBNAIL_WORKERS takes precedence over the
// computed value.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		count, err := strconv.Atoi(override)
		if err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
		logging.Warn("Ignoring invalid %s=%q", OverrideEnv, override)
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

