package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"video-thumbnailer/internal/metrics"

	"golang.org/x/sync/semaphore"
)

// Admission bounds the number of sessions open at once. Each session holds
// a demuxer, a decoder and possibly a filter graph and encoder, so the
// limit is what keeps memory predictable under load.
type Admission struct {
	sem  *semaphore.Weighted
	size int
	busy atomic.Int64
}

// NewAdmission creates a gate for size concurrent extractions (minimum 1).
func NewAdmission(size int) *Admission {
	if size < 1 {
		size = 1
	}
	metrics.WorkersTotal.Set(float64(size))
	return &Admission{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Acquire waits for a free slot or for ctx to end. The returned release
// function must be called exactly once.
func (a *Admission) Acquire(ctx context.Context) (func(), error) {
	start := time.Now()
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	metrics.AdmissionWaitDuration.Observe(time.Since(start).Seconds())

	metrics.WorkersBusy.Set(float64(a.busy.Add(1)))

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		metrics.WorkersBusy.Set(float64(a.busy.Add(-1)))
		a.sem.Release(1)
	}, nil
}

// GetStats implements metrics.StatsProvider.
func (a *Admission) GetStats() metrics.Stats {
	return metrics.Stats{
		Workers: a.size,
		Busy:    int(a.busy.Load()),
	}
}
