package memory

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/metrics"
)

// Config holds load-shedding thresholds
type Config struct {
	// LimitBytes is the reference limit (0 = use GOMEMLIMIT)
	LimitBytes int64

	// HighWaterMark is the usage ratio below which shedding stops
	HighWaterMark float64

	// CriticalWaterMark is the usage ratio at which shedding starts
	CriticalWaterMark float64

	// CheckInterval is how often heap usage is sampled
	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the server
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage and tells the HTTP layer when to refuse new
// extractions. Shedding starts at the critical mark and stops once usage
// falls below the high mark.
type Monitor struct {
	config    Config
	limit     int64
	readAlloc func() uint64

	mu       sync.RWMutex
	current  uint64
	shedding bool

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
	started  bool
}

// NewMonitor creates a monitor. With no limit from config or GOMEMLIMIT
// the monitor never sheds.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
		}
	}

	if limit == 0 {
		logging.Info("Memory monitor: no memory limit configured, load shedding disabled")
	} else {
		logging.Info("Memory monitor: shedding above %.0f%% of %s", config.CriticalWaterMark*100, FormatBytes(limit))
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		readAlloc: heapAlloc,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling. It does nothing without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 || m.config.CheckInterval <= 0 {
		return
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.monitorLoop()
}

// Stop ends sampling and waits for the loop to exit. Safe to call twice.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	m.mu.RLock()
	started := m.started
	m.mu.RUnlock()
	if started {
		<-m.done
	}
}

func (m *Monitor) monitorLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) check() {
	alloc := m.readAlloc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	if m.limit == 0 {
		return
	}

	usage := float64(alloc) / float64(m.limit)

	switch {
	case !m.shedding && usage >= m.config.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of limit), refusing new extractions", usage*100)
		m.shedding = true
		metrics.MemoryShedding.Set(1)
		metrics.MemoryCriticalEvents.Inc()
		go runtime.GC()
	case m.shedding && usage < m.config.HighWaterMark:
		logging.Info("Memory recovered (%.1f%% of limit), accepting extractions", usage*100)
		m.shedding = false
		metrics.MemoryShedding.Set(0)
	}
}

// Overloaded reports whether new extractions should be refused.
// A nil monitor is never overloaded.
func (m *Monitor) Overloaded() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shedding
}

// Usage returns the last sampled heap usage as a ratio of the limit,
// or 0 without a limit.
func (m *Monitor) Usage() float64 {
	if m == nil || m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}
