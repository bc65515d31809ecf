package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window of the profiler.
type Stats struct {
	UpdatesPerSecond float64
	ScrollEvents     int
	HeapMB           float64
	AllocRateMB      float64
	GCCount          uint32
	MaxPauseUs       uint64
}

// Profiler tracks volume update rate, scroll activity and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	updateCount    int
	scrollEvents   int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	now            func() time.Time
}

// ProfilerOption is a function that configures a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithUpdateInterval sets how often stats are logged.
//
// Parameters:
//   - interval: the reporting window
//
// Returns:
//   - ProfilerOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per volume update pass.
// Logs update rate, scroll events and memory statistics when the update interval has elapsed.
//
// Parameters:
//   - scrollEvents: the number of volumes that scrolled during this pass
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(scrollEvents int) bool {
	p.updateCount++
	p.scrollEvents += scrollEvents
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		ScrollEvents: p.scrollEvents,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		GCCount:      p.memStats.NumGC,
	}
	if seconds := elapsed.Seconds(); seconds > 0 {
		stats.UpdatesPerSecond = float64(p.updateCount) / seconds
		stats.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.Printf("[Profiler] Updates: %.2f/s | Scroll events: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs)",
		stats.UpdatesPerSecond, stats.ScrollEvents, stats.HeapMB, stats.AllocRateMB, stats.GCCount, stats.MaxPauseUs)

	p.last = stats
	p.updateCount = 0
	p.scrollEvents = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged window.
//
// Returns:
//   - Stats: the last stats, zero before the first report
func (p *Profiler) Last() Stats {
	return p.last
}
