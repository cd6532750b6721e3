package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Sample is one reporting window of frame loop statistics.
type Sample struct {
	TicksPerSecond float64
	HeapMB         float64
	AllocRateMB    float64 // MB allocated per second during the window
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
	SysMB          float64
}

// Profiler tracks tick rate and memory statistics for the frame loop.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Sample
	logger         *zap.Logger
}

// NewProfiler creates a new Profiler reporting once per second.
//
// Parameters:
//   - logger: destination for the periodic report; nil discards it
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		logger:         logger,
	}
}

// SetInterval changes the reporting window. Non-positive values are ignored.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// Last returns the most recently reported sample.
func (p *Profiler) Last() Sample {
	return p.last
}

// Tick should be called once per frame loop tick.
// Logs a Sample when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Sample{
		TicksPerSecond: float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
	}

	if gcCount := s.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.logger.Info("profiler",
		zap.Float64("tps", s.TicksPerSecond),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_mb_s", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_us", s.LastPauseUs),
		zap.Uint64("gc_max_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB))

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
