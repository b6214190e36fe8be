package telemetry

import "github.com/pthm-cable/hiasobi/particle"

// Collector turns the particle system's cumulative counters into per-window
// deltas. Windows are measured in simulation seconds because frame length
// varies in windowed mode.
type Collector struct {
	windowDurationSec float64

	windowStartFrame int32
	windowStartSec   float64
	last             particle.Counters
}

// NewCollector creates a collector with windows of windowDurationSec
// simulation seconds. A non-positive duration flushes every frame.
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDurationSec: windowDurationSec}
}

// ShouldFlush reports whether the current window has run its full length.
func (c *Collector) ShouldFlush(simTimeSec float64) bool {
	return simTimeSec-c.windowStartSec >= c.windowDurationSec
}

// Flush produces a WindowStats and starts the next window.
// counters must be the system's cumulative counters; lives are the remaining
// life values of every live particle.
func (c *Collector) Flush(
	frame int32,
	simTimeSec float64,
	brush string,
	counters particle.Counters,
	lives []float64,
) WindowStats {
	mean, std, p10, p50, p90 := ComputeLifeStats(lives)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       simTimeSec,

		Particles: len(lives),
		Brush:     brush,

		Emitted:     int(counters.Emitted - c.last.Emitted),
		Dropped:     int(counters.Dropped - c.last.Dropped),
		Expired:     int(counters.Expired - c.last.Expired),
		OutOfBounds: int(counters.OutOfBounds - c.last.OutOfBounds),

		LifeMean: mean,
		LifeStd:  std,
		LifeP10:  p10,
		LifeP50:  p50,
		LifeP90:  p90,
	}

	c.windowStartFrame = frame
	c.windowStartSec = simTimeSec
	c.last = counters

	return stats
}

// WindowDuration returns the window length in simulation seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
