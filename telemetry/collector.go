package telemetry

import "github.com/pthm-cable/sphfluid/fluid"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	emitted int
	drained int
	erased  int

	sampler StatsSampler
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEmitted records particles spawned by emitters and the spray tool.
func (c *Collector) RecordEmitted(n int) {
	c.emitted += n
}

// RecordDrained records particles removed by drains.
func (c *Collector) RecordDrained(n int) {
	c.drained += n
}

// RecordErased records particles removed by the eraser.
func (c *Collector) RecordErased(n int) {
	c.erased += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush samples w, produces a WindowStats and resets counters for the next
// window. bodies is the rigid body count reported alongside.
func (c *Collector) Flush(currentTick int32, w *fluid.World, bodies int) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Bodies:          bodies,
		Emitted:         c.emitted,
		Drained:         c.drained,
		Erased:          c.erased,
	}
	c.sampler.Sample(w, &stats)
	if stats.SimTimeSec == 0 {
		stats.SimTimeSec = float64(currentTick) * float64(c.dt)
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.emitted = 0
	c.drained = 0
	c.erased = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
