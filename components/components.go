// Package components defines ECS components for the fluid scenes.
package components

import "github.com/pthm-cable/sphfluid/fluid"

// Emitter sprays particles of one fluid from the entity position.
type Emitter struct {
	FluidID   int
	Angle     float64 `inspect:"angle"`          // radians, +Y is down
	Spread    float64 `inspect:"label,fmt:%.2f"` // cone width in radians
	Speed     float64 `inspect:"bar,max:600"`    // px/s
	Rate      float64 `inspect:"label,fmt:%.0f/s"`
	Accum     float64 `inspect:"skip"` // fractional particles carried to the next tick
	Remaining int     // particles left to emit; negative = unlimited
}

// Exhausted reports whether the emitter has nothing left to spray.
func (e *Emitter) Exhausted() bool {
	return e.Remaining == 0
}

// Drain removes every particle that enters its radius.
type Drain struct {
	Radius  float64 `inspect:"label,fmt:%.0f px"`
	Drained int     // total particles removed
}

// Stirrer fires a vortex around the entity at a fixed interval.
type Stirrer struct {
	Radius   float64 `inspect:"label,fmt:%.0f px"`
	Strength float64
	Interval float64 `inspect:"label,fmt:%.1fs"` // seconds between pulses
	Timer    float64 `inspect:"bar,max:2"`
}

// Tint colours an entity drawn by the renderer.
type Tint struct {
	Color fluid.Color
}
