package systems

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
)

// noiseOffset decorrelates the X and Y noise channels.
const noiseOffset = 173.0

// TurbulenceSystem pushes the fluid around with a slowly evolving simplex
// noise acceleration field.
type TurbulenceSystem struct {
	noise     opensimplex.Noise
	fluids    *fluid.World
	Strength  float64 // peak acceleration in px/s^2
	Scale     float64 // noise frequency per px
	TimeSpeed float64
	Enabled   bool
	t         float64
}

// NewTurbulenceSystem creates a turbulence field seeded with seed.
func NewTurbulenceSystem(fw *fluid.World, seed int64, strength, scale, timeSpeed float64) *TurbulenceSystem {
	return &TurbulenceSystem{
		noise:     opensimplex.New(seed),
		fluids:    fw,
		Strength:  strength,
		Scale:     scale,
		TimeSpeed: timeSpeed,
		Enabled:   true,
	}
}

// Sample returns the field acceleration at p for the current time.
func (s *TurbulenceSystem) Sample(p r2.Vec) r2.Vec {
	x, y := p.X*s.Scale, p.Y*s.Scale
	return r2.Vec{
		X: s.noise.Eval3(x, y, s.t) * s.Strength,
		Y: s.noise.Eval3(x+noiseOffset, y+noiseOffset, s.t) * s.Strength,
	}
}

// Update advances the field and applies it to every active particle.
func (s *TurbulenceSystem) Update(dt float64) {
	if !s.Enabled || s.Strength == 0 {
		return
	}
	s.Advance(dt)
	s.fluids.ApplyForceField(s.Sample)
}

// Advance moves the field forward in time without touching the fluid.
func (s *TurbulenceSystem) Advance(dt float64) {
	s.t += dt * s.TimeSpeed
}

// Time returns the field's internal time.
func (s *TurbulenceSystem) Time() float64 { return s.t }

// ResetTime rewinds the field to its starting pattern.
func (s *TurbulenceSystem) ResetTime() { s.t = 0 }
