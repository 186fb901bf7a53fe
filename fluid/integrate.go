package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Integrate advances velocities and positions with semi-implicit Euler:
// v += a*dt, v *= damping, clamp |v| to maxSpeed, x += v*dt. Damping is a
// flat per-call factor and is not scaled by dt. Pending ExtAcc is cleared.
func Integrate(particles []*Particle, fluids map[int]*Fluid, dt, damping, maxSpeed float64) {
	integrateRange(particles, fluids, dt, damping, maxSpeed, 0, len(particles))
}

func integrateRange(particles []*Particle, fluids map[int]*Fluid, dt, damping, maxSpeed float64, lo, hi int) {
	maxSpeed2 := maxSpeed * maxSpeed
	for i := lo; i < hi; i++ {
		p := particles[i]
		if _, ok := fluids[p.FluidID]; !ok {
			continue
		}

		v := r2.Add(p.Vel, r2.Scale(dt, p.Acc))
		v = r2.Scale(damping, v)
		if s2 := r2.Norm2(v); s2 > maxSpeed2 {
			v = r2.Scale(maxSpeed/math.Sqrt(s2), v)
		}
		p.Vel = v
		p.Pos = r2.Add(p.Pos, r2.Scale(dt, v))
		p.ExtAcc = r2.Vec{}
	}
}

// HandleBoundaries keeps every particle inside bounds shrunk by its fluid's
// particle radius. Each axis is handled on its own: the position is clamped
// and the perpendicular velocity is reversed and scaled by restitution.
func HandleBoundaries(particles []*Particle, fluids map[int]*Fluid, bounds r2.Box, restitution float64) {
	boundariesRange(particles, fluids, bounds, restitution, 0, len(particles))
}

func boundariesRange(particles []*Particle, fluids map[int]*Fluid, bounds r2.Box, restitution float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := particles[i]
		f, ok := fluids[p.FluidID]
		if !ok {
			continue
		}
		r := f.Config.ParticleRadius

		if p.Pos.X < bounds.Min.X+r {
			p.Pos.X = bounds.Min.X + r
			p.Vel.X *= -restitution
		} else if p.Pos.X > bounds.Max.X-r {
			p.Pos.X = bounds.Max.X - r
			p.Vel.X *= -restitution
		}

		if p.Pos.Y < bounds.Min.Y+r {
			p.Pos.Y = bounds.Min.Y + r
			p.Vel.Y *= -restitution
		} else if p.Pos.Y > bounds.Max.Y-r {
			p.Pos.Y = bounds.Max.Y - r
			p.Vel.Y *= -restitution
		}
	}
}
