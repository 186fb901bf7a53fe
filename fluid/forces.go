package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ComputeForces sets p.Acc for every particle from gravity, pending force
// field acceleration, pressure and viscosity.
//
// The pairwise terms are divided by the neighbor density and the sum is then
// divided again by the particle's own density. Pairs closer than eps, and
// neighbors whose density is below eps, contribute nothing. When the
// particle's own density is below eps only gravity and ExtAcc apply.
func ComputeForces(particles []*Particle, fluids map[int]*Fluid, k Kernels, gravity r2.Vec, eps float64) {
	forcesRange(particles, fluids, k, gravity, eps, 0, len(particles))
}

func forcesRange(particles []*Particle, fluids map[int]*Fluid, k Kernels, gravity r2.Vec, eps float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := particles[i]
		f, ok := fluids[p.FluidID]
		if !ok {
			continue
		}

		acc := r2.Add(r2.Scale(f.Config.GravityScale, gravity), p.ExtAcc)

		var fp, fv r2.Vec
		for _, j := range p.Neighbors {
			q := particles[j]
			g, ok := fluids[q.FluidID]
			if !ok {
				continue
			}

			d := r2.Sub(p.Pos, q.Pos)
			r := math.Hypot(d.X, d.Y)
			if r < eps || r >= k.h {
				continue
			}
			if q.Density < eps {
				continue
			}

			// Unit vector from j towards i: positive pressure pushes apart.
			dir := r2.Scale(1/r, d)
			mag := -0.5 * (p.Pressure + q.Pressure) * k.SpikyGrad(r) / q.Density
			fp = r2.Add(fp, r2.Scale(mag, dir))

			mu := 0.5 * (f.Config.Viscosity + g.Config.Viscosity)
			fv = r2.Add(fv, r2.Scale(mu*k.ViscLaplacian(r)/q.Density, r2.Sub(q.Vel, p.Vel)))
		}

		if p.Density >= eps {
			acc = r2.Add(acc, r2.Scale(1/p.Density, r2.Add(fp, fv)))
		}
		p.Acc = acc
	}
}
