package fluid

// FindNeighbors fills p.Neighbors for every particle in the arena with the
// indices of other particles strictly closer than h. The hash must have been
// built from the same arena.
func FindNeighbors(particles []*Particle, hash *SpatialHash, h float64) {
	var scratch []int
	findNeighborsRange(particles, hash, h, 0, len(particles), &scratch)
}

func findNeighborsRange(particles []*Particle, hash *SpatialHash, h float64, lo, hi int, scratch *[]int) {
	h2 := h * h
	for i := lo; i < hi; i++ {
		p := particles[i]
		*scratch = hash.QueryInto((*scratch)[:0], p.Pos.X, p.Pos.Y)

		p.Neighbors = p.Neighbors[:0]
		for _, j := range *scratch {
			if j == i {
				continue
			}
			q := particles[j]
			dx := q.Pos.X - p.Pos.X
			dy := q.Pos.Y - p.Pos.Y
			if dx*dx+dy*dy < h2 {
				p.Neighbors = append(p.Neighbors, j)
			}
		}
	}
}

// ComputeDensityPressure estimates density and pressure for every particle.
// Density is the self contribution plus poly6 over the current neighbors;
// pressure is gas*(density - rest) and is allowed to go negative, which pulls
// sparse regions together.
//
// Particles whose fluid is not in the table are skipped and keep their
// previous values.
func ComputeDensityPressure(particles []*Particle, fluids map[int]*Fluid, k Kernels) {
	densityPressureRange(particles, fluids, k, 0, len(particles))
}

func densityPressureRange(particles []*Particle, fluids map[int]*Fluid, k Kernels, lo, hi int) {
	self := k.SelfDensity()
	for i := lo; i < hi; i++ {
		p := particles[i]
		f, ok := fluids[p.FluidID]
		if !ok {
			continue
		}

		rho := self
		for _, j := range p.Neighbors {
			q := particles[j]
			dx := q.Pos.X - p.Pos.X
			dy := q.Pos.Y - p.Pos.Y
			r2 := dx*dx + dy*dy
			if r2 < k.h2 {
				rho += k.poly6Sq(r2)
			}
		}

		p.Density = rho
		p.Pressure = f.Config.GasConstant * (rho - f.Config.RestDensity)
	}
}
