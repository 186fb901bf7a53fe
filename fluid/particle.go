package fluid

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// particleIDs is shared by every World in the process.
var particleIDs atomic.Uint64

// Particle is a single SPH sample.
type Particle struct {
	ID      uint64
	FluidID int // owning fluid, looked up in the world's fluid table

	Pos r2.Vec
	Vel r2.Vec
	Acc r2.Vec

	// ExtAcc accumulates force-field acceleration between steps. It is added
	// in the next force pass and cleared by Integrate.
	ExtAcc r2.Vec

	Density  float64
	Pressure float64

	// Neighbors holds indices into the particle arena of the sub-step that
	// produced them. The arena is rebuilt every sub-step, so these indices
	// must never be read after the next rebuild.
	Neighbors []int
}

func newParticle(fluidID int, pos, vel r2.Vec) *Particle {
	return &Particle{
		ID:      particleIDs.Add(1),
		FluidID: fluidID,
		Pos:     pos,
		Vel:     vel,
	}
}

// Fluid is one fluid instance. Particles is a pointer slice so particle
// addresses survive appends; order carries no meaning.
type Fluid struct {
	ID        int
	Config    Config
	Active    bool
	Particles []*Particle
}

// Len returns the number of particles owned by the fluid.
func (f *Fluid) Len() int {
	return len(f.Particles)
}

// filterParticles keeps particles for which keep returns true and reports how
// many were dropped. The backing array is reused.
func (f *Fluid) filterParticles(keep func(p *Particle) bool) int {
	kept := f.Particles[:0]
	for _, p := range f.Particles {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	removed := len(f.Particles) - len(kept)
	for i := len(kept); i < len(f.Particles); i++ {
		f.Particles[i] = nil
	}
	f.Particles = kept
	return removed
}
