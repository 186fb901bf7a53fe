package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
)

// DrainSystem removes particles of every fluid around Drain entities.
type DrainSystem struct {
	filter ecs.Filter2[components.Position, components.Drain]
	fluids *fluid.World
}

// NewDrainSystem creates a new drain system.
func NewDrainSystem(w *ecs.World, fw *fluid.World) *DrainSystem {
	return &DrainSystem{
		filter: *ecs.NewFilter2[components.Position, components.Drain](w),
		fluids: fw,
	}
}

// Update runs the drains and returns the number of particles removed.
func (s *DrainSystem) Update() int {
	total := 0
	query := s.filter.Query()
	for query.Next() {
		pos, drain := query.Get()
		n := s.fluids.RemoveParticlesInCircle(float64(pos.X), float64(pos.Y), drain.Radius)
		drain.Drained += n
		total += n
	}
	return total
}
