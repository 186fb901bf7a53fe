package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
)

// StirrerSystem pulses a vortex around each Stirrer entity.
type StirrerSystem struct {
	filter ecs.Filter2[components.Position, components.Stirrer]
	fluids *fluid.World
}

// NewStirrerSystem creates a new stirrer system.
func NewStirrerSystem(w *ecs.World, fw *fluid.World) *StirrerSystem {
	return &StirrerSystem{
		filter: *ecs.NewFilter2[components.Position, components.Stirrer](w),
		fluids: fw,
	}
}

// Update advances stirrer timers and fires those that are due. It returns
// the number of pulses fired.
func (s *StirrerSystem) Update(dt float64) int {
	pulses := 0
	query := s.filter.Query()
	for query.Next() {
		pos, st := query.Get()
		st.Timer += dt
		if st.Interval <= 0 || st.Timer < st.Interval {
			continue
		}
		st.Timer -= st.Interval
		s.fluids.Vortex(r2.Vec{X: float64(pos.X), Y: float64(pos.Y)}, st.Radius, st.Strength)
		pulses++
	}
	return pulses
}
