// Package systems contains ECS systems that drive the fluid world.
package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
)

// EmitterSystem sprays particles from Emitter entities and deletes emitters
// that have run out.
type EmitterSystem struct {
	filter ecs.Filter2[components.Position, components.Emitter]
	fluids *fluid.World
	logger *slog.Logger
	done   []ecs.Entity
}

// NewEmitterSystem creates a new emitter system.
func NewEmitterSystem(w *ecs.World, fw *fluid.World) *EmitterSystem {
	return &EmitterSystem{
		filter: *ecs.NewFilter2[components.Position, components.Emitter](w),
		fluids: fw,
		logger: slog.Default(),
	}
}

// Update emits Rate*dt particles per emitter, carrying fractions over to the
// next call. It returns the number of particles emitted.
func (s *EmitterSystem) Update(w *ecs.World, dt float64) int {
	s.done = s.done[:0]
	emitted := 0

	query := s.filter.Query()
	for query.Next() {
		pos, em := query.Get()
		if em.Exhausted() {
			s.done = append(s.done, query.Entity())
			continue
		}

		em.Accum += em.Rate * dt
		n := int(em.Accum)
		if em.Remaining > 0 && n > em.Remaining {
			n = em.Remaining
		}
		if n <= 0 {
			continue
		}
		em.Accum -= float64(n)

		origin := r2.Vec{X: float64(pos.X), Y: float64(pos.Y)}
		added, err := s.fluids.EmitParticles(em.FluidID, origin, n, em.Angle, em.Spread, em.Speed)
		if err != nil {
			// The fluid is gone, so the emitter has nothing to feed.
			s.logger.Debug("retiring emitter", "fluid", em.FluidID, "error", err)
			s.done = append(s.done, query.Entity())
			continue
		}
		emitted += added

		if em.Remaining > 0 {
			em.Remaining -= added
			if em.Remaining <= 0 {
				em.Remaining = 0
				s.done = append(s.done, query.Entity())
			}
		}
	}

	// Remove after the query has finished.
	for _, e := range s.done {
		w.RemoveEntity(e)
	}
	return emitted
}
