package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sphfluid/components"
)

// RigidSyncSystem copies body transforms from the physics space onto
// Position and Rotation so rendering and tools see where bodies are.
type RigidSyncSystem struct {
	filter ecs.Filter3[components.Position, components.Rotation, components.Rigid]
}

// NewRigidSyncSystem creates a new rigid sync system.
func NewRigidSyncSystem(w *ecs.World) *RigidSyncSystem {
	return &RigidSyncSystem{
		filter: *ecs.NewFilter3[components.Position, components.Rotation, components.Rigid](w),
	}
}

// Update runs the sync.
func (s *RigidSyncSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		pos, rot, rigid := query.Get()
		if rigid.Body == nil {
			continue
		}
		p := rigid.Body.Position()
		pos.X = float32(p.X)
		pos.Y = float32(p.Y)
		rot.Heading = float32(rigid.Body.Angle())
	}
}
