package components

import "github.com/pthm-cable/sphfluid/physics"

// Rigid links an entity to a box in the physics space.
type Rigid struct {
	Body *physics.Body
}

// Size returns the box extents as float32 for drawing.
func (r Rigid) Size() (w, h float32) {
	bw, bh := r.Body.Size()
	return float32(bw), float32(bh)
}
