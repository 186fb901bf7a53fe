// Package physics adapts a chipmunk2d space to the rigid-body provider the
// fluid solver couples against.
package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
)

// Body is a box-shaped rigid body living in a Space.
type Body struct {
	body  *cp.Body
	shape *cp.Shape
	kind  fluid.BodyKind
	w, h  float64

	verts []r2.Vec
}

// Kind reports whether the body is static or dynamic.
func (b *Body) Kind() fluid.BodyKind { return b.kind }

// Size returns the box width and height.
func (b *Body) Size() (w, h float64) { return b.w, b.h }

// Vertices returns the world-space outline. The returned slice is reused by
// the next call.
func (b *Body) Vertices() []r2.Vec {
	poly, ok := b.shape.Class.(*cp.PolyShape)
	if !ok {
		return nil
	}
	b.verts = b.verts[:0]
	for i := 0; i < poly.Count(); i++ {
		v := b.body.LocalToWorld(poly.Vert(i))
		b.verts = append(b.verts, r2.Vec{X: v.X, Y: v.Y})
	}
	return b.verts
}

// Bounds is the axis-aligned box around the current outline.
func (b *Body) Bounds() r2.Box {
	verts := b.Vertices()
	if len(verts) == 0 {
		p := b.Position()
		return r2.Box{Min: p, Max: p}
	}
	box := r2.Box{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		box.Min.X = math.Min(box.Min.X, v.X)
		box.Min.Y = math.Min(box.Min.Y, v.Y)
		box.Max.X = math.Max(box.Max.X, v.X)
		box.Max.Y = math.Max(box.Max.Y, v.Y)
	}
	return box
}

// Position is the body origin in world space.
func (b *Body) Position() r2.Vec {
	p := b.body.Position()
	return r2.Vec{X: p.X, Y: p.Y}
}

// Velocity is the linear velocity of the body.
func (b *Body) Velocity() r2.Vec {
	v := b.body.Velocity()
	return r2.Vec{X: v.X, Y: v.Y}
}

// Angle is the rotation in radians.
func (b *Body) Angle() float64 { return b.body.Angle() }

// SetPosition teleports a dynamic body. Static bodies are placed at creation
// and never move.
func (b *Body) SetPosition(p r2.Vec) {
	b.body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
}

// SetVelocity sets the linear velocity of a dynamic body.
func (b *Body) SetVelocity(v r2.Vec) {
	b.body.SetVelocity(v.X, v.Y)
}

// SetAngle rotates a dynamic body.
func (b *Body) SetAngle(a float64) {
	b.body.SetAngle(a)
}

// Mass is the body mass. Static bodies report +Inf.
func (b *Body) Mass() float64 { return b.body.Mass() }
