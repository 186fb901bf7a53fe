package fluid

import "gonum.org/v1/gonum/spatial/r2"

// Force fields act on the arena, so they reach every active fluid at once.
// All of them fall off linearly from full strength at the centre to zero at
// radius.

// ApplyForceInRadius adds force, scaled by falloff, to the pending
// acceleration of particles within radius. It takes effect in the next step.
// It returns the number of particles affected.
func (w *World) ApplyForceInRadius(center r2.Vec, radius float64, force r2.Vec) int {
	if radius <= 0 {
		return 0
	}
	n := 0
	for _, p := range w.arena() {
		d := r2.Norm(r2.Sub(p.Pos, center))
		if d >= radius {
			continue
		}
		p.ExtAcc = r2.Add(p.ExtAcc, r2.Scale(1-d/radius, force))
		n++
	}
	return n
}

// Explode adds a radial velocity impulse pointing away from center.
// Particles closer than the world epsilon have no direction and are skipped.
func (w *World) Explode(center r2.Vec, radius, strength float64) int {
	if radius <= 0 {
		return 0
	}
	eps := w.params.Epsilon
	n := 0
	for _, p := range w.arena() {
		off := r2.Sub(p.Pos, center)
		d := r2.Norm(off)
		if d >= radius || d < eps {
			continue
		}
		falloff := 1 - d/radius
		p.Vel = r2.Add(p.Vel, r2.Scale(strength*falloff/d, off))
		n++
	}
	return n
}

// Attract is Explode with the impulse pointing towards center.
func (w *World) Attract(center r2.Vec, radius, strength float64) int {
	return w.Explode(center, radius, -strength)
}

// Vortex adds a tangential velocity impulse along (-dy, dx)/dist. With +Y
// pointing down that is clockwise on screen for positive strength.
func (w *World) Vortex(center r2.Vec, radius, strength float64) int {
	if radius <= 0 {
		return 0
	}
	eps := w.params.Epsilon
	n := 0
	for _, p := range w.arena() {
		off := r2.Sub(p.Pos, center)
		d := r2.Norm(off)
		if d >= radius || d < eps {
			continue
		}
		falloff := 1 - d/radius
		tangent := r2.Vec{X: -off.Y / d, Y: off.X / d}
		p.Vel = r2.Add(p.Vel, r2.Scale(strength*falloff, tangent))
		n++
	}
	return n
}

// ApplyForceField adds fn(position) to the pending acceleration of every
// particle in the arena.
func (w *World) ApplyForceField(fn func(pos r2.Vec) r2.Vec) {
	for _, p := range w.arena() {
		p.ExtAcc = r2.Add(p.ExtAcc, fn(p.Pos))
	}
}
