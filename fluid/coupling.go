package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// BodyKind tags how the coupler treats a rigid body.
type BodyKind uint8

const (
	// BodyStatic bodies push particles out and reflect them. They never
	// receive forces.
	BodyStatic BodyKind = iota
	// BodyDynamic bodies receive drag and buoyancy and drag particles along.
	BodyDynamic
)

func (k BodyKind) String() string {
	switch k {
	case BodyStatic:
		return "static"
	case BodyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// RigidBody is the view of an external rigid body the coupler needs.
// Vertices are world-space and ordered around the polygon.
type RigidBody interface {
	Kind() BodyKind
	Vertices() []r2.Vec
	Bounds() r2.Box
	Position() r2.Vec
	Velocity() r2.Vec
}

// RigidWorld is the external rigid-body provider.
type RigidWorld interface {
	Bodies() []RigidBody
	PointInPolygon(vertices []r2.Vec, p r2.Vec) bool
	ApplyForce(b RigidBody, point, force r2.Vec)
}

// CouplingParams holds the constants of the particle/body interaction.
type CouplingParams struct {
	StaticRestitution float64 // fraction of normal velocity removed on static contact
	PushMargin        float64 // px added to the particle radius when pushing out of a static body
	VelocityBlend     float64 // share of body velocity a particle takes on inside a dynamic body
	CouplingScale     float64 // force coefficient is RestDensity * CouplingScale
	Buoyancy          float64 // gravity fraction pushed back onto bodies as lift
}

// CoupleRigidBodies resolves particle/body overlaps against every body of rw.
// A nil provider makes this a no-op. Forces on dynamic bodies are applied one
// particle at a time, so this phase must run on a single goroutine.
func CoupleRigidBodies(particles []*Particle, fluids map[int]*Fluid, rw RigidWorld, gravity r2.Vec, cp CouplingParams) {
	if rw == nil {
		return
	}
	bodies := rw.Bodies()
	if len(bodies) == 0 {
		return
	}

	for _, b := range bodies {
		verts := b.Vertices()
		if len(verts) < 3 {
			continue
		}
		switch b.Kind() {
		case BodyStatic:
			coupleStatic(particles, fluids, rw, b, verts, cp)
		case BodyDynamic:
			coupleDynamic(particles, fluids, rw, b, verts, gravity, cp)
		}
	}
}

func coupleStatic(particles []*Particle, fluids map[int]*Fluid, rw RigidWorld, b RigidBody, verts []r2.Vec, cp CouplingParams) {
	box := b.Bounds()
	centroid := polygonCentroid(verts)

	for _, p := range particles {
		f, ok := fluids[p.FluidID]
		if !ok {
			continue
		}
		if !box.Contains(p.Pos) {
			continue
		}
		if !rw.PointInPolygon(verts, p.Pos) {
			continue
		}

		closest, edge := nearestEdgePoint(verts, p.Pos)
		n := r2.Sub(closest, p.Pos)
		if d := r2.Norm(n); d > 1e-9 {
			n = r2.Scale(1/d, n)
		} else {
			// Exactly on the edge: use the edge perpendicular facing away
			// from the body.
			a, c := verts[edge], verts[(edge+1)%len(verts)]
			e := r2.Sub(c, a)
			n = r2.Unit(r2.Vec{X: -e.Y, Y: e.X})
			if r2.Dot(n, r2.Sub(closest, centroid)) < 0 {
				n = r2.Scale(-1, n)
			}
		}

		p.Pos = r2.Add(closest, r2.Scale(f.Config.ParticleRadius+cp.PushMargin, n))
		vn := r2.Dot(p.Vel, n)
		p.Vel = r2.Sub(p.Vel, r2.Scale(2*vn*cp.StaticRestitution, n))
	}
}

func coupleDynamic(particles []*Particle, fluids map[int]*Fluid, rw RigidWorld, b RigidBody, verts []r2.Vec, gravity r2.Vec, cp CouplingParams) {
	center := b.Position()
	bodyVel := b.Velocity()
	size := b.Bounds().Size()
	maxExtent := math.Max(size.X, size.Y)
	halfDiag := 0.5 * math.Hypot(size.X, size.Y)

	for _, p := range particles {
		f, ok := fluids[p.FluidID]
		if !ok {
			continue
		}
		radius := f.Config.ParticleRadius

		toParticle := r2.Sub(p.Pos, center)
		dist := r2.Norm(toParticle)
		if dist > maxExtent+2*radius {
			continue
		}
		if !rw.PointInPolygon(verts, p.Pos) {
			continue
		}

		coef := f.Config.RestDensity * cp.CouplingScale
		drag := r2.Scale(coef, r2.Sub(p.Vel, bodyVel))
		lift := r2.Scale(-coef*cp.Buoyancy*f.Config.GravityScale, gravity)
		rw.ApplyForce(b, p.Pos, r2.Add(drag, lift))

		dir := r2.Vec{X: 0, Y: -1}
		if dist > 1e-9 {
			dir = r2.Scale(1/dist, toParticle)
		}
		p.Pos = r2.Add(center, r2.Scale(halfDiag+radius, dir))
		p.Vel = r2.Add(r2.Scale(cp.VelocityBlend, bodyVel), r2.Scale(1-cp.VelocityBlend, p.Vel))
	}
}

// nearestEdgePoint returns the closest point on the polygon outline to p and
// the index of the edge it lies on.
func nearestEdgePoint(verts []r2.Vec, p r2.Vec) (r2.Vec, int) {
	best := math.Inf(1)
	var closest r2.Vec
	edge := 0
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		c := closestOnSegment(a, b, p)
		if d := r2.Norm2(r2.Sub(p, c)); d < best {
			best = d
			closest = c
			edge = i
		}
	}
	return closest, edge
}

func closestOnSegment(a, b, p r2.Vec) r2.Vec {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(a, r2.Scale(t, ab))
}

func polygonCentroid(verts []r2.Vec) r2.Vec {
	var c r2.Vec
	for _, v := range verts {
		c = r2.Add(c, v)
	}
	return r2.Scale(1/float64(len(verts)), c)
}
