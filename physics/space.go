package physics

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
)

// ErrInvalidBox is returned for boxes with a non-positive size or mass.
var ErrInvalidBox = errors.New("physics: box needs positive size and mass")

const (
	bodyFriction   = 0.7
	bodyElasticity = 0.2
)

// Space owns the chipmunk space and the boxes the fluid couples against. It
// implements fluid.RigidWorld.
type Space struct {
	space   *cp.Space
	bodies  []*Body
	byShape map[*cp.Shape]*Body
	view    []fluid.RigidBody
	walls   []*cp.Shape
	logger  *slog.Logger

	// Geometry of the last AddWalls call, for snapshots.
	wallBounds    r2.Box
	wallThickness float64
}

var _ fluid.RigidWorld = (*Space)(nil)

// NewSpace creates an empty space with the given gravity.
func NewSpace(gravity r2.Vec) *Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: gravity.X, Y: gravity.Y})
	return &Space{
		space:   space,
		byShape: make(map[*cp.Shape]*Body),
		logger:  slog.Default(),
	}
}

// SetLogger replaces the logger used for body lifecycle events.
func (s *Space) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetGravity updates gravity for dynamic bodies.
func (s *Space) SetGravity(g r2.Vec) {
	s.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

// AddStaticBox places an immovable box centred on center, rotated by angle.
func (s *Space) AddStaticBox(center r2.Vec, w, h, angle float64) (*Body, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidBox
	}
	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: center.X, Y: center.Y})
	body.SetAngle(angle)
	s.space.AddBody(body)

	shape := s.space.AddShape(cp.NewBox(body, w, h, 0))
	shape.SetFriction(bodyFriction)
	shape.SetElasticity(bodyElasticity)

	return s.track(body, shape, fluid.BodyStatic, w, h), nil
}

// AddDynamicBox adds a simulated box. The fluid pushes on it through
// ApplyForce, so masses in the 1e-6 range are needed for the coupling forces
// to be visible.
func (s *Space) AddDynamicBox(center r2.Vec, w, h, mass float64) (*Body, error) {
	if w <= 0 || h <= 0 || mass <= 0 {
		return nil, ErrInvalidBox
	}
	body := cp.NewBody(mass, cp.MomentForBox(mass, w, h))
	body.SetPosition(cp.Vector{X: center.X, Y: center.Y})
	s.space.AddBody(body)

	shape := s.space.AddShape(cp.NewBox(body, w, h, 0))
	shape.SetFriction(bodyFriction)
	shape.SetElasticity(bodyElasticity)

	return s.track(body, shape, fluid.BodyDynamic, w, h), nil
}

// AddWalls encloses bounds with four segments so dynamic bodies stay in the
// same box as the fluid. Walls are not reported by Bodies.
func (s *Space) AddWalls(bounds r2.Box, thickness float64) {
	r := thickness / 2
	minX, minY := bounds.Min.X-r, bounds.Min.Y-r
	maxX, maxY := bounds.Max.X+r, bounds.Max.Y+r
	corners := []cp.Vector{
		{X: minX, Y: minY}, {X: maxX, Y: minY},
		{X: maxX, Y: maxY}, {X: minX, Y: maxY},
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		shape := s.space.AddShape(cp.NewSegment(s.space.StaticBody, a, b, r))
		shape.SetFriction(1)
		shape.SetElasticity(bodyElasticity)
		s.walls = append(s.walls, shape)
	}
	s.wallBounds = bounds
	s.wallThickness = thickness
}

// Walls returns the bounds and thickness passed to AddWalls. ok is false
// when the space has no walls.
func (s *Space) Walls() (bounds r2.Box, thickness float64, ok bool) {
	if len(s.walls) == 0 {
		return r2.Box{}, 0, false
	}
	return s.wallBounds, s.wallThickness, true
}

// RemoveBody takes b out of the space. It reports false if b is not part of
// this space.
func (s *Space) RemoveBody(b *Body) bool {
	i := slices.Index(s.bodies, b)
	if i < 0 {
		return false
	}
	s.space.RemoveShape(b.shape)
	s.space.RemoveBody(b.body)
	delete(s.byShape, b.shape)
	s.bodies = slices.Delete(s.bodies, i, i+1)
	s.rebuildView()
	s.logger.Debug("body removed", "kind", b.kind.String(), "remaining", len(s.bodies))
	return true
}

// Clear removes every tracked body and all walls.
func (s *Space) Clear() {
	for _, b := range s.bodies {
		s.space.RemoveShape(b.shape)
		s.space.RemoveBody(b.body)
	}
	for _, w := range s.walls {
		s.space.RemoveShape(w)
	}
	s.bodies = s.bodies[:0]
	s.walls = s.walls[:0]
	s.wallBounds = r2.Box{}
	s.wallThickness = 0
	clear(s.byShape)
	s.rebuildView()
}

// Step advances the rigid simulation. Forces applied by the fluid since the
// previous step are consumed here.
func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.space.Step(dt)
}

// Bodies returns the tracked bodies in insertion order.
func (s *Space) Bodies() []fluid.RigidBody { return s.view }

// Boxes returns the tracked bodies with their concrete type.
func (s *Space) Boxes() []*Body { return s.bodies }

// BodyAt returns the tracked body whose shape contains p, or nil.
func (s *Space) BodyAt(p r2.Vec) *Body {
	info := s.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Y}, 0, cp.SHAPE_FILTER_ALL)
	if info == nil || info.Shape == nil {
		return nil
	}
	return s.byShape[info.Shape]
}

// PointInPolygon is the even-odd crossing test. Points on an edge may land
// on either side.
func (s *Space) PointInPolygon(vertices []r2.Vec, p r2.Vec) bool {
	inside := false
	j := len(vertices) - 1
	for i := range vertices {
		a, b := vertices[i], vertices[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// ApplyForce accumulates force at a world point on a dynamic body. Static
// bodies and bodies from other providers are ignored.
func (s *Space) ApplyForce(rb fluid.RigidBody, point, force r2.Vec) {
	b, ok := rb.(*Body)
	if !ok || b.kind != fluid.BodyDynamic {
		return
	}
	b.body.ApplyForceAtWorldPoint(cp.Vector{X: force.X, Y: force.Y}, cp.Vector{X: point.X, Y: point.Y})
}

func (s *Space) track(body *cp.Body, shape *cp.Shape, kind fluid.BodyKind, w, h float64) *Body {
	b := &Body{body: body, shape: shape, kind: kind, w: w, h: h}
	s.bodies = append(s.bodies, b)
	s.byShape[shape] = b
	s.rebuildView()
	s.logger.Debug("body added", "kind", kind.String(), "w", w, "h", h)
	return b
}

func (s *Space) rebuildView() {
	s.view = s.view[:0]
	for _, b := range s.bodies {
		s.view = append(s.view, b)
	}
}
