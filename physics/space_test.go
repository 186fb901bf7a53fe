package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
)

func hasVertex(verts []r2.Vec, want r2.Vec) bool {
	for _, v := range verts {
		if r2.Norm(r2.Sub(v, want)) < 1e-9 {
			return true
		}
	}
	return false
}

func TestStaticBoxVertices(t *testing.T) {
	s := NewSpace(r2.Vec{Y: 980})
	b, err := s.AddStaticBox(r2.Vec{X: 100, Y: 50}, 40, 20, 0)
	if err != nil {
		t.Fatal(err)
	}

	verts := b.Vertices()
	if len(verts) != 4 {
		t.Fatalf("got %d vertices, want 4", len(verts))
	}
	for _, want := range []r2.Vec{{X: 80, Y: 40}, {X: 120, Y: 40}, {X: 120, Y: 60}, {X: 80, Y: 60}} {
		if !hasVertex(verts, want) {
			t.Errorf("missing vertex %v in %v", want, verts)
		}
	}

	box := b.Bounds()
	if r2.Norm(r2.Sub(box.Min, r2.Vec{X: 80, Y: 40})) > 1e-9 || r2.Norm(r2.Sub(box.Max, r2.Vec{X: 120, Y: 60})) > 1e-9 {
		t.Errorf("Bounds() = %v", box)
	}
	if b.Kind() != fluid.BodyStatic {
		t.Errorf("Kind() = %v, want static", b.Kind())
	}
}

func TestRotatedStaticBoxBounds(t *testing.T) {
	s := NewSpace(r2.Vec{})
	b, err := s.AddStaticBox(r2.Vec{X: 0, Y: 0}, 20, 20, math.Pi/4)
	if err != nil {
		t.Fatal(err)
	}

	half := 10 * math.Sqrt2
	box := b.Bounds()
	if math.Abs(box.Max.X-half) > 1e-9 || math.Abs(box.Min.Y+half) > 1e-9 {
		t.Errorf("rotated bounds %v, want half extent %v", box, half)
	}
	if !s.PointInPolygon(b.Vertices(), r2.Vec{X: 13, Y: 0}) {
		t.Error("point along the rotated diagonal not contained")
	}
	if s.PointInPolygon(b.Vertices(), r2.Vec{X: 9, Y: 9}) {
		t.Error("point in the cut-off corner reported inside")
	}
}

func TestPointInPolygon(t *testing.T) {
	s := NewSpace(r2.Vec{})
	tri := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}

	tests := []struct {
		name string
		p    r2.Vec
		want bool
	}{
		{"inside", r2.Vec{X: 2, Y: 2}, true},
		{"outside_hypotenuse", r2.Vec{X: 6, Y: 6}, false},
		{"outside_left", r2.Vec{X: -1, Y: 5}, false},
		{"below", r2.Vec{X: 5, Y: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PointInPolygon(tri, tt.p); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestDynamicBoxFalls(t *testing.T) {
	s := NewSpace(r2.Vec{Y: 980})
	b, err := s.AddDynamicBox(r2.Vec{X: 200, Y: 100}, 20, 20, 1)
	if err != nil {
		t.Fatal(err)
	}

	for range 10 {
		s.Step(1.0 / 60.0)
	}
	if b.Position().Y <= 100 {
		t.Errorf("dynamic box did not fall: %v", b.Position())
	}
	if b.Velocity().Y <= 0 {
		t.Errorf("velocity %v, want downward", b.Velocity())
	}
}

func TestApplyForceMovesDynamicBody(t *testing.T) {
	s := NewSpace(r2.Vec{})
	b, _ := s.AddDynamicBox(r2.Vec{X: 0, Y: 0}, 10, 10, 2)
	static, _ := s.AddStaticBox(r2.Vec{X: 500, Y: 500}, 10, 10, 0)

	s.ApplyForce(b, b.Position(), r2.Vec{X: 100, Y: 0})
	s.ApplyForce(static, static.Position(), r2.Vec{X: 100, Y: 0})
	s.Step(0.1)

	if math.Abs(b.Velocity().X-5) > 1e-9 {
		t.Errorf("vel.X = %v, want 5", b.Velocity().X)
	}
	if static.Position() != (r2.Vec{X: 500, Y: 500}) {
		t.Errorf("static body moved to %v", static.Position())
	}

	// Forces are consumed by the step.
	s.Step(0.1)
	if math.Abs(b.Velocity().X-5) > 1e-9 {
		t.Errorf("vel.X = %v after force-free step, want 5", b.Velocity().X)
	}
}

func TestInvalidBoxes(t *testing.T) {
	s := NewSpace(r2.Vec{})
	if _, err := s.AddStaticBox(r2.Vec{}, 0, 10, 0); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("zero width static box: err = %v", err)
	}
	if _, err := s.AddDynamicBox(r2.Vec{}, 10, 10, 0); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("massless dynamic box: err = %v", err)
	}
	if len(s.Bodies()) != 0 {
		t.Errorf("invalid boxes were tracked: %d", len(s.Bodies()))
	}
}

func TestRemoveBodyAndBodyAt(t *testing.T) {
	s := NewSpace(r2.Vec{})
	a, _ := s.AddDynamicBox(r2.Vec{X: 50, Y: 50}, 20, 20, 1)
	b, _ := s.AddStaticBox(r2.Vec{X: 150, Y: 50}, 20, 20, 0)

	if got := s.BodyAt(r2.Vec{X: 52, Y: 48}); got != a {
		t.Errorf("BodyAt inside a = %v", got)
	}
	if got := s.BodyAt(r2.Vec{X: 100, Y: 50}); got != nil {
		t.Errorf("BodyAt between bodies = %v, want nil", got)
	}

	if !s.RemoveBody(a) {
		t.Fatal("RemoveBody(a) = false")
	}
	if s.RemoveBody(a) {
		t.Error("second RemoveBody(a) = true")
	}
	bodies := s.Bodies()
	if len(bodies) != 1 || bodies[0] != fluid.RigidBody(b) {
		t.Errorf("Bodies() = %v, want only b", bodies)
	}
	if got := s.BodyAt(r2.Vec{X: 50, Y: 50}); got != nil {
		t.Errorf("removed body still found: %v", got)
	}
}

func TestWallsContainDynamicBodies(t *testing.T) {
	s := NewSpace(r2.Vec{Y: 980})
	s.AddWalls(r2.Box{Min: r2.Vec{}, Max: r2.Vec{X: 200, Y: 200}}, 20)
	b, _ := s.AddDynamicBox(r2.Vec{X: 100, Y: 100}, 20, 20, 1)

	for range 240 {
		s.Step(1.0 / 60.0)
	}
	if y := b.Position().Y; y > 200 {
		t.Errorf("box fell through the floor: y = %v", y)
	}
	if len(s.Bodies()) != 1 {
		t.Errorf("walls reported as bodies: %d", len(s.Bodies()))
	}
}

func TestWallsReportsGeometry(t *testing.T) {
	s := NewSpace(r2.Vec{Y: 980})
	if _, _, ok := s.Walls(); ok {
		t.Fatal("fresh space reports walls")
	}

	bounds := r2.Box{Max: r2.Vec{X: 300, Y: 120}}
	s.AddWalls(bounds, 12)
	got, thickness, ok := s.Walls()
	if !ok || got != bounds || thickness != 12 {
		t.Errorf("Walls() = %v, %v, %v; want %v, 12, true", got, thickness, ok, bounds)
	}

	s.Clear()
	if _, _, ok := s.Walls(); ok {
		t.Error("walls survive Clear")
	}
}

func TestSpaceDrivesFluidCoupling(t *testing.T) {
	s := NewSpace(r2.Vec{})
	params := fluid.DefaultParams()
	params.Gravity = r2.Vec{}
	w := fluid.NewWorld(params)
	w.SetRigidWorld(s)

	box, _ := s.AddStaticBox(r2.Vec{X: 400, Y: 300}, 100, 100, 0)
	water, _ := fluid.Preset("water")
	id := w.CreateFluid(water)
	p, _ := w.AddParticle(id, r2.Vec{X: 400, Y: 260}, r2.Vec{})

	w.Update(1.0 / 60.0)
	if s.PointInPolygon(box.Vertices(), p.Pos) {
		t.Errorf("particle left inside static box at %v", p.Pos)
	}
}
