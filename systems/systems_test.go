package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
)

func newFluidWorld(t *testing.T) (*fluid.World, int) {
	t.Helper()
	params := fluid.DefaultParams()
	params.Gravity = r2.Vec{}
	fw := fluid.NewWorld(params)
	water, err := fluid.Preset("water")
	if err != nil {
		t.Fatal(err)
	}
	return fw, fw.CreateFluid(water)
}

// TestEmitterRateAndRetire verifies fractional accumulation, the Remaining
// cap and removal of exhausted emitters.
func TestEmitterRateAndRetire(t *testing.T) {
	w := ecs.NewWorld()
	fw, id := newFluidWorld(t)
	mapper := ecs.NewMap2[components.Position, components.Emitter](w)

	e := mapper.NewEntity(
		&components.Position{X: 100, Y: 100},
		&components.Emitter{FluidID: id, Rate: 6, Speed: 100, Spread: 0.3, Remaining: 10},
	)
	sys := NewEmitterSystem(w, fw)

	for i, want := range []int{3, 3, 3, 1} {
		if got := sys.Update(w, 0.5); got != want {
			t.Errorf("update %d: emitted %d, want %d", i, got, want)
		}
	}
	if fw.ParticleCount() != 10 {
		t.Errorf("ParticleCount() = %d, want 10", fw.ParticleCount())
	}
	if w.Alive(e) {
		t.Error("exhausted emitter still alive")
	}
}

func TestEmitterFractionalRate(t *testing.T) {
	w := ecs.NewWorld()
	fw, id := newFluidWorld(t)
	mapper := ecs.NewMap2[components.Position, components.Emitter](w)
	e := mapper.NewEntity(
		&components.Position{X: 100, Y: 100},
		&components.Emitter{FluidID: id, Rate: 1, Speed: 50, Remaining: -1},
	)
	sys := NewEmitterSystem(w, fw)

	total := 0
	for range 8 {
		total += sys.Update(w, 0.25)
	}
	if total != 2 {
		t.Errorf("emitted %d over 2s at 1/s, want 2", total)
	}
	if !w.Alive(e) {
		t.Error("unlimited emitter was removed")
	}
}

func TestEmitterRetiresOnMissingFluid(t *testing.T) {
	w := ecs.NewWorld()
	fw, _ := newFluidWorld(t)
	mapper := ecs.NewMap2[components.Position, components.Emitter](w)
	e := mapper.NewEntity(
		&components.Position{},
		&components.Emitter{FluidID: 99, Rate: 10, Remaining: -1},
	)

	if got := NewEmitterSystem(w, fw).Update(w, 1); got != 0 {
		t.Errorf("emitted %d into a missing fluid", got)
	}
	if w.Alive(e) {
		t.Error("emitter for missing fluid still alive")
	}
}

func TestDrainRemovesParticles(t *testing.T) {
	w := ecs.NewWorld()
	fw, id := newFluidWorld(t)
	if _, err := fw.AddParticlesRect(id, 0, 0, 80, 80, 0); err != nil {
		t.Fatal(err)
	}
	before := fw.ParticleCount()

	mapper := ecs.NewMap2[components.Position, components.Drain](w)
	e := mapper.NewEntity(&components.Position{X: 40, Y: 40}, &components.Drain{Radius: 12})

	sys := NewDrainSystem(w, fw)
	n := sys.Update()
	if n == 0 {
		t.Fatal("drain removed nothing")
	}
	if fw.ParticleCount() != before-n {
		t.Errorf("ParticleCount() = %d, want %d", fw.ParticleCount(), before-n)
	}
	_, drain := mapper.Get(e)
	if drain.Drained != n {
		t.Errorf("Drained = %d, want %d", drain.Drained, n)
	}
	if again := sys.Update(); again != 0 {
		t.Errorf("second pass removed %d, want 0", again)
	}
}

func TestRigidSyncCopiesTransforms(t *testing.T) {
	w := ecs.NewWorld()
	space := physics.NewSpace(r2.Vec{Y: 980})
	body, err := space.AddDynamicBox(r2.Vec{X: 200, Y: 100}, 20, 20, 1)
	if err != nil {
		t.Fatal(err)
	}

	mapper := ecs.NewMap3[components.Position, components.Rotation, components.Rigid](w)
	e := mapper.NewEntity(&components.Position{}, &components.Rotation{}, &components.Rigid{Body: body})

	for range 5 {
		space.Step(1.0 / 60.0)
	}
	NewRigidSyncSystem(w).Update()

	pos, rot, _ := mapper.Get(e)
	want := body.Position()
	if pos.X != float32(want.X) || pos.Y != float32(want.Y) {
		t.Errorf("position (%v, %v), want %v", pos.X, pos.Y, want)
	}
	if rot.Heading != float32(body.Angle()) {
		t.Errorf("heading %v, want %v", rot.Heading, body.Angle())
	}
	if pos.Y <= 100 {
		t.Errorf("synced position did not follow the falling body: %v", pos.Y)
	}
}

func TestStirrerPulses(t *testing.T) {
	w := ecs.NewWorld()
	fw, id := newFluidWorld(t)
	p, _ := fw.AddParticle(id, r2.Vec{X: 120, Y: 100}, r2.Vec{})

	mapper := ecs.NewMap2[components.Position, components.Stirrer](w)
	mapper.NewEntity(
		&components.Position{X: 100, Y: 100},
		&components.Stirrer{Radius: 50, Strength: 100, Interval: 0.5},
	)
	sys := NewStirrerSystem(w, fw)

	if n := sys.Update(0.3); n != 0 {
		t.Fatalf("pulsed %d times before the interval", n)
	}
	if p.Vel != (r2.Vec{}) {
		t.Fatalf("particle moved before the first pulse: %v", p.Vel)
	}
	if n := sys.Update(0.3); n != 1 {
		t.Fatalf("pulsed %d times, want 1", n)
	}
	// Offset (20, 0) gives a tangent along +Y.
	if math.Abs(p.Vel.X) > 1e-9 || p.Vel.Y <= 0 {
		t.Errorf("velocity %v, want +Y tangent", p.Vel)
	}
}

func TestTurbulenceAppliesSampledField(t *testing.T) {
	fw, id := newFluidWorld(t)
	if _, err := fw.AddParticlesRect(id, 100, 100, 64, 64, 0); err != nil {
		t.Fatal(err)
	}

	a := NewTurbulenceSystem(fw, 7, 300, 0.01, 0.5)
	b := NewTurbulenceSystem(fw, 7, 300, 0.01, 0.5)
	probe := r2.Vec{X: 123, Y: 456}
	if a.Sample(probe) != b.Sample(probe) {
		t.Fatal("same seed produced different fields")
	}

	a.Update(0.1)
	nonZero := false
	for _, p := range fw.Particles() {
		want := a.Sample(p.Pos)
		if p.ExtAcc != want {
			t.Fatalf("ExtAcc %v at %v, want %v", p.ExtAcc, p.Pos, want)
		}
		if math.Hypot(want.X, want.Y) > 300*math.Sqrt2+1e-9 {
			t.Errorf("sample %v exceeds strength", want)
		}
		if want != (r2.Vec{}) {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("turbulence produced an all-zero field")
	}
}

func TestTurbulenceDisabled(t *testing.T) {
	fw, id := newFluidWorld(t)
	p, _ := fw.AddParticle(id, r2.Vec{X: 100, Y: 100}, r2.Vec{})

	s := NewTurbulenceSystem(fw, 1, 300, 0.01, 0.5)
	s.Enabled = false
	s.Update(0.1)
	if p.ExtAcc != (r2.Vec{}) {
		t.Errorf("disabled turbulence applied %v", p.ExtAcc)
	}
}

func TestTurbulenceAdvanceWithoutFluid(t *testing.T) {
	s := NewTurbulenceSystem(nil, 3, 300, 0.01, 0.5)
	probe := r2.Vec{X: 40, Y: 60}
	before := s.Sample(probe)

	s.Advance(2)
	if s.Time() != 1 {
		t.Fatalf("Time() = %g, want 1", s.Time())
	}
	if s.Sample(probe) == before {
		t.Error("field did not change after Advance")
	}

	s.ResetTime()
	if s.Sample(probe) != before {
		t.Error("ResetTime did not restore the starting field")
	}
}

func TestRegistryCoversFluidPhases(t *testing.T) {
	reg := NewSystemRegistry()
	for _, id := range []string{
		fluid.PhaseCollect, fluid.PhaseSpatialHash, fluid.PhaseNeighbors, fluid.PhaseDensity,
		fluid.PhaseForces, fluid.PhaseCoupling, fluid.PhaseIntegrate, fluid.PhaseBoundaries,
	} {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("phase %q not registered", id)
		}
	}
	if got := reg.GetName("unknown"); got != "unknown" {
		t.Errorf("GetName fallback = %q", got)
	}
	if cats := reg.Categories(); len(cats) != 2 {
		t.Errorf("Categories() = %v, want scene and fluid", cats)
	}
}
