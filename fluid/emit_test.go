package fluid

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestAddParticlesRectGrid(t *testing.T) {
	w := NewWorld(DefaultParams())
	id := w.CreateFluid(mustPreset(t, "water"))

	n, err := w.AddParticlesRect(id, 0, 0, 40, 40, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Fatalf("added %d particles, want 25", n)
	}

	f, _ := w.Fluid(id)
	first := f.Particles[0]
	if first.Pos != (r2.Vec{X: 4, Y: 4}) {
		t.Errorf("first particle at %v, want (4, 4)", first.Pos)
	}
	last := f.Particles[n-1]
	if last.Pos != (r2.Vec{X: 36, Y: 36}) {
		t.Errorf("last particle at %v, want (36, 36)", last.Pos)
	}
	for _, p := range f.Particles {
		if p.Vel != (r2.Vec{}) {
			t.Fatalf("particle created with velocity %v", p.Vel)
		}
	}
}

func TestAddParticlesCircle(t *testing.T) {
	w := NewWorld(DefaultParams())
	id := w.CreateFluid(mustPreset(t, "water"))

	n, err := w.AddParticlesCircle(id, 100, 100, 20, 8)
	if err != nil {
		t.Fatal(err)
	}
	// 5x5 grid minus the four corners at distance 22.6.
	if n != 21 {
		t.Fatalf("added %d particles, want 21", n)
	}

	var sum r2.Vec
	f, _ := w.Fluid(id)
	for _, p := range f.Particles {
		if d := r2.Norm(r2.Sub(p.Pos, r2.Vec{X: 100, Y: 100})); d > 20 {
			t.Errorf("particle at distance %v outside radius", d)
		}
		sum = r2.Add(sum, p.Pos)
	}
	mean := r2.Scale(1/float64(n), sum)
	if r2.Norm(r2.Sub(mean, r2.Vec{X: 100, Y: 100})) > 1e-9 {
		t.Errorf("disc centroid %v, want (100, 100)", mean)
	}
}

func TestUnknownFluidErrors(t *testing.T) {
	w := NewWorld(DefaultParams())

	tests := []struct {
		name string
		call func() error
	}{
		{"add", func() error {
			_, err := w.AddParticle(42, r2.Vec{}, r2.Vec{})
			return err
		}},
		{"rect", func() error {
			_, err := w.AddParticlesRect(42, 0, 0, 10, 10, 0)
			return err
		}},
		{"circle", func() error {
			_, err := w.AddParticlesCircle(42, 0, 0, 10, 0)
			return err
		}},
		{"emit", func() error {
			_, err := w.EmitParticles(42, r2.Vec{}, 5, 0, 1, 100)
			return err
		}},
		{"set_active", func() error {
			return w.SetActive(42, false)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrFluidNotFound) {
				t.Errorf("err = %v, want ErrFluidNotFound", err)
			}
		})
	}
	if w.ParticleCount() != 0 {
		t.Errorf("ParticleCount() = %d after failed calls", w.ParticleCount())
	}
}

func TestEmitParticlesDeterministic(t *testing.T) {
	emit := func() []*Particle {
		params := DefaultParams()
		params.Seed = 11
		w := NewWorld(params)
		id := w.CreateFluid(mustPreset(t, "water"))
		if _, err := w.EmitParticles(id, r2.Vec{X: 200, Y: 100}, 30, math.Pi/4, 0.5, 200); err != nil {
			t.Fatal(err)
		}
		f, _ := w.Fluid(id)
		return f.Particles
	}

	a, b := emit(), emit()
	if len(a) != 30 || len(b) != 30 {
		t.Fatalf("emitted %d and %d particles, want 30", len(a), len(b))
	}
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel {
			t.Fatalf("particle %d differs between runs with the same seed", i)
		}
	}
}

func TestEmitParticlesDirectionAndSpeed(t *testing.T) {
	w := NewWorld(DefaultParams())
	id := w.CreateFluid(mustPreset(t, "water"))
	origin := r2.Vec{X: 300, Y: 300}

	if _, err := w.EmitParticles(id, origin, 50, math.Pi/2, 0, 100); err != nil {
		t.Fatal(err)
	}
	f, _ := w.Fluid(id)
	for _, p := range f.Particles {
		speed := r2.Norm(p.Vel)
		if speed < 80-1e-9 || speed > 120+1e-9 {
			t.Errorf("speed %v outside [80, 120]", speed)
		}
		if math.Abs(p.Vel.X) > 1e-9 || p.Vel.Y <= 0 {
			t.Errorf("velocity %v not along +Y", p.Vel)
		}
		if math.Abs(p.Pos.X-origin.X) > emitJitter || math.Abs(p.Pos.Y-origin.Y) > emitJitter {
			t.Errorf("position %v outside jitter box", p.Pos)
		}
	}
}

func TestEmitZeroCount(t *testing.T) {
	w := NewWorld(DefaultParams())
	id := w.CreateFluid(mustPreset(t, "water"))

	n, err := w.EmitParticles(id, r2.Vec{}, 0, 0, 0, 100)
	if err != nil || n != 0 {
		t.Errorf("EmitParticles(count=0) = %d, %v", n, err)
	}
}

func TestRemoveParticlesInRect(t *testing.T) {
	w := NewWorld(DefaultParams())
	water := w.CreateFluid(mustPreset(t, "water"))
	oil := w.CreateFluid(mustPreset(t, "oil"))

	// 12x12 water grid at 4, 12, ..., 92 and one oil particle in the cut.
	if n, _ := w.AddParticlesRect(water, 0, 0, 100, 100, 0); n != 144 {
		t.Fatalf("added %d water particles, want 144", n)
	}
	if _, err := w.AddParticle(oil, r2.Vec{X: 25, Y: 25}, r2.Vec{}); err != nil {
		t.Fatal(err)
	}
	w.Update(1.0 / 60.0)

	removed := w.RemoveParticlesInRect(0, 0, 50, 50)
	if removed != 37 {
		t.Errorf("removed %d, want 36 water + 1 oil", removed)
	}
	if got := w.ParticleCount(); got != 144+1-removed {
		t.Errorf("ParticleCount() = %d, want %d", got, 144+1-removed)
	}
	if got := len(w.Particles()); got != w.ParticleCount() {
		t.Errorf("arena holds %d particles, want %d", got, w.ParticleCount())
	}
}

func TestRemoveParticlesInCircle(t *testing.T) {
	w := NewWorld(DefaultParams())
	id := w.CreateFluid(mustPreset(t, "water"))
	if _, err := w.AddParticlesRect(id, 0, 0, 100, 100, 0); err != nil {
		t.Fatal(err)
	}

	// (4,4), (12,4) and (4,12) are within 8; (12,12) is 11.3 away.
	if removed := w.RemoveParticlesInCircle(4, 4, 8); removed != 3 {
		t.Errorf("removed %d, want 3", removed)
	}
	if removed := w.RemoveParticlesInCircle(-500, -500, 10); removed != 0 {
		t.Errorf("removed %d from empty region, want 0", removed)
	}
}
