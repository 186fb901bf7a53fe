package fluid

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func mustPreset(t *testing.T, name string) Config {
	t.Helper()
	cfg, err := Preset(name)
	if err != nil {
		t.Fatalf("Preset(%q): %v", name, err)
	}
	return cfg
}

func TestDensityAtLeastSelfContribution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfg := mustPreset(t, "water")
	fluids := map[int]*Fluid{1: {ID: 1, Config: cfg, Active: true}}

	particles := make([]*Particle, 300)
	for i := range particles {
		particles[i] = newParticle(1, r2.Vec{X: rng.Float64() * 120, Y: rng.Float64() * 120}, r2.Vec{})
	}

	k := NewKernels(16)
	hash := NewSpatialHash(16)
	for i, p := range particles {
		hash.Insert(i, p.Pos.X, p.Pos.Y)
	}
	FindNeighbors(particles, hash, 16)
	ComputeDensityPressure(particles, fluids, k)

	self := k.SelfDensity()
	for i, p := range particles {
		if p.Density < self {
			t.Fatalf("particle %d density %v below self contribution %v", i, p.Density, self)
		}
		want := cfg.GasConstant * (p.Density - cfg.RestDensity)
		if math.Abs(p.Pressure-want) > 1e-12 {
			t.Fatalf("particle %d pressure %v, want %v", i, p.Pressure, want)
		}
	}
}

func TestNeighborsExcludeSelfAndFarParticles(t *testing.T) {
	particles := []*Particle{
		newParticle(1, r2.Vec{X: 0, Y: 0}, r2.Vec{}),
		newParticle(1, r2.Vec{X: 10, Y: 0}, r2.Vec{}),
		newParticle(1, r2.Vec{X: 16, Y: 0}, r2.Vec{}), // exactly h away
		newParticle(1, r2.Vec{X: 40, Y: 0}, r2.Vec{}), // 24 from the nearest
	}
	hash := NewSpatialHash(16)
	for i, p := range particles {
		hash.Insert(i, p.Pos.X, p.Pos.Y)
	}
	FindNeighbors(particles, hash, 16)

	if got := particles[0].Neighbors; len(got) != 1 || got[0] != 1 {
		t.Errorf("particle 0 neighbors = %v, want [1]", got)
	}
	if got := particles[2].Neighbors; len(got) != 1 || got[0] != 1 {
		t.Errorf("particle 2 neighbors = %v, want [1]", got)
	}
	if got := particles[3].Neighbors; len(got) != 0 {
		t.Errorf("particle 3 neighbors = %v, want none", got)
	}
}

func TestIsolatedParticleMovesInStraightLine(t *testing.T) {
	params := DefaultParams()
	params.Gravity = r2.Vec{}
	w := NewWorld(params)
	defer w.Close()

	cfg := mustPreset(t, "water")
	cfg.Viscosity = 0
	id := w.CreateFluid(cfg)

	start := r2.Vec{X: 400, Y: 300}
	vel := r2.Vec{X: 30, Y: -20}
	p, err := w.AddParticle(id, start, vel)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		w.Update(1.0 / 60.0)
		if p.Acc != (r2.Vec{}) {
			t.Fatalf("step %d: acceleration = %v, want zero", i, p.Acc)
		}
		if len(p.Neighbors) != 0 {
			t.Fatalf("step %d: isolated particle has neighbors %v", i, p.Neighbors)
		}
		off := r2.Sub(p.Pos, start)
		if c := math.Abs(r2.Cross(off, vel)); c > 1e-9 {
			t.Fatalf("step %d: particle left its line, cross = %v", i, c)
		}
	}

	// Only damping changes the speed.
	want := r2.Norm(vel) * math.Pow(0.999, 10)
	if got := r2.Norm(p.Vel); math.Abs(got-want) > 1e-9 {
		t.Errorf("speed = %v, want %v", got, want)
	}
}

func TestHandleBoundariesContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	fluids := map[int]*Fluid{
		1: {ID: 1, Config: Config{ParticleRadius: 4}},
		2: {ID: 2, Config: Config{ParticleRadius: 7}},
	}
	bounds := r2.Box{Max: r2.Vec{X: 200, Y: 100}}

	particles := make([]*Particle, 400)
	for i := range particles {
		pos := r2.Vec{X: rng.Float64()*400 - 100, Y: rng.Float64()*300 - 100}
		vel := r2.Vec{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		particles[i] = newParticle(1+i%2, pos, vel)
	}

	HandleBoundaries(particles, fluids, bounds, 0.3)

	for i, p := range particles {
		r := fluids[p.FluidID].Config.ParticleRadius
		if p.Pos.X < bounds.Min.X+r || p.Pos.X > bounds.Max.X-r ||
			p.Pos.Y < bounds.Min.Y+r || p.Pos.Y > bounds.Max.Y-r {
			t.Fatalf("particle %d at %v outside bounds shrunk by %v", i, p.Pos, r)
		}
	}
}

func TestHandleBoundariesRestitution(t *testing.T) {
	fluids := map[int]*Fluid{1: {ID: 1, Config: Config{ParticleRadius: 4}}}
	bounds := r2.Box{Max: r2.Vec{X: 100, Y: 100}}

	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"floor", r2.Vec{X: 50, Y: 110}, r2.Vec{X: 5, Y: 100}, r2.Vec{X: 50, Y: 96}, r2.Vec{X: 5, Y: -30}},
		{"left wall", r2.Vec{X: 1, Y: 50}, r2.Vec{X: -10, Y: 0}, r2.Vec{X: 4, Y: 50}, r2.Vec{X: 3, Y: 0}},
		{"corner", r2.Vec{X: 120, Y: -5}, r2.Vec{X: 20, Y: -40}, r2.Vec{X: 96, Y: 4}, r2.Vec{X: -6, Y: 12}},
		{"inside", r2.Vec{X: 50, Y: 50}, r2.Vec{X: 1, Y: 2}, r2.Vec{X: 50, Y: 50}, r2.Vec{X: 1, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParticle(1, tt.pos, tt.vel)
			HandleBoundaries([]*Particle{p}, fluids, bounds, 0.3)
			if r2.Norm(r2.Sub(p.Pos, tt.wantPos)) > 1e-9 {
				t.Errorf("pos = %v, want %v", p.Pos, tt.wantPos)
			}
			if r2.Norm(r2.Sub(p.Vel, tt.wantVel)) > 1e-9 {
				t.Errorf("vel = %v, want %v", p.Vel, tt.wantVel)
			}
		})
	}
}

func TestIntegrateOrderAndClamp(t *testing.T) {
	fluids := map[int]*Fluid{1: {ID: 1}}
	p := newParticle(1, r2.Vec{}, r2.Vec{X: 490, Y: 0})
	p.Acc = r2.Vec{X: 6000, Y: 0}
	p.ExtAcc = r2.Vec{X: 1, Y: 1}

	Integrate([]*Particle{p}, fluids, 0.01, 0.999, 500)

	if math.Abs(p.Vel.X-500) > 1e-9 {
		t.Errorf("vel.X = %v, want clamp to 500", p.Vel.X)
	}
	if math.Abs(p.Pos.X-5) > 1e-9 {
		t.Errorf("pos.X = %v, want 5 (position uses clamped velocity)", p.Pos.X)
	}
	if p.ExtAcc != (r2.Vec{}) {
		t.Errorf("ExtAcc = %v, want cleared", p.ExtAcc)
	}
}

func TestRemoveFluidDropsParticles(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()

	water := w.CreateFluid(mustPreset(t, "water"))
	oil := w.CreateFluid(mustPreset(t, "oil"))

	if _, err := w.AddParticlesRect(water, 100, 100, 80, 80, 0); err != nil {
		t.Fatal(err)
	}
	nOil, err := w.AddParticlesRect(oil, 300, 100, 40, 40, 0)
	if err != nil {
		t.Fatal(err)
	}
	w.Update(1.0 / 60.0)

	if !w.RemoveFluid(water) {
		t.Fatal("RemoveFluid returned false for existing fluid")
	}
	w.Update(1.0 / 60.0)

	if got := w.ParticleCount(); got != nOil {
		t.Errorf("ParticleCount() = %d, want %d", got, nOil)
	}
	for _, p := range w.Particles() {
		if p.FluidID == water {
			t.Fatalf("particle %d of removed fluid still in arena", p.ID)
		}
	}
	if _, ok := w.Fluid(water); ok {
		t.Error("removed fluid still reachable")
	}
	if w.RemoveFluid(water) {
		t.Error("second RemoveFluid should report false")
	}
}

func TestOrphanParticlesAreSkipped(t *testing.T) {
	fluids := map[int]*Fluid{1: {ID: 1, Config: mustPreset(t, "water")}}
	orphan := newParticle(99, r2.Vec{X: 10, Y: 10}, r2.Vec{X: 1, Y: 0})
	live := newParticle(1, r2.Vec{X: 15, Y: 10}, r2.Vec{})
	particles := []*Particle{orphan, live}

	hash := NewSpatialHash(16)
	for i, p := range particles {
		hash.Insert(i, p.Pos.X, p.Pos.Y)
	}
	k := NewKernels(16)
	FindNeighbors(particles, hash, 16)
	ComputeDensityPressure(particles, fluids, k)
	ComputeForces(particles, fluids, k, r2.Vec{Y: 980}, 1e-4)
	Integrate(particles, fluids, 1.0/60.0, 0.999, 500)

	if orphan.Density != 0 || orphan.Acc != (r2.Vec{}) {
		t.Errorf("orphan was processed: density %v acc %v", orphan.Density, orphan.Acc)
	}
	if orphan.Pos != (r2.Vec{X: 10, Y: 10}) {
		t.Errorf("orphan moved to %v", orphan.Pos)
	}
	// The live particle sees the orphan as a neighbor for density but
	// ignores it for forces.
	if live.Acc.X != 0 {
		t.Errorf("live particle got horizontal acceleration %v from orphan", live.Acc.X)
	}
}

func TestPressureForceDirection(t *testing.T) {
	tests := []struct {
		name     string
		pressure float64
		apart    bool
	}{
		{"positive pressure repels", 5, true},
		{"negative pressure attracts", -5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fluids := map[int]*Fluid{1: {ID: 1, Config: mustPreset(t, "water")}}
			left := newParticle(1, r2.Vec{X: 100, Y: 50}, r2.Vec{})
			right := newParticle(1, r2.Vec{X: 104, Y: 50}, r2.Vec{})
			particles := []*Particle{left, right}

			hash := NewSpatialHash(16)
			for i, p := range particles {
				hash.Insert(i, p.Pos.X, p.Pos.Y)
			}
			FindNeighbors(particles, hash, 16)
			for _, p := range particles {
				p.Density = 0.01
				p.Pressure = tt.pressure
			}
			ComputeForces(particles, fluids, NewKernels(16), r2.Vec{}, 1e-4)

			if left.Acc.Y != 0 || right.Acc.Y != 0 {
				t.Errorf("vertical acceleration %v %v", left.Acc.Y, right.Acc.Y)
			}
			if math.Abs(left.Acc.X+right.Acc.X) > 1e-9 {
				t.Errorf("accelerations not opposite: %v %v", left.Acc.X, right.Acc.X)
			}
			if got := right.Acc.X > 0 && left.Acc.X < 0; got != tt.apart {
				t.Errorf("left %v right %v, apart = %v, want %v", left.Acc.X, right.Acc.X, got, tt.apart)
			}
		})
	}
}

func TestSetActiveExcludesFluid(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()

	id := w.CreateFluid(mustPreset(t, "water"))
	p, _ := w.AddParticle(id, r2.Vec{X: 100, Y: 100}, r2.Vec{})

	if err := w.SetActive(id, false); err != nil {
		t.Fatal(err)
	}
	w.Update(1.0 / 60.0)

	if p.Pos != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("inactive particle moved to %v", p.Pos)
	}
	if len(w.Particles()) != 0 {
		t.Errorf("arena has %d particles, want 0", len(w.Particles()))
	}
	if w.ParticleCount() != 1 || w.ActiveParticleCount() != 0 {
		t.Errorf("counts = %d/%d, want 1/0", w.ParticleCount(), w.ActiveParticleCount())
	}

	if err := w.SetActive(42, true); !errors.Is(err, ErrFluidNotFound) {
		t.Errorf("SetActive(unknown) error = %v, want ErrFluidNotFound", err)
	}
}

func TestUpdateSubSteps(t *testing.T) {
	tests := []struct {
		name      string
		dt        float64
		wantSteps int64
	}{
		{"one frame", 1.0 / 60.0, 1},
		{"two frames", 2.0 / 60.0, 2},
		{"tenth", 0.1, 6},
		{"small", 0.001, 1},
		{"spike", 0.5, 30},
		{"zero", 0, 0},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(DefaultParams())
			defer w.Close()
			w.Update(tt.dt)
			if w.Tick() != tt.wantSteps {
				t.Errorf("Update(%v) took %d steps, want %d", tt.dt, w.Tick(), tt.wantSteps)
			}
		})
	}
}

func newSprayWorld(t *testing.T, seed int64) *World {
	t.Helper()
	params := DefaultParams()
	params.Seed = seed
	w := NewWorld(params)
	id := w.CreateFluid(mustPreset(t, "water"))
	if _, err := w.AddParticlesRect(id, 200, 300, 80, 80, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.EmitParticles(id, r2.Vec{X: 400, Y: 200}, 60, -math.Pi/4, 0.6, 200); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestSubSteppingIsStepCountInvariant(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"two sub-steps", 1.0 / 30.0},
		// 6*MaxDt computed at run time divides back to just above 6, so the
		// step count relies on the rounding bias in Update.
		{"six sub-steps", 6 * DefaultParams().MaxDt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := newSprayWorld(t, 5)
			defer once.Close()
			twice := newSprayWorld(t, 5)
			defer twice.Close()

			for i := 0; i < 20; i++ {
				once.Update(tt.dt)
				twice.Update(tt.dt / 2)
				twice.Update(tt.dt / 2)
			}

			a, b := once.Particles(), twice.Particles()
			if len(a) != len(b) {
				t.Fatalf("particle counts differ: %d vs %d", len(a), len(b))
			}
			for i := range a {
				if d := r2.Norm(r2.Sub(a[i].Pos, b[i].Pos)); d > 1e-9 {
					t.Fatalf("particle %d position differs by %v", i, d)
				}
				if d := r2.Norm(r2.Sub(a[i].Vel, b[i].Vel)); d > 1e-9 {
					t.Fatalf("particle %d velocity differs by %v", i, d)
				}
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	build := func(workers int) *World {
		params := DefaultParams()
		params.Workers = workers
		w := NewWorld(params)
		water := w.CreateFluid(mustPreset(t, "water"))
		honey := w.CreateFluid(mustPreset(t, "honey"))
		w.AddParticlesRect(water, 100, 200, 160, 160, 0)
		w.AddParticlesRect(honey, 240, 200, 80, 160, 0)
		return w
	}

	serial := build(0)
	defer serial.Close()
	parallel := build(4)
	defer parallel.Close()

	if n := len(serial.Particles()); n < parallelThreshold {
		t.Fatalf("scene too small to exercise the pool: %d particles", n)
	}

	for i := 0; i < 30; i++ {
		serial.Update(1.0 / 60.0)
		parallel.Update(1.0 / 60.0)
	}

	a, b := serial.Particles(), parallel.Particles()
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel || a[i].Density != b[i].Density {
			t.Fatalf("particle %d differs: serial %v/%v parallel %v/%v",
				i, a[i].Pos, a[i].Vel, b[i].Pos, b[i].Vel)
		}
	}
}

func TestWaterBlockSettles(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()

	cfg := mustPreset(t, "water")
	id := w.CreateFluid(cfg)
	w.SetBounds(r2.Box{Max: r2.Vec{X: 800, Y: 600}})
	w.SetGravity(r2.Vec{X: 0, Y: 980})

	n, err := w.AddParticlesRect(id, 0, 0, 40, 40, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Fatalf("AddParticlesRect placed %d particles, want 25", n)
	}

	for i := 0; i < 120; i++ {
		w.Update(1.0 / 60.0)
	}

	r := cfg.ParticleRadius
	floor := 600 - r
	var sumY, sumVy float64
	for _, p := range w.Particles() {
		if p.Pos.X < r-1e-9 || p.Pos.X > 800-r+1e-9 || p.Pos.Y < r-1e-9 || p.Pos.Y > floor+1e-9 {
			t.Errorf("particle %d escaped bounds: %v", p.ID, p.Pos)
		}
		if p.Pos.Y < floor-10*r {
			t.Errorf("particle %d still high at y=%.1f", p.ID, p.Pos.Y)
		}
		sumY += p.Pos.Y
		sumVy += math.Abs(p.Vel.Y)
	}

	meanY := sumY / float64(n)
	meanVy := sumVy / float64(n)
	if meanY < floor-6*r {
		t.Errorf("mean y = %.1f, want within a few radii of %.1f", meanY, floor)
	}
	if meanVy > 60 {
		t.Errorf("mean |vy| = %.1f, want fluid close to rest", meanVy)
	}
}

func TestSetSmoothingRadius(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()

	w.SetSmoothingRadius(24)
	if w.SmoothingRadius() != 24 || w.Kernels().H() != 24 || w.hash.CellSize() != 24 {
		t.Errorf("smoothing radius not applied everywhere: h=%v kernels=%v cell=%v",
			w.SmoothingRadius(), w.Kernels().H(), w.hash.CellSize())
	}

	w.SetSmoothingRadius(-1)
	if w.SmoothingRadius() != 24 {
		t.Errorf("negative radius accepted: %v", w.SmoothingRadius())
	}
}

func TestFluidsCreationOrder(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()

	a := w.CreateFluid(mustPreset(t, "water"))
	b := w.CreateFluid(mustPreset(t, "oil"))
	c := w.CreateFluid(mustPreset(t, "gas"))
	w.RemoveFluid(b)

	fluids := w.Fluids()
	if len(fluids) != 2 || fluids[0].ID != a || fluids[1].ID != c {
		t.Errorf("Fluids() ids = %v, want [%d %d]", fluidIDs(fluids), a, c)
	}
}

func fluidIDs(fs []*Fluid) []int {
	ids := make([]int, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

type countingRecorder struct {
	phases map[string]int
}

func (r *countingRecorder) StartPhase(name string) { r.phases[name]++ }

func TestStepReportsPhases(t *testing.T) {
	w := NewWorld(DefaultParams())
	defer w.Close()
	rec := &countingRecorder{phases: make(map[string]int)}
	w.SetRecorder(rec)

	w.Update(2.0 / 60.0)

	for _, phase := range []string{
		PhaseCollect, PhaseSpatialHash, PhaseNeighbors, PhaseDensity,
		PhaseForces, PhaseCoupling, PhaseIntegrate, PhaseBoundaries,
	} {
		if rec.phases[phase] != 2 {
			t.Errorf("phase %s recorded %d times, want 2", phase, rec.phases[phase])
		}
	}
}
