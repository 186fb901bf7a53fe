package fluid

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Phase names reported to a PhaseRecorder during Step.
const (
	PhaseCollect     = "collect"
	PhaseSpatialHash = "spatial_hash"
	PhaseNeighbors   = "neighbors"
	PhaseDensity     = "density"
	PhaseForces      = "forces"
	PhaseCoupling    = "coupling"
	PhaseIntegrate   = "integrate"
	PhaseBoundaries  = "boundaries"
)

// PhaseRecorder receives a call at the start of each pipeline phase.
type PhaseRecorder interface {
	StartPhase(name string)
}

// World owns every fluid, the per-step particle arena and the spatial hash.
//
// The arena is a flat slice of the particles of all active fluids, rebuilt at
// the start of every sub-step. Neighbor indices stored on particles point into
// it and go stale at the next rebuild. Any structural change (fluid created,
// removed or toggled, particles added or removed) marks the arena dirty so
// that force-field calls between steps see the current set.
//
// A World is not safe for concurrent use.
type World struct {
	params  Params
	kernels Kernels
	hash    *SpatialHash

	fluids      map[int]*Fluid
	order       []int // fluid ids in creation order
	nextFluidID int

	particles  []*Particle
	arenaDirty bool

	rigid    RigidWorld
	recorder PhaseRecorder
	logger   *slog.Logger
	rng      *rand.Rand

	pool    *workerPool
	scratch [][]int // per-chunk neighbor query buffers

	tick    int64
	simTime float64
}

// NewWorld creates an empty world.
func NewWorld(params Params) *World {
	if params.SmoothingRadius <= 0 {
		params.SmoothingRadius = DefaultParams().SmoothingRadius
	}
	if params.MaxDt <= 0 {
		params.MaxDt = DefaultParams().MaxDt
	}

	w := &World{
		params:      params,
		kernels:     NewKernels(params.SmoothingRadius),
		hash:        NewSpatialHash(params.SmoothingRadius),
		fluids:      make(map[int]*Fluid),
		nextFluidID: 1,
		logger:      slog.Default(),
		rng:         rand.New(rand.NewSource(params.Seed)),
	}

	slots := 1
	if params.Workers > 1 || params.Workers < 0 {
		w.pool = newWorkerPool(params.Workers)
		slots = w.pool.numWorkers
	}
	w.scratch = make([][]int, slots)
	for i := range w.scratch {
		w.scratch[i] = make([]int, 0, 64)
	}
	return w
}

// SetRigidWorld registers the rigid-body provider. nil disables coupling.
func (w *World) SetRigidWorld(rw RigidWorld) { w.rigid = rw }

// SetRecorder registers a phase timer. nil disables recording.
func (w *World) SetRecorder(r PhaseRecorder) { w.recorder = r }

// SetLogger replaces the logger used for lifecycle events.
func (w *World) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Close stops the worker pool, if any.
func (w *World) Close() {
	if w.pool != nil {
		w.pool.stop()
	}
}

// Params returns the current settings.
func (w *World) Params() Params { return w.params }

// Kernels returns the kernels for the current smoothing radius.
func (w *World) Kernels() Kernels { return w.kernels }

// Tick returns the number of sub-steps taken.
func (w *World) Tick() int64 { return w.tick }

// SimTime returns the simulated time in seconds.
func (w *World) SimTime() float64 { return w.simTime }

// SetSimTime sets the simulated clock, for restoring saved runs.
func (w *World) SetSimTime(t float64) { w.simTime = t }

// SmoothingRadius returns the kernel support radius.
func (w *World) SmoothingRadius() float64 { return w.params.SmoothingRadius }

// SetSmoothingRadius changes the kernel radius and the hash cell size
// together. Non-positive values are ignored.
func (w *World) SetSmoothingRadius(h float64) {
	if h <= 0 {
		return
	}
	w.params.SmoothingRadius = h
	w.kernels = NewKernels(h)
	w.hash.SetCellSize(h)
}

// SetBounds sets the containment box.
func (w *World) SetBounds(b r2.Box) { w.params.Bounds = b }

// Bounds returns the containment box.
func (w *World) Bounds() r2.Box { return w.params.Bounds }

// SetGravity sets the world gravity in px/s^2.
func (w *World) SetGravity(g r2.Vec) { w.params.Gravity = g }

// Gravity returns the world gravity.
func (w *World) Gravity() r2.Vec { return w.params.Gravity }

// CreateFluid adds an active, empty fluid and returns its id.
func (w *World) CreateFluid(cfg Config) int {
	id := w.nextFluidID
	w.nextFluidID++

	w.fluids[id] = &Fluid{ID: id, Config: cfg, Active: true}
	w.order = append(w.order, id)
	w.arenaDirty = true

	w.logger.Debug("fluid created", "id", id, "radius", cfg.ParticleRadius, "rest_density", cfg.RestDensity)
	return id
}

// RemoveFluid deletes a fluid together with its particles. The arena and the
// spatial hash are purged so no stale index can reach the removed particles.
// It reports whether the fluid existed.
func (w *World) RemoveFluid(id int) bool {
	f, ok := w.fluids[id]
	if !ok {
		return false
	}
	n := len(f.Particles)
	clear(f.Particles)
	f.Particles = nil
	f.Active = false

	delete(w.fluids, id)
	for i, fid := range w.order {
		if fid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	clear(w.particles)
	w.particles = w.particles[:0]
	w.arenaDirty = true
	w.hash.Clear()

	w.logger.Debug("fluid removed", "id", id, "particles", n)
	return true
}

// SetActive toggles whether a fluid takes part in the simulation.
func (w *World) SetActive(id int, active bool) error {
	f, ok := w.fluids[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFluidNotFound, id)
	}
	if f.Active != active {
		f.Active = active
		w.arenaDirty = true
	}
	return nil
}

// Fluid returns the fluid with the given id.
func (w *World) Fluid(id int) (*Fluid, bool) {
	f, ok := w.fluids[id]
	return f, ok
}

// Fluids returns all fluids in creation order.
func (w *World) Fluids() []*Fluid {
	out := make([]*Fluid, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.fluids[id])
	}
	return out
}

// ParticleCount returns the number of particles owned by fluids in the
// table, active or not.
func (w *World) ParticleCount() int {
	n := 0
	for _, f := range w.fluids {
		n += len(f.Particles)
	}
	return n
}

// ActiveParticleCount returns the number of particles in active fluids.
func (w *World) ActiveParticleCount() int {
	n := 0
	for _, f := range w.fluids {
		if f.Active {
			n += len(f.Particles)
		}
	}
	return n
}

// Particles returns the current arena. The slice is owned by the world and
// is rebuilt on the next step.
func (w *World) Particles() []*Particle {
	return w.arena()
}

// ForEachParticle calls fn for every particle of every active fluid, in
// fluid creation order.
func (w *World) ForEachParticle(fn func(f *Fluid, p *Particle)) {
	for _, id := range w.order {
		f := w.fluids[id]
		if !f.Active {
			continue
		}
		for _, p := range f.Particles {
			fn(f, p)
		}
	}
}

// Update advances the simulation by dt seconds, split into equal sub-steps
// no longer than MaxDt.
func (w *World) Update(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	// The small bias keeps ratios like 0.1/(1/60) from rounding up to an
	// extra step.
	steps := int(math.Ceil(dt/w.params.MaxDt - 1e-9))
	if steps < 1 {
		steps = 1
	}
	sub := dt / float64(steps)
	for range steps {
		w.Step(sub)
	}
}

// Step runs the full pipeline once with time step dt.
func (w *World) Step(dt float64) {
	w.phase(PhaseCollect)
	w.collect()
	particles := w.particles
	n := len(particles)

	w.phase(PhaseSpatialHash)
	w.hash.Clear()
	for i, p := range particles {
		w.hash.Insert(i, p.Pos.X, p.Pos.Y)
	}

	h := w.params.SmoothingRadius
	k := w.kernels
	fluids := w.fluids
	eps := w.params.Epsilon

	w.phase(PhaseNeighbors)
	w.run(n, func(lo, hi, slot int) {
		findNeighborsRange(particles, w.hash, h, lo, hi, &w.scratch[slot])
	})

	w.phase(PhaseDensity)
	w.run(n, func(lo, hi, _ int) {
		densityPressureRange(particles, fluids, k, lo, hi)
	})

	w.phase(PhaseForces)
	gravity := w.params.Gravity
	w.run(n, func(lo, hi, _ int) {
		forcesRange(particles, fluids, k, gravity, eps, lo, hi)
	})

	w.phase(PhaseCoupling)
	CoupleRigidBodies(particles, fluids, w.rigid, gravity, w.params.Coupling)

	w.phase(PhaseIntegrate)
	damping, maxSpeed := w.params.Damping, w.params.MaxSpeed
	w.run(n, func(lo, hi, _ int) {
		integrateRange(particles, fluids, dt, damping, maxSpeed, lo, hi)
	})

	w.phase(PhaseBoundaries)
	bounds, rest := w.params.Bounds, w.params.BoundaryRestitution
	w.run(n, func(lo, hi, _ int) {
		boundariesRange(particles, fluids, bounds, rest, lo, hi)
	})

	w.tick++
	w.simTime += dt
}

// collect rebuilds the arena from the active fluids.
func (w *World) collect() {
	clear(w.particles)
	w.particles = w.particles[:0]
	for _, id := range w.order {
		f := w.fluids[id]
		if !f.Active {
			continue
		}
		w.particles = append(w.particles, f.Particles...)
	}
	w.arenaDirty = false
}

// arena returns the arena, recollecting it first if it is stale.
func (w *World) arena() []*Particle {
	if w.arenaDirty {
		w.collect()
	}
	return w.particles
}

func (w *World) run(n int, fn rangeFunc) {
	if w.pool == nil {
		fn(0, n, 0)
		return
	}
	w.pool.run(n, fn)
}

func (w *World) phase(name string) {
	if w.recorder != nil {
		w.recorder.StartPhase(name)
	}
}
