package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/telemetry"
)

// Layout is an initial block of fluid, as fractions of the container.
type Layout struct {
	Name       string
	X, Y, W, H float64
}

// DefaultLayouts are the settle tests every candidate runs: a collapsing
// column and a resting slab.
var DefaultLayouts = []Layout{
	{Name: "column", X: 0, Y: 0.25, W: 0.4, H: 0.75},
	{Name: "slab", X: 0, Y: 0.6, W: 1, H: 0.4},
}

// speedWeight scales residual motion against compression error.
const speedWeight = 0.5

// failedFitness is returned for runs that produce no usable samples.
const failedFitness = 1e6

// Result is the settled state of one candidate, averaged over layouts.
type Result struct {
	Fitness    float64
	DensityErr float64 // mean |density/rest - 1|
	DensitySD  float64
	Speed      float64 // mean particle speed, px/s
}

// FitnessEvaluator runs headless settle tests and scores how close a preset
// comes to an incompressible, quiet pool.
type FitnessEvaluator struct {
	params  *ParamVector
	base    fluid.Config
	world   fluid.Params
	settle  float64 // seconds simulated before sampling
	layouts []Layout
	mu      sync.Mutex
	last    Result
}

// NewFitnessEvaluator creates an evaluator for base, simulated in world.
func NewFitnessEvaluator(params *ParamVector, base fluid.Config, world fluid.Params, settleSec float64, layouts []Layout) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		base:    base,
		world:   world,
		settle:  settleSec,
		layouts: layouts,
	}
}

// LastResult returns the breakdown of the most recent evaluation.
func (fe *FitnessEvaluator) LastResult() Result {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate scores raw parameter values (lower = better). Layouts run in
// parallel.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := fe.params.ApplyToConfig(fe.base, raw)

	results := make([]Result, len(fe.layouts))
	var wg sync.WaitGroup
	for i, l := range fe.layouts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fe.runLayout(cfg, l)
		}()
	}
	wg.Wait()

	var avg Result
	for _, r := range results {
		avg.Fitness += r.Fitness
		avg.DensityErr += r.DensityErr
		avg.DensitySD += r.DensitySD
		avg.Speed += r.Speed
	}
	n := float64(len(results))
	avg.Fitness /= n
	avg.DensityErr /= n
	avg.DensitySD /= n
	avg.Speed /= n

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()
	return avg.Fitness
}

// runLayout fills one layout, lets it settle and samples the result.
func (fe *FitnessEvaluator) runLayout(cfg fluid.Config, l Layout) Result {
	w := fluid.NewWorld(fe.world)
	defer w.Close()

	id := w.CreateFluid(cfg)
	b := fe.world.Bounds
	size := r2.Sub(b.Max, b.Min)
	if _, err := w.AddParticlesRect(id, b.Min.X+l.X*size.X, b.Min.Y+l.Y*size.Y, l.W*size.X, l.H*size.Y, 0); err != nil {
		return Result{Fitness: failedFitness}
	}

	dt := fe.world.MaxDt
	for t := 0.0; t < fe.settle; t += dt {
		w.Update(dt)
	}

	var ws telemetry.WindowStats
	var sampler telemetry.StatsSampler
	sampler.Sample(w, &ws)
	return score(ws, fe.world.MaxSpeed)
}

// score turns a sampled window into a fitness. Compression error counts in
// both directions; residual speed is normalised by the speed cap.
func score(ws telemetry.WindowStats, maxSpeed float64) Result {
	if ws.ActiveParticles == 0 || math.IsNaN(ws.DensityErrMean) || math.IsNaN(ws.SpeedMean) {
		return Result{Fitness: failedFitness}
	}
	r := Result{
		DensityErr: math.Abs(ws.DensityErrMean),
		DensitySD:  ws.DensityErrStd,
		Speed:      ws.SpeedMean,
	}
	r.Fitness = r.DensityErr + r.DensitySD
	if maxSpeed > 0 {
		r.Fitness += speedWeight * ws.SpeedMean / maxSpeed
	}
	return r
}
