package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sphfluid/fluid"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Counts at window end
	Particles       int `csv:"particles"`
	ActiveParticles int `csv:"active_particles"`
	Fluids          int `csv:"fluids"`
	Bodies          int `csv:"bodies"`

	// Events during window
	Emitted int `csv:"emitted"`
	Drained int `csv:"drained"`
	Erased  int `csv:"erased"`

	// Compression: density / rest density - 1 (sampled at window end)
	DensityErrMean float64 `csv:"density_err_mean"`
	DensityErrStd  float64 `csv:"density_err_std"`
	DensityErrP50  float64 `csv:"density_err_p50"`
	DensityErrP90  float64 `csv:"density_err_p90"`

	// Motion
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedP50      float64 `csv:"speed_p50"`
	SpeedP90      float64 `csv:"speed_p90"`
	SpeedMax      float64 `csv:"speed_max"`
	KineticEnergy float64 `csv:"kinetic_energy"` // 0.5 * sum |v|^2, unit mass

	NeighborsMean float64 `csv:"neighbors_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
// values is sorted in place.
func ComputeDistribution(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)
	return mean, std, p50, p90
}

// StatsSampler gathers WindowStats from a fluid world. It reuses its buffers
// between samples.
type StatsSampler struct {
	densityErr []float64
	speeds     []float64
}

// Sample fills the end-of-window fields of ws from the active particles of
// w. Event counters are left to the caller.
func (s *StatsSampler) Sample(w *fluid.World, ws *WindowStats) {
	s.densityErr = s.densityErr[:0]
	s.speeds = s.speeds[:0]
	neighbors := 0
	ke := 0.0

	w.ForEachParticle(func(f *fluid.Fluid, p *fluid.Particle) {
		if f.Config.RestDensity > 0 && p.Density > 0 {
			s.densityErr = append(s.densityErr, p.Density/f.Config.RestDensity-1)
		}
		v2 := p.Vel.X*p.Vel.X + p.Vel.Y*p.Vel.Y
		ke += 0.5 * v2
		neighbors += len(p.Neighbors)
		s.speeds = append(s.speeds, math.Sqrt(v2))
	})

	ws.Particles = w.ParticleCount()
	ws.ActiveParticles = len(s.speeds)
	ws.Fluids = len(w.Fluids())
	ws.SimTimeSec = w.SimTime()
	ws.KineticEnergy = ke

	ws.DensityErrMean, ws.DensityErrStd, ws.DensityErrP50, ws.DensityErrP90 = ComputeDistribution(s.densityErr)
	ws.SpeedMean, _, ws.SpeedP50, ws.SpeedP90 = ComputeDistribution(s.speeds)
	ws.SpeedMax = 0
	ws.NeighborsMean = 0
	if len(s.speeds) > 0 {
		ws.SpeedMax = floats.Max(s.speeds)
		ws.NeighborsMean = float64(neighbors) / float64(len(s.speeds))
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("active_particles", s.ActiveParticles),
		slog.Int("fluids", s.Fluids),
		slog.Int("bodies", s.Bodies),
		slog.Int("emitted", s.Emitted),
		slog.Int("drained", s.Drained),
		slog.Int("erased", s.Erased),
		slog.Float64("density_err_mean", s.DensityErrMean),
		slog.Float64("density_err_std", s.DensityErrStd),
		slog.Float64("density_err_p50", s.DensityErrP50),
		slog.Float64("density_err_p90", s.DensityErrP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("neighbors_mean", s.NeighborsMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"active_particles", s.ActiveParticles,
		"fluids", s.Fluids,
		"bodies", s.Bodies,
		"emitted", s.Emitted,
		"drained", s.Drained,
		"erased", s.Erased,
		"density_err_mean", s.DensityErrMean,
		"density_err_p90", s.DensityErrP90,
		"speed_mean", s.SpeedMean,
		"speed_max", s.SpeedMax,
		"kinetic_energy", s.KineticEnergy,
		"neighbors_mean", s.NeighborsMean,
	)
}
