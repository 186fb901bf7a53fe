// Package main tunes fluid presets with CMA-ES so a settled pool sits close
// to its rest density with little residual motion.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/fluid"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	DensityErr  float64 `csv:"density_err"`
	DensitySD   float64 `csv:"density_sd"`
	Speed       float64 `csv:"speed"`
	GasConstant float64 `csv:"gas_constant"`
	Viscosity   float64 `csv:"viscosity"`
	RestDensity float64 `csv:"rest_density"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	preset := flag.String("preset", "water", "Fluid preset to tune")
	settle := flag.Float64("settle", 3, "Simulated seconds per settle test")
	width := flag.Float64("width", 240, "Test container width in px")
	height := flag.Float64("height", 160, "Test container height in px")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		logger.Error("--output is required")
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	base, err := cfg.Preset(*preset)
	if err != nil {
		logger.Error("unknown preset", "preset", *preset, "error", err)
		os.Exit(1)
	}

	world := cfg.Derived.Params
	world.Bounds = r2.Box{Max: r2.Vec{X: *width, Y: *height}}
	world.Workers = 0

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, base, world, *settle, DefaultLayouts)

	dim := params.Dim()
	initX := params.Normalize(params.FromConfig(base))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		logger.Error("failed to create log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := evaluator.Evaluate(params.FromConfig(base))
	bestParams := params.FromConfig(base)
	startTime := time.Now()
	logger.Info("baseline", "preset", *preset, "fitness", bestFitness)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			res := evaluator.LastResult()
			rec := EvalRecord{
				Eval:        evalCount,
				Fitness:     fitness,
				DensityErr:  res.DensityErr,
				DensitySD:   res.DensitySD,
				Speed:       res.Speed,
				GasConstant: raw[0],
				Viscosity:   raw[1],
				RestDensity: raw[2],
			}
			if err := writeRecord(logFile, rec, evalCount == 1); err != nil {
				logger.Warn("failed to log evaluation", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: fitness=%.4f density_err=%.3f speed=%.1f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, res.DensityErr, res.Speed, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.2,
		Population:   popSize,
	}

	fmt.Printf("Tuning %q with %d parameters, population=%d, max_evals=%d\n", *preset, dim, popSize, *maxEvals)

	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		logger.Info("optimization ended", "reason", err)
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6g\n", spec.Name, bestParams[i])
	}

	// Save the tuned preset as a config overlay.
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to reload config", "error", err)
		os.Exit(1)
	}
	if bestCfg.Fluids == nil {
		bestCfg.Fluids = make(map[string]fluid.Config)
	}
	bestCfg.Fluids[*preset] = params.ApplyToConfig(base, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		logger.Error("failed to write best config", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}

// writeRecord appends rec to the log, with a header on the first row.
func writeRecord(f *os.File, rec EvalRecord, header bool) error {
	records := []EvalRecord{rec}
	if header {
		return gocsv.Marshal(records, f)
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}
