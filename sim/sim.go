// Package sim wires the fluid solver, the rigid body space and the ECS scene
// systems into one tickable simulation. It has no rendering dependencies so
// both the raylib and the terminal front-ends can drive it.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
)

// ErrUnknownScene is returned when a scene name is not registered.
var ErrUnknownScene = errors.New("sim: unknown scene")

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed           int64   // RNG seed for emission and turbulence
	Scene          string  // Scene to load (empty = config scene)
	LogStats       bool    // Log window stats via slog
	StatsWindowSec float64 // Stats window in seconds (0 = config)
	SnapshotDir    string  // Save a snapshot on every bookmark (empty = off)
	OutputDir      string  // CSV and config output (empty = off)
	Logger         *slog.Logger
}

// Simulation owns every piece of simulation state.
type Simulation struct {
	cfg     *config.Config
	rngSeed int64
	logger  *slog.Logger

	world  *ecs.World
	fluids *fluid.World
	space  *physics.Space

	rigidSync  *systems.RigidSyncSystem
	emitters   *systems.EmitterSystem
	drains     *systems.DrainSystem
	stirrers   *systems.StirrerSystem
	turbulence *systems.TurbulenceSystem

	sceneName    string
	snapshotPath string         // set while running a loaded snapshot
	presets      map[string]int // preset name -> fluid id, for the tools
	tick         int32
	dt           float64

	statsWindow float64

	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
}

// New builds a simulation and loads its starting scene.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	s := &Simulation{
		cfg:           cfg,
		rngSeed:       opts.Seed,
		logger:        logger,
		dt:            cfg.Physics.DT,
		statsWindow:   statsWindow,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output manager: %w", err)
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config", "error", err)
	}

	name := opts.Scene
	if name == "" {
		name = cfg.Scene.Name
	}
	if err := s.LoadScene(name); err != nil {
		om.Close()
		return nil, err
	}
	return s, nil
}

// LoadScene discards the current state and builds the named scene.
func (s *Simulation) LoadScene(name string) error {
	build, ok := scenes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	s.reset()
	s.sceneName = name
	s.snapshotPath = ""

	if err := build(s); err != nil {
		return fmt.Errorf("building scene %q: %w", name, err)
	}
	s.logger.Info("scene loaded",
		"scene", name,
		"fluids", len(s.fluids.Fluids()),
		"particles", s.fluids.ParticleCount(),
		"bodies", len(s.space.Boxes()),
	)
	return nil
}

// reset replaces all simulation state with an empty container.
func (s *Simulation) reset() {
	if s.fluids != nil {
		s.fluids.Close()
	}
	params := s.cfg.Derived.Params
	params.Seed = s.rngSeed
	s.fluids = fluid.NewWorld(params)
	s.fluids.SetLogger(s.logger)
	s.fluids.SetRecorder(s.perfCollector)

	s.space = physics.NewSpace(params.Gravity)
	s.space.SetLogger(s.logger)
	s.fluids.SetRigidWorld(s.space)

	s.world = ecs.NewWorld()
	s.rigidSync = systems.NewRigidSyncSystem(s.world)
	s.emitters = systems.NewEmitterSystem(s.world, s.fluids)
	s.drains = systems.NewDrainSystem(s.world, s.fluids)
	s.stirrers = systems.NewStirrerSystem(s.world, s.fluids)
	tc := s.cfg.Turbulence
	s.turbulence = systems.NewTurbulenceSystem(s.fluids, s.rngSeed, tc.Strength, tc.Scale, tc.TimeSpeed)
	s.turbulence.Enabled = tc.Enabled

	s.presets = make(map[string]int)
	s.tick = 0
	s.collector = telemetry.NewCollector(s.statsWindow, s.cfg.Derived.DT32)
	s.bookmarkDetector = telemetry.NewBookmarkDetector(10)
}

// Reset reloads the current scene, or the last loaded snapshot.
func (s *Simulation) Reset() error {
	if s.snapshotPath != "" {
		return s.LoadSnapshot(s.snapshotPath)
	}
	return s.LoadScene(s.sceneName)
}

// Step runs one tick: rigid bodies, then scene systems, then the fluid.
func (s *Simulation) Step() {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseRigid)
	s.space.Step(s.dt)

	s.perfCollector.StartPhase(telemetry.PhaseSystems)
	s.rigidSync.Update()
	s.collector.RecordEmitted(s.emitters.Update(s.world, s.dt))
	s.collector.RecordDrained(s.drains.Update())
	s.stirrers.Update(s.dt)
	s.turbulence.Update(s.dt)

	// The fluid reports its own phases through the collector.
	s.fluids.Update(s.dt)

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.tick++
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// SetGravity changes gravity for both the fluid and the rigid bodies.
func (s *Simulation) SetGravity(g r2.Vec) {
	s.fluids.SetGravity(g)
	s.space.SetGravity(g)
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (s *Simulation) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Close flushes output files and stops the solver workers.
func (s *Simulation) Close() error {
	s.fluids.Close()
	return s.outputManager.Close()
}

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Fluids returns the fluid world.
func (s *Simulation) Fluids() *fluid.World { return s.fluids }

// Space returns the rigid body space.
func (s *Simulation) Space() *physics.Space { return s.space }

// World returns the ECS world holding scene entities.
func (s *Simulation) World() *ecs.World { return s.world }

// Turbulence returns the noise field system.
func (s *Simulation) Turbulence() *systems.TurbulenceSystem { return s.turbulence }

// Perf returns the phase timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perfCollector }

// Tick returns the number of completed ticks since the scene was loaded.
func (s *Simulation) Tick() int32 { return s.tick }

// SceneName returns the loaded scene.
func (s *Simulation) SceneName() string { return s.sceneName }
