// Package game is the raylib front-end: window input, camera, drawing and
// the HUD around a sim.Simulation.
package game

import (
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/inspector"
	"github.com/pthm-cable/sphfluid/renderer"
	"github.com/pthm-cable/sphfluid/sim"
	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
	"github.com/pthm-cable/sphfluid/ui"
)

// Options configures game behavior.
type Options struct {
	Seed           int64
	Scene          string
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int // Ticks per Update call (1 = normal speed)
}

// graphCapacity is the number of telemetry windows kept per graph.
const graphCapacity = 120

// Game holds the simulation and everything needed to show it.
type Game struct {
	sim    *sim.Simulation
	cfg    *config.Config
	logger *slog.Logger

	paused         bool
	headless       bool
	stepsPerUpdate int

	tool   Tool
	preset int // index into presetNames
	// presetNames is the config preset list, used by the number keys.
	presetNames []string

	// Rendering (nil in headless mode)
	camera         *camera.Camera
	backdrop       *renderer.Backdrop
	fluidRenderer  *renderer.FluidRenderer
	bodyRenderer   *renderer.BodyRenderer
	markerRenderer *renderer.MarkerRenderer
	energyGraph    *renderer.Graph
	compressGraph  *renderer.Graph
	inspector      *inspector.Inspector
	hud            *ui.HUD
	perfPanel      *ui.PerfPanel
	statsPanel     *ui.StatsPanel
	controlsPanel  *ui.ControlsPanel
	overlays       *ui.OverlayRegistry
	showHUD        bool
	showSliders    bool
	lastStats      telemetry.WindowStats
	haveStats      bool
	screenWidth    float32
	screenHeight   float32
	lastSnapshot   string
	snapshotDir    string
}

// NewGameWithOptions creates a game from the global config. In windowed
// mode the raylib window must already be open.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	logger := slog.Default()

	s, err := sim.New(cfg, sim.Options{
		Seed:           opts.Seed,
		Scene:          opts.Scene,
		LogStats:       opts.LogStats,
		StatsWindowSec: opts.StatsWindowSec,
		SnapshotDir:    opts.SnapshotDir,
		OutputDir:      opts.OutputDir,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		sim:            s,
		cfg:            cfg,
		logger:         logger,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		presetNames:    cfg.PresetNames(),
		snapshotDir:    opts.SnapshotDir,
		showHUD:        true,
	}
	for i, name := range g.presetNames {
		if name == cfg.Scene.Fluid {
			g.preset = i
		}
	}

	if opts.Headless {
		return g
	}

	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	g.backdrop = renderer.NewBackdrop()
	g.fluidRenderer = renderer.NewFluidRenderer()
	g.bodyRenderer = renderer.NewBodyRenderer()
	g.markerRenderer = renderer.NewMarkerRenderer(s.World())
	g.energyGraph = renderer.NewGraph("kinetic energy", graphCapacity, rl.SkyBlue)
	g.compressGraph = renderer.NewGraph("compression p90", graphCapacity, rl.Orange)
	g.inspector = inspector.NewInspector(int32(g.screenWidth))
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 130, systems.NewSystemRegistry())
	g.statsPanel = ui.NewStatsPanel(int32(g.screenWidth)-290, int32(g.screenHeight)-200, 280)
	g.controlsPanel = ui.NewControlsPanel(10, 130, 220)
	g.overlays = ui.NewOverlayRegistry()

	s.SetStatsCallback(g.onStats)
	return g
}

// onStats records a flushed telemetry window for the panels and graphs.
func (g *Game) onStats(ws telemetry.WindowStats) {
	g.lastStats = ws
	g.haveStats = true
	g.energyGraph.Push(ws.KineticEnergy)
	g.compressGraph.Push(ws.DensityErrP90)
}

// sceneChanged rebinds everything that holds on to the replaced ECS world.
func (g *Game) sceneChanged() {
	g.haveStats = false
	if g.headless {
		return
	}
	g.markerRenderer = renderer.NewMarkerRenderer(g.sim.World())
	g.inspector.Deselect()
}

// Unload releases resources.
func (g *Game) Unload() {
	if err := g.sim.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// Simulation returns the driven simulation.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}
