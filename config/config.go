// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sphfluid/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig            `yaml:"screen"`
	World      WorldConfig             `yaml:"world"`
	Physics    PhysicsConfig           `yaml:"physics"`
	Coupling   CouplingConfig          `yaml:"coupling"`
	Rigid      RigidConfig             `yaml:"rigid"`
	Fluids     map[string]fluid.Config `yaml:"fluids"` // Extra presets; a name shadows the built-in one
	Scene      SceneConfig             `yaml:"scene"`
	Tools      ToolsConfig             `yaml:"tools"`
	Turbulence TurbulenceConfig        `yaml:"turbulence"`
	Telemetry  TelemetryConfig         `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the fluid container size.
type WorldConfig struct {
	Width  int `yaml:"width"`  // Container width in px (0 = use screen width)
	Height int `yaml:"height"` // Container height in px (0 = use screen height)
}

// PhysicsConfig holds the fluid solver parameters.
type PhysicsConfig struct {
	DT                  float64 `yaml:"dt"`               // Frame time fed to Update in headless mode
	SmoothingRadius     float64 `yaml:"smoothing_radius"` // Kernel support h, also the hash cell size
	MaxDT               float64 `yaml:"max_dt"`           // Largest sub-step
	GravityX            float64 `yaml:"gravity_x"`
	GravityY            float64 `yaml:"gravity_y"`
	Damping             float64 `yaml:"damping"` // Velocity multiplier per sub-step
	MaxSpeed            float64 `yaml:"max_speed"`
	BoundaryRestitution float64 `yaml:"boundary_restitution"`
	Epsilon             float64 `yaml:"epsilon"`
	Workers             int     `yaml:"workers"` // 0 or 1 = serial, -1 = GOMAXPROCS
}

// CouplingConfig holds the particle/rigid body interaction constants.
type CouplingConfig struct {
	StaticRestitution float64 `yaml:"static_restitution"`
	PushMargin        float64 `yaml:"push_margin"`
	VelocityBlend     float64 `yaml:"velocity_blend"`
	Scale             float64 `yaml:"scale"`
	Buoyancy          float64 `yaml:"buoyancy"`
}

// RigidConfig holds rigid body defaults for scenes.
type RigidConfig struct {
	BoxMass       float64 `yaml:"box_mass"`       // Mass of dynamic boxes
	WallThickness float64 `yaml:"wall_thickness"` // Container walls for dynamic boxes
}

// SceneConfig selects the starting scene.
type SceneConfig struct {
	Name  string `yaml:"name"`  // dam_break, fountain or mixer
	Fluid string `yaml:"fluid"` // Preset used by the spray tool at start
}

// ToolsConfig holds the strengths of the interactive tools.
type ToolsConfig struct {
	Radius          float64 `yaml:"radius"`
	ExplodeStrength float64 `yaml:"explode_strength"`
	AttractStrength float64 `yaml:"attract_strength"`
	VortexStrength  float64 `yaml:"vortex_strength"`
	SprayCount      int     `yaml:"spray_count"`
	SpraySpeed      float64 `yaml:"spray_speed"`
	EraseRadius     float64 `yaml:"erase_radius"`
}

// TurbulenceConfig holds the noise force field parameters.
type TurbulenceConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Strength  float64 `yaml:"strength"`   // Peak acceleration in px/s^2
	Scale     float64 `yaml:"scale"`      // Noise frequency per px
	TimeSpeed float64 `yaml:"time_speed"` // Noise animation speed
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32      // Physics.DT as float32
	ScreenW32 float32      // Screen.Width as float32
	ScreenH32 float32      // Screen.Height as float32
	WorldW32  float32      // Effective world width as float32
	WorldH32  float32      // Effective world height as float32
	Bounds    r2.Box       // Fluid container
	Params    fluid.Params // Solver parameters assembled from Physics and Coupling
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file. Fluid entries are replaced
		// whole, not merged field by field.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
	c.Derived.Bounds = r2.Box{Max: r2.Vec{X: float64(worldW), Y: float64(worldH)}}

	// Unset solver fields fall back to the library defaults.
	p := fluid.DefaultParams()
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&p.SmoothingRadius, c.Physics.SmoothingRadius)
	set(&p.MaxDt, c.Physics.MaxDT)
	p.Gravity = r2.Vec{X: c.Physics.GravityX, Y: c.Physics.GravityY}
	set(&p.Damping, c.Physics.Damping)
	set(&p.MaxSpeed, c.Physics.MaxSpeed)
	set(&p.BoundaryRestitution, c.Physics.BoundaryRestitution)
	set(&p.Epsilon, c.Physics.Epsilon)
	p.Workers = c.Physics.Workers
	set(&p.Coupling.StaticRestitution, c.Coupling.StaticRestitution)
	set(&p.Coupling.PushMargin, c.Coupling.PushMargin)
	set(&p.Coupling.VelocityBlend, c.Coupling.VelocityBlend)
	set(&p.Coupling.CouplingScale, c.Coupling.Scale)
	set(&p.Coupling.Buoyancy, c.Coupling.Buoyancy)
	p.Bounds = c.Derived.Bounds
	c.Derived.Params = p

	for name, fc := range c.Fluids {
		if err := fc.Validate(); err != nil {
			slog.Warn("dropping invalid fluid preset", "name", name, "error", err)
			delete(c.Fluids, name)
		}
	}
}

// Preset returns the fluid configuration registered under name, looking at
// configured fluids before the built-in presets.
func (c *Config) Preset(name string) (fluid.Config, error) {
	if fc, ok := c.Fluids[name]; ok {
		return fc, nil
	}
	return fluid.Preset(name)
}

// PresetNames lists built-in and configured presets, sorted.
func (c *Config) PresetNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range fluid.PresetNames() {
		seen[n] = true
		names = append(names, n)
	}
	for n := range c.Fluids {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
