package fluid

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by Preset for names that are not built in.
var ErrUnknownPreset = errors.New("fluid: unknown preset")

// Color is an 8-bit RGBA color. A is the render alpha.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

// Config describes one fluid. It is copied into the Fluid at creation and
// never changes afterwards.
type Config struct {
	ParticleRadius float64 `yaml:"particle_radius"` // px, also the boundary offset
	RestDensity    float64 `yaml:"rest_density"`    // number density at zero pressure
	GasConstant    float64 `yaml:"gas_constant"`    // pressure stiffness
	Viscosity      float64 `yaml:"viscosity"`
	SurfaceTension float64 `yaml:"surface_tension"` // accepted but not simulated
	GravityScale   float64 `yaml:"gravity_scale"`   // negative values rise
	Color          Color   `yaml:"color"`
}

// Validate reports configurations the solver cannot handle sensibly.
// The solver itself never calls it.
func (c Config) Validate() error {
	switch {
	case c.ParticleRadius <= 0:
		return fmt.Errorf("particle_radius must be positive, got %g", c.ParticleRadius)
	case c.RestDensity <= 0:
		return fmt.Errorf("rest_density must be positive, got %g", c.RestDensity)
	case c.GasConstant < 0:
		return fmt.Errorf("gas_constant must not be negative, got %g", c.GasConstant)
	case c.Viscosity < 0:
		return fmt.Errorf("viscosity must not be negative, got %g", c.Viscosity)
	}
	return nil
}

// Built-in presets, tuned for a 16 px smoothing radius and fills at twice the
// particle radius. Rest densities sit close to LatticeDensity(2*radius).
var presets = map[string]Config{
	"water": {
		ParticleRadius: 4,
		RestDensity:    0.0012,
		GasConstant:    25000,
		Viscosity:      0.4,
		SurfaceTension: 0.07,
		GravityScale:   1,
		Color:          Color{R: 40, G: 120, B: 255, A: 200},
	},
	"oil": {
		ParticleRadius: 4,
		RestDensity:    0.0011,
		GasConstant:    20000,
		Viscosity:      0.6,
		SurfaceTension: 0.03,
		GravityScale:   0.9,
		Color:          Color{R: 200, G: 170, B: 40, A: 220},
	},
	"honey": {
		ParticleRadius: 4,
		RestDensity:    0.0013,
		GasConstant:    15000,
		Viscosity:      1.2,
		SurfaceTension: 0.1,
		GravityScale:   1,
		Color:          Color{R: 235, G: 170, B: 30, A: 235},
	},
	"lava": {
		ParticleRadius: 5,
		RestDensity:    0.00075,
		GasConstant:    30000,
		Viscosity:      1.0,
		SurfaceTension: 0.2,
		GravityScale:   1,
		Color:          Color{R: 255, G: 80, B: 20, A: 255},
	},
	"slime": {
		ParticleRadius: 5,
		RestDensity:    0.0008,
		GasConstant:    12000,
		Viscosity:      0.9,
		SurfaceTension: 0.3,
		GravityScale:   1,
		Color:          Color{R: 90, G: 220, B: 60, A: 210},
	},
	"gas": {
		ParticleRadius: 3,
		RestDensity:    0.0021,
		GasConstant:    10000,
		Viscosity:      0.1,
		GravityScale:   -0.15,
		Color:          Color{R: 200, G: 200, B: 210, A: 90},
	},
}

// Preset returns a copy of a built-in fluid configuration.
func Preset(name string) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg, nil
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
