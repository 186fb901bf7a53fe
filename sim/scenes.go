package sim

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
)

// sceneFunc populates a freshly reset simulation.
type sceneFunc func(s *Simulation) error

var scenes = map[string]sceneFunc{
	"dam_break": buildDamBreak,
	"fountain":  buildFountain,
	"mixer":     buildMixer,
}

// SceneNames lists the registered scenes, sorted.
func SceneNames() []string {
	names := make([]string, 0, len(scenes))
	for n := range scenes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var (
	drainTint = fluid.Color{R: 30, G: 30, B: 30, A: 255}
	boxTint   = fluid.Color{R: 150, G: 110, B: 70, A: 255}
	rampTint  = fluid.Color{R: 90, G: 90, B: 100, A: 255}
)

// fluidFor returns the id of the fluid created from the named preset,
// creating it on first use.
func (s *Simulation) fluidFor(preset string) (int, error) {
	if id, ok := s.presets[preset]; ok {
		if _, alive := s.fluids.Fluid(id); alive {
			return id, nil
		}
	}
	fc, err := s.cfg.Preset(preset)
	if err != nil {
		return 0, err
	}
	id := s.fluids.CreateFluid(fc)
	s.presets[preset] = id
	return id, nil
}

// FluidFor is fluidFor for callers outside the package.
func (s *Simulation) FluidFor(preset string) (int, error) {
	return s.fluidFor(preset)
}

// addBox adds a dynamic box and an entity that mirrors it.
func (s *Simulation) addBox(center r2.Vec, w, h float64) error {
	body, err := s.space.AddDynamicBox(center, w, h, s.cfg.Rigid.BoxMass)
	if err != nil {
		return err
	}
	s.trackBox(body)
	return nil
}

// trackBox creates the entity for an existing dynamic body.
func (s *Simulation) trackBox(body *physics.Body) {
	pos := body.Position()
	ecs.NewMap4[components.Position, components.Rotation, components.Rigid, components.Tint](s.world).NewEntity(
		&components.Position{X: float32(pos.X), Y: float32(pos.Y)},
		&components.Rotation{Heading: float32(body.Angle())},
		&components.Rigid{Body: body},
		&components.Tint{Color: boxTint},
	)
}

// buildDamBreak drops a column of water onto a static ramp.
func buildDamBreak(s *Simulation) error {
	b := s.fluids.Bounds()
	w, h := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y

	id, err := s.fluidFor(s.cfg.Scene.Fluid)
	if err != nil {
		return err
	}
	if _, err := s.fluids.AddParticlesRect(id, b.Min.X, b.Min.Y+0.3*h, 0.3*w, 0.7*h, 0); err != nil {
		return err
	}

	ramp, err := s.space.AddStaticBox(r2.Vec{X: b.Min.X + 0.7*w, Y: b.Min.Y + 0.8*h}, 0.35*w, 12, -0.3)
	if err != nil {
		return err
	}
	ecs.NewMap3[components.Position, components.Rigid, components.Tint](s.world).NewEntity(
		&components.Position{X: float32(ramp.Position().X), Y: float32(ramp.Position().Y)},
		&components.Rigid{Body: ramp},
		&components.Tint{Color: rampTint},
	)
	return nil
}

// buildFountain sprays water upward from the floor of a walled pool with
// floating boxes. A drain in the corner keeps the particle count bounded.
func buildFountain(s *Simulation) error {
	b := s.fluids.Bounds()
	w, h := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	s.space.AddWalls(b, s.cfg.Rigid.WallThickness)

	id, err := s.fluidFor(s.cfg.Scene.Fluid)
	if err != nil {
		return err
	}
	if _, err := s.fluids.AddParticlesRect(id, b.Min.X, b.Min.Y+0.8*h, w, 0.2*h, 0); err != nil {
		return err
	}

	fc, _ := s.fluids.Fluid(id)
	ecs.NewMap3[components.Position, components.Emitter, components.Tint](s.world).NewEntity(
		&components.Position{X: float32(b.Min.X + 0.5*w), Y: float32(b.Max.Y - 10)},
		&components.Emitter{
			FluidID:   id,
			Angle:     -math.Pi / 2,
			Spread:    0.25,
			Speed:     450,
			Rate:      120,
			Remaining: -1,
		},
		&components.Tint{Color: fc.Config.Color},
	)
	ecs.NewMap3[components.Position, components.Drain, components.Tint](s.world).NewEntity(
		&components.Position{X: float32(b.Max.X - 20), Y: float32(b.Max.Y - 20)},
		&components.Drain{Radius: 20},
		&components.Tint{Color: drainTint},
	)

	for i := range 3 {
		x := b.Min.X + w*(0.2+0.3*float64(i))
		if err := s.addBox(r2.Vec{X: x, Y: b.Min.Y + 0.5*h}, 40, 30); err != nil {
			return err
		}
	}
	return nil
}

// buildMixer lays out three fluids side by side and stirs them with a
// pulsing vortex and the turbulence field.
func buildMixer(s *Simulation) error {
	b := s.fluids.Bounds()
	w, h := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y

	for i, name := range []string{"water", "oil", "honey"} {
		id, err := s.fluidFor(name)
		if err != nil {
			return err
		}
		x := b.Min.X + float64(i)*w/3
		if _, err := s.fluids.AddParticlesRect(id, x, b.Min.Y+0.55*h, w/3, 0.45*h, 0); err != nil {
			return err
		}
	}

	ecs.NewMap2[components.Position, components.Stirrer](s.world).NewEntity(
		&components.Position{X: float32(b.Min.X + 0.5*w), Y: float32(b.Min.Y + 0.75*h)},
		&components.Stirrer{Radius: 0.3 * h, Strength: 250, Interval: 1.5},
	)
	s.turbulence.Enabled = true
	return nil
}
