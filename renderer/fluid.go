// Package renderer draws the fluid world with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/fluid"
)

// ColorMode selects how particles are tinted.
type ColorMode uint8

const (
	ColorByFluid   ColorMode = iota // configured fluid color
	ColorByDensity                  // compression relative to rest density
	ColorBySpeed                    // speed relative to the speed cap
)

var colorModeNames = [...]string{"fluid", "density", "speed"}

func (m ColorMode) String() string {
	if int(m) < len(colorModeNames) {
		return colorModeNames[m]
	}
	return "unknown"
}

// Next cycles to the following mode.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % ColorMode(len(colorModeNames))
}

// FluidRenderer draws particles as circles.
type FluidRenderer struct {
	Mode ColorMode
	// RadiusScale multiplies the particle radius. Values above 1 close the
	// gaps between particles so the fluid reads as a surface.
	RadiusScale float32
}

// NewFluidRenderer creates a renderer using fluid colors.
func NewFluidRenderer() *FluidRenderer {
	return &FluidRenderer{RadiusScale: 1.2}
}

// Draw renders every particle of every active fluid that the camera can see.
func (r *FluidRenderer) Draw(w *fluid.World, cam *camera.Camera) {
	maxSpeed := w.Params().MaxSpeed
	w.ForEachParticle(func(f *fluid.Fluid, p *fluid.Particle) {
		x, y := float32(p.Pos.X), float32(p.Pos.Y)
		radius := float32(f.Config.ParticleRadius) * r.RadiusScale
		if !cam.IsVisible(x, y, radius) {
			return
		}
		sx, sy := cam.WorldToScreen(x, y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius*cam.Zoom, r.particleColor(f, p, maxSpeed))
	})
}

func (r *FluidRenderer) particleColor(f *fluid.Fluid, p *fluid.Particle, maxSpeed float64) rl.Color {
	base := f.Config.Color
	switch r.Mode {
	case ColorByDensity:
		ratio := 0.0
		if f.Config.RestDensity > 0 {
			ratio = p.Density / f.Config.RestDensity
		}
		c := uint8(math.Min(ratio*200, 255))
		return rl.NewColor(c, 100, 255-c/2, base.A)
	case ColorBySpeed:
		t := 0.0
		if maxSpeed > 0 {
			t = math.Hypot(p.Vel.X, p.Vel.Y) / maxSpeed
		}
		t = math.Min(t, 1)
		return rl.NewColor(uint8(40+215*t), uint8(80+120*(1-t)), uint8(255*(1-t)), base.A)
	default:
		return rl.NewColor(base.R, base.G, base.B, base.A)
	}
}
