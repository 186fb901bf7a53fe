package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
)

// MarkerRenderer draws emitters, drains and stirrers.
type MarkerRenderer struct {
	emitters ecs.Filter2[components.Position, components.Emitter]
	drains   ecs.Filter2[components.Position, components.Drain]
	stirrers ecs.Filter2[components.Position, components.Stirrer]
	tints    *ecs.Map[components.Tint]
}

// NewMarkerRenderer creates a marker renderer bound to w. Create a new one
// when the world is replaced.
func NewMarkerRenderer(w *ecs.World) *MarkerRenderer {
	return &MarkerRenderer{
		emitters: *ecs.NewFilter2[components.Position, components.Emitter](w),
		drains:   *ecs.NewFilter2[components.Position, components.Drain](w),
		stirrers: *ecs.NewFilter2[components.Position, components.Stirrer](w),
		tints:    ecs.NewMap[components.Tint](w),
	}
}

func (r *MarkerRenderer) tint(e ecs.Entity, fallback rl.Color) rl.Color {
	if !r.tints.Has(e) {
		return fallback
	}
	c := r.tints.Get(e).Color
	return rl.NewColor(c.R, c.G, c.B, 255)
}

// Draw renders every marker.
func (r *MarkerRenderer) Draw(cam *camera.Camera) {
	eq := r.emitters.Query()
	for eq.Next() {
		pos, em := eq.Get()
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		color := r.tint(eq.Entity(), rl.SkyBlue)

		// Nozzle: a short line along the emission angle plus the spread cone.
		length := float32(18) * cam.Zoom
		for _, a := range []float64{em.Angle - em.Spread/2, em.Angle, em.Angle + em.Spread/2} {
			ex := sx + length*float32(math.Cos(a))
			ey := sy + length*float32(math.Sin(a))
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 2, color)
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 4*cam.Zoom, color)
	}

	dq := r.drains.Query()
	for dq.Next() {
		pos, d := dq.Get()
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		color := r.tint(dq.Entity(), rl.DarkGray)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, float32(d.Radius)*cam.Zoom, rl.Fade(color, 0.6))
		rl.DrawCircleLines(int32(sx), int32(sy), float32(d.Radius)*cam.Zoom, rl.LightGray)
	}

	sq := r.stirrers.Query()
	for sq.Next() {
		pos, st := sq.Get()
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		radius := float32(st.Radius) * cam.Zoom
		// Ring that fills up until the next pulse.
		progress := float32(0)
		if st.Interval > 0 {
			progress = float32(st.Timer / st.Interval)
		}
		rl.DrawRing(rl.Vector2{X: sx, Y: sy}, radius-2, radius, 0, 360*min(progress, 1), 48, rl.Fade(rl.Violet, 0.5))
		rl.DrawCircleLines(int32(sx), int32(sy), radius, rl.Fade(rl.Violet, 0.3))
	}
}

// DrawVelocities draws a line per visible particle along its velocity.
// scale converts px/s to px of line.
func DrawVelocities(w *fluid.World, cam *camera.Camera, scale float32) {
	color := rl.Color{R: 255, G: 255, B: 255, A: 90}
	w.ForEachParticle(func(_ *fluid.Fluid, p *fluid.Particle) {
		x, y := float32(p.Pos.X), float32(p.Pos.Y)
		if !cam.IsVisible(x, y, 0) {
			return
		}
		sx, sy := cam.WorldToScreen(x, y)
		ex, ey := cam.WorldToScreen(x+float32(p.Vel.X)*scale, y+float32(p.Vel.Y)*scale)
		rl.DrawLine(int32(sx), int32(sy), int32(ex), int32(ey), color)
	})
}

// OccupiedCells returns the distinct hash cells of cellSize that hold at
// least one active particle, with their particle counts.
func OccupiedCells(w *fluid.World, cellSize float64) map[[2]int]int {
	cells := make(map[[2]int]int)
	if cellSize <= 0 {
		return cells
	}
	w.ForEachParticle(func(_ *fluid.Fluid, p *fluid.Particle) {
		key := [2]int{int(math.Floor(p.Pos.X / cellSize)), int(math.Floor(p.Pos.Y / cellSize))}
		cells[key]++
	})
	return cells
}

// DrawHashCells shades every occupied smoothing-radius cell by how full it
// is.
func DrawHashCells(w *fluid.World, cam *camera.Camera) {
	h := w.SmoothingRadius()
	size := float32(h) * cam.Zoom
	for key, n := range OccupiedCells(w, h) {
		wx, wy := float32(float64(key[0])*h), float32(float64(key[1])*h)
		sx, sy := cam.WorldToScreen(wx, wy)
		alpha := uint8(min(20+n*8, 160))
		rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, 1, rl.Color{R: 120, G: 255, B: 160, A: alpha})
	}
}
