package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/renderer"
	"github.com/pthm-cable/sphfluid/ui"
)

const controlsLegend = "[SPACE] Pause  [T] Tool  [1-9] Fluid  [C] Colour  [R] Reset  [N] Scene  [S/L] Snapshot  [O] Overlays  [H] Sliders  [,/.] Speed"

// Slider panel geometry.
const (
	sliderPanelWidth  = 260
	sliderPanelHeight = 150
	sliderWidth       = 150
)

// sliderPanel returns the screen rectangle holding the raygui sliders.
func (g *Game) sliderPanel() rl.Rectangle {
	return rl.Rectangle{
		X:      10,
		Y:      g.screenHeight - sliderPanelHeight - 35,
		Width:  sliderPanelWidth,
		Height: sliderPanelHeight,
	}
}

// mouseOverSliders reports whether the cursor is over the slider panel, so
// dragging a slider does not also apply a tool.
func (g *Game) mouseOverSliders() bool {
	return rl.CheckCollisionPointRec(rl.GetMousePosition(), g.sliderPanel())
}

// Draw renders the scene and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 4, G: 5, B: 9, A: 255})

	w := g.sim.Fluids()
	h := float32(w.SmoothingRadius())

	g.backdrop.ShowGrid = g.overlays.IsEnabled(ui.OverlayGrid)
	g.backdrop.Draw(g.camera, h)
	if g.overlays.IsEnabled(ui.OverlayHashCells) {
		renderer.DrawHashCells(w, g.camera)
	}

	g.fluidRenderer.Draw(w, g.camera)
	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		renderer.DrawVelocities(w, g.camera, 0.05)
	}
	g.bodyRenderer.Draw(g.sim.Space(), g.camera, g.inspector.SelectedBody())
	if g.overlays.IsEnabled(ui.OverlayMarkers) {
		g.markerRenderer.Draw(g.camera)
	}
	g.inspector.DrawHighlight(g.sim, g.camera)
	g.drawToolCursor()

	g.drawUI()

	rl.EndDrawing()
}

// drawToolCursor outlines the area the current tool affects.
func (g *Game) drawToolCursor() {
	if g.tool == ToolInspect || (g.showSliders && g.mouseOverSliders()) {
		return
	}
	radius := g.cfg.Tools.Radius
	if g.tool == ToolErase {
		radius = g.cfg.Tools.EraseRadius
	}
	m := rl.GetMousePosition()
	rl.DrawCircleLines(int32(m.X), int32(m.Y), float32(radius)*g.camera.Zoom, rl.Fade(rl.White, 0.35))
}

// drawUI renders all UI panels.
func (g *Game) drawUI() {
	if g.showHUD {
		g.hud.Draw(g.hudData())
	}

	if g.overlays.IsEnabled(ui.OverlayStats) && g.haveStats {
		g.statsPanel.Draw(g.lastStats)
	}

	if g.overlays.IsEnabled(ui.OverlayGraphs) {
		gx := g.screenWidth - 250
		g.energyGraph.Draw(gx, 10, 240, 70)
		g.compressGraph.Draw(gx, 90, 240, 70)
	}

	// Perf panel stacks under the controls panel when both are shown.
	belowControls := g.controlsPanel.Draw(g.overlays)
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.SetPosition(16, belowControls+16)
		g.perfPanel.Draw(g.sim.Perf().Stats())
	}

	g.inspector.Draw(g.sim)

	if g.showSliders {
		g.drawSliders()
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)
}

// hudData gathers the HUD fields from the simulation.
func (g *Game) hudData() ui.HUDData {
	w := g.sim.Fluids()
	preset := g.presetNames[g.preset]
	color := rl.Gray
	if fc, err := g.cfg.Preset(preset); err == nil {
		color = rl.Color{R: fc.Color.R, G: fc.Color.G, B: fc.Color.B, A: 255}
	}
	return ui.HUDData{
		Title:          "SPH Fluid",
		Scene:          g.sim.SceneName(),
		Tool:           g.tool.String(),
		Preset:         preset,
		PresetColor:    color,
		ColorMode:      g.fluidRenderer.Mode.String(),
		Particles:      w.ParticleCount(),
		Fluids:         len(w.Fluids()),
		Bodies:         len(g.sim.Space().Boxes()),
		Tick:           g.sim.Tick(),
		SimTime:        w.SimTime(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
	}
}

// drawSliders draws the live parameter sliders and applies their values.
func (g *Game) drawSliders() {
	panel := g.sliderPanel()
	rl.DrawRectangleRec(panel, rl.Fade(rl.Black, 0.7))
	rl.DrawRectangleLinesEx(panel, 1, rl.Gray)

	x := panel.X + 10
	y := panel.Y + 10
	w := g.sim.Fluids()

	rl.DrawText("Gravity Y", int32(x), int32(y), 14, rl.LightGray)
	grav := w.Gravity()
	newGrav := gui.SliderBar(
		rl.Rectangle{X: x + 80, Y: y, Width: sliderWidth, Height: 16},
		"", fmt.Sprintf("%.0f", grav.Y),
		float32(grav.Y), -1500, 1500,
	)
	if newGrav != float32(grav.Y) {
		g.sim.SetGravity(r2.Vec{X: grav.X, Y: float64(newGrav)})
	}
	y += 30

	rl.DrawText("Radius h", int32(x), int32(y), 14, rl.LightGray)
	h := float32(w.SmoothingRadius())
	newH := gui.SliderBar(
		rl.Rectangle{X: x + 80, Y: y, Width: sliderWidth, Height: 16},
		"", fmt.Sprintf("%.1f", h),
		h, 8, 32,
	)
	if newH != h {
		g.sim.SetSmoothingRadius(float64(newH))
	}
	y += 30

	turb := g.sim.Turbulence()
	rl.DrawText("Turbulence", int32(x), int32(y), 14, rl.LightGray)
	newStrength := gui.SliderBar(
		rl.Rectangle{X: x + 80, Y: y, Width: sliderWidth, Height: 16},
		"", fmt.Sprintf("%.0f", turb.Strength),
		float32(turb.Strength), 0, 600,
	)
	if newStrength != float32(turb.Strength) {
		turb.Strength = float64(newStrength)
	}
	y += 30

	label := "Turbulence: off"
	if turb.Enabled {
		label = "Turbulence: on"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 115, Height: 26}, label) {
		turb.Enabled = !turb.Enabled
	}
	if gui.Button(rl.Rectangle{X: x + 125, Y: y, Width: 105, Height: 26}, "Reset Gravity") {
		g.sim.SetGravity(g.cfg.Derived.Params.Gravity)
	}
}
