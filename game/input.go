package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.showHUD = !g.showHUD
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.controlsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showSliders = !g.showSliders
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.fluidRenderer.Mode = g.fluidRenderer.Mode.Next()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.tool = g.tool.Next()
	}
	if rl.IsKeyPressed(rl.KeyU) {
		turb := g.sim.Turbulence()
		turb.Enabled = !turb.Enabled
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.resetScene()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.nextScene()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot(g.snapshotDir)
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.loadLastSnapshot()
	}

	// Number keys pick the spray preset.
	for i := range min(len(g.presetNames), 9) {
		if rl.IsKeyPressed(int32(rl.KeyOne) + int32(i)) {
			g.preset = i
		}
	}

	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}

	g.handleCameraInput()
	g.handleToolInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.inspector.Resize(int32(w))
	g.statsPanel.SetPosition(int32(w)-290, int32(h)-200)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Wheel zooms toward the cursor.
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(m.X, m.Y, 1+wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleToolInput applies the current tool with the left button, attract
// with the right button, vortex with the middle button, and spray (E) or
// erase (X) while those keys are held.
func (g *Game) handleToolInput() {
	if g.showSliders && g.mouseOverSliders() {
		return
	}
	if g.inspector.HandleInput(g.sim, g.camera, g.tool == ToolInspect) {
		return
	}

	wx, wy := g.mouseWorld()
	p := r2.Vec{X: float64(wx), Y: float64(wy)}
	preset := g.presetNames[g.preset]

	use := func(t Tool) {
		if _, err := t.apply(g.sim, p, preset); err != nil {
			g.logger.Warn("tool failed", "tool", t.String(), "error", err)
		}
	}

	if g.tool != ToolInspect {
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) || (g.tool.continuous() && rl.IsMouseButtonDown(rl.MouseLeftButton)) {
			use(g.tool)
		}
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		use(ToolAttract)
	}
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		use(ToolVortex)
	}
	if rl.IsKeyDown(rl.KeyE) {
		use(ToolSpray)
	}
	if rl.IsKeyDown(rl.KeyX) {
		use(ToolErase)
	}
}
