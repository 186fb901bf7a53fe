package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/sim"
)

// Update handles input and advances the simulation by stepsPerUpdate ticks
// unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.sim.Perf().RecordFrame()

	if g.paused {
		return
	}
	for range g.stepsPerUpdate {
		g.sim.Step()
	}
}

// UpdateHeadless advances the simulation without touching raylib.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.sim.Step()
	}
}

// resetScene reloads the current scene or snapshot.
func (g *Game) resetScene() {
	if err := g.sim.Reset(); err != nil {
		g.logger.Error("reset failed", "error", err)
		return
	}
	g.sceneChanged()
}

// nextScene loads the scene after the current one in name order.
func (g *Game) nextScene() {
	names := sim.SceneNames()
	next := names[0]
	for i, n := range names {
		if n == g.sim.SceneName() {
			next = names[(i+1)%len(names)]
		}
	}
	if err := g.sim.LoadScene(next); err != nil {
		g.logger.Error("scene load failed", "scene", next, "error", err)
		return
	}
	g.sceneChanged()
}

// saveSnapshot writes a snapshot into the snapshot or output directory.
func (g *Game) saveSnapshot(dir string) {
	path, err := g.sim.SaveSnapshot(dir)
	if err != nil {
		g.logger.Error("snapshot failed", "error", err)
		return
	}
	g.lastSnapshot = path
	g.logger.Info("snapshot saved", "path", path)
}

// LoadSnapshot replaces the running scene with the snapshot at path.
func (g *Game) LoadSnapshot(path string) error {
	if err := g.sim.LoadSnapshot(path); err != nil {
		return err
	}
	g.lastSnapshot = path
	g.sceneChanged()
	return nil
}

// loadLastSnapshot restores the most recently saved or loaded snapshot.
func (g *Game) loadLastSnapshot() {
	if g.lastSnapshot == "" {
		return
	}
	if err := g.LoadSnapshot(g.lastSnapshot); err != nil {
		g.logger.Error("snapshot load failed", "path", g.lastSnapshot, "error", err)
	}
}

// mouseWorld returns the cursor position in world coordinates.
func (g *Game) mouseWorld() (float32, float32) {
	m := rl.GetMousePosition()
	return g.camera.ScreenToWorld(m.X, m.Y)
}
