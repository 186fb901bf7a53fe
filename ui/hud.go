package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Scene          string
	Tool           string
	Preset         string
	PresetColor    rl.Color
	ColorMode      string
	Particles      int
	Fluids         int
	Bodies         int
	Tick           int32
	SimTime        float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Scene: %s | Particles: %d | Fluids: %d | Bodies: %d", data.Scene, data.Particles, data.Fluids, data.Bodies),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | t=%.1fs | Steps: %dx | FPS: %d", data.Tick, data.SimTime, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(fmt.Sprintf("Tool: %s | Colour: %s | Fluid:", data.Tool, data.ColorMode), 10, 75, 16, rl.LightGray)
	toolWidth := rl.MeasureText(fmt.Sprintf("Tool: %s | Colour: %s | Fluid:", data.Tool, data.ColorMode), 16)
	rl.DrawRectangle(14+toolWidth, 78, 12, 12, data.PresetColor)
	rl.DrawText(data.Preset, 32+toolWidth, 75, 16, rl.LightGray)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32, registry *systems.SystemRegistry) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: registry,
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// SortedPhases returns the phases in stats ordered by average duration,
// slowest first.
func SortedPhases(stats telemetry.PerfStats) []string {
	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats.PhaseAvg[names[i]] != stats.PhaseAvg[names[j]] {
			return stats.PhaseAvg[names[i]] > stats.PhaseAvg[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y
	names := SortedPhases(stats)

	p.renderer.DrawPanel(x-6, y-6, 300, int32(len(names))*14+50)

	rl.DrawText("Pipeline Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range names {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		displayName := name
		if p.registry != nil {
			displayName = p.registry.GetName(name)
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", displayName, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
