package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/telemetry"
)

// ControlsPanel renders the overlay toggle list.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 90, G: 180, B: 255, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

// StatsPanel renders the most recent telemetry window.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders ws and returns the Y below the panel.
func (s *StatsPanel) Draw(ws telemetry.WindowStats) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := s.width - padding*2

	panelHeight := lineHeight*10 + padding*2
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	x := s.x + padding
	y := s.y + padding
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Window @ %.1fs", ws.SimTimeSec))
	y = r.DrawLabelValue(x, y, "Active", fmt.Sprintf("%d / %d", ws.ActiveParticles, ws.Particles))
	y = r.DrawLabelValue(x, y, "Events", fmt.Sprintf("+%d  -%d drained  -%d erased", ws.Emitted, ws.Drained, ws.Erased))
	y = r.DrawCenteredBar(x, y, "Compression", float32(ws.DensityErrMean), 1, inner)
	y = r.DrawBar(x, y, "Comp. p90", float32(ws.DensityErrP90), 2, inner)
	y = r.DrawBar(x, y, "Speed mean", float32(ws.SpeedMean), 500, inner)
	y = r.DrawLabelValue(x, y, "Speed max", fmt.Sprintf("%.0f px/s", ws.SpeedMax))
	y = r.DrawLabelValue(x, y, "Kinetic", fmt.Sprintf("%.3g", ws.KineticEnergy))
	y = r.DrawLabelValue(x, y, "Neighbours", fmt.Sprintf("%.1f", ws.NeighborsMean))

	return y + padding
}
