package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
)

// Backdrop draws the container and, optionally, the spatial hash cells.
type Backdrop struct {
	Top, Bottom rl.Color
	ShowGrid    bool
}

// NewBackdrop creates a dark blue container backdrop.
func NewBackdrop() *Backdrop {
	return &Backdrop{
		Top:    rl.Color{R: 18, G: 22, B: 34, A: 255},
		Bottom: rl.Color{R: 6, G: 8, B: 14, A: 255},
	}
}

// Draw fills the container rectangle and outlines its walls. cellSize is
// the smoothing radius, used for the grid overlay.
func (b *Backdrop) Draw(cam *camera.Camera, cellSize float32) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)
	rl.DrawRectangleGradientV(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), b.Top, b.Bottom)

	if b.ShowGrid && cellSize*cam.Zoom >= 4 {
		grid := rl.Color{R: 255, G: 255, B: 255, A: 18}
		minX, minY, maxX, maxY := cam.VisibleWorldBounds()
		startX := float32(int(max(minX, 0)/cellSize)) * cellSize
		for x := startX; x <= min(maxX, cam.WorldW); x += cellSize {
			sx, _ := cam.WorldToScreen(x, 0)
			rl.DrawLine(int32(sx), int32(y0), int32(sx), int32(y1), grid)
		}
		startY := float32(int(max(minY, 0)/cellSize)) * cellSize
		for y := startY; y <= min(maxY, cam.WorldH); y += cellSize {
			_, sy := cam.WorldToScreen(0, y)
			rl.DrawLine(int32(x0), int32(sy), int32(x1), int32(sy), grid)
		}
	}

	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, rl.Color{R: 120, G: 130, B: 150, A: 255})
}
