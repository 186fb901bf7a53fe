package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
)

var (
	staticFill   = rl.Color{R: 90, G: 90, B: 100, A: 255}
	dynamicFill  = rl.Color{R: 170, G: 120, B: 60, A: 255}
	bodyOutline  = rl.Color{R: 230, G: 230, B: 230, A: 200}
	selectedLine = rl.Color{R: 255, G: 220, B: 60, A: 255}
)

// BodyRenderer draws rigid boxes.
type BodyRenderer struct{}

// NewBodyRenderer creates a new body renderer.
func NewBodyRenderer() *BodyRenderer {
	return &BodyRenderer{}
}

// Draw renders every box in space. selected, if non-nil, is outlined.
func (r *BodyRenderer) Draw(space *physics.Space, cam *camera.Camera, selected *physics.Body) {
	for _, b := range space.Boxes() {
		w, h := b.Size()
		pos := b.Position()
		cx, cy := float32(pos.X), float32(pos.Y)
		if !cam.IsVisible(cx, cy, float32(math.Hypot(w, h)/2)) {
			continue
		}

		fill := dynamicFill
		if b.Kind() == fluid.BodyStatic {
			fill = staticFill
		}
		sx, sy := cam.WorldToScreen(cx, cy)
		sw, sh := float32(w)*cam.Zoom, float32(h)*cam.Zoom
		rl.DrawRectanglePro(
			rl.Rectangle{X: sx, Y: sy, Width: sw, Height: sh},
			rl.Vector2{X: sw / 2, Y: sh / 2}, // rotate around box center
			float32(b.Angle()*180/math.Pi),
			fill,
		)

		outline := bodyOutline
		thick := float32(1)
		if b == selected {
			outline = selectedLine
			thick = 2
		}
		verts := b.Vertices()
		for i := range verts {
			a, c := verts[i], verts[(i+1)%len(verts)]
			ax, ay := cam.WorldToScreen(float32(a.X), float32(a.Y))
			bx, by := cam.WorldToScreen(float32(c.X), float32(c.Y))
			rl.DrawLineEx(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, thick, outline)
		}
	}
}
