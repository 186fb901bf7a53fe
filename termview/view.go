// Package termview rasterises a fluid world onto a terminal screen.
package termview

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
)

// Ramp maps fill fraction to glyphs, emptiest first.
const Ramp = " .:-=+*#%@"

const (
	bodyGlyph  = '#'
	statusRows = 1
)

var (
	staticStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	dynamicStyle = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// cell accumulates the particles that land in one terminal cell.
type cell struct {
	fill    float64 // covered area / cell area
	r, g, b float64 // fill-weighted color sums
}

// View draws into a tcell screen. The last row is a status line; the rest
// covers the world bounds.
type View struct {
	screen tcell.Screen
	cells  []cell
	cols   int
	rows   int
}

// New creates a view over screen.
func New(screen tcell.Screen) *View {
	v := &View{screen: screen}
	v.Resize()
	return v
}

// Resize re-reads the screen size. Call it on tcell.EventResize.
func (v *View) Resize() {
	w, h := v.screen.Size()
	v.cols = w
	v.rows = max(h-statusRows, 0)
	if n := v.cols * v.rows; cap(v.cells) < n {
		v.cells = make([]cell, n)
	} else {
		v.cells = v.cells[:n]
	}
}

// FieldSize returns the number of columns and rows used for the world.
func (v *View) FieldSize() (cols, rows int) { return v.cols, v.rows }

// CellToWorld returns the world position at the center of cell (x, y).
func (v *View) CellToWorld(x, y int, bounds r2.Box) r2.Vec {
	cw, ch := v.cellSize(bounds)
	return r2.Vec{
		X: bounds.Min.X + (float64(x)+0.5)*cw,
		Y: bounds.Min.Y + (float64(y)+0.5)*ch,
	}
}

func (v *View) cellSize(bounds r2.Box) (float64, float64) {
	size := bounds.Size()
	return size.X / float64(max(v.cols, 1)), size.Y / float64(max(v.rows, 1))
}

// Draw rasterises w and the bodies of rw (which may be nil), writes status
// on the last row and shows the screen.
func (v *View) Draw(w *fluid.World, rw fluid.RigidWorld, status string) {
	v.screen.Clear()
	if v.cols == 0 || v.rows == 0 {
		v.screen.Show()
		return
	}

	bounds := w.Bounds()
	cw, ch := v.cellSize(bounds)
	area := cw * ch
	clear(v.cells)

	w.ForEachParticle(func(f *fluid.Fluid, p *fluid.Particle) {
		x := int((p.Pos.X - bounds.Min.X) / cw)
		y := int((p.Pos.Y - bounds.Min.Y) / ch)
		if x < 0 || y < 0 || x >= v.cols || y >= v.rows {
			return
		}
		d := 2 * f.Config.ParticleRadius
		weight := d * d / area
		c := &v.cells[y*v.cols+x]
		c.fill += weight
		c.r += weight * float64(f.Config.Color.R)
		c.g += weight * float64(f.Config.Color.G)
		c.b += weight * float64(f.Config.Color.B)
	})

	for y := range v.rows {
		for x := range v.cols {
			c := &v.cells[y*v.cols+x]
			if c.fill <= 0 {
				continue
			}
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(
				int32(c.r/c.fill), int32(c.g/c.fill), int32(c.b/c.fill)))
			v.screen.SetContent(x, y, Glyph(c.fill), nil, style)
		}
	}

	if rw != nil {
		v.drawBodies(rw, bounds)
	}
	v.drawStatus(status)
	v.screen.Show()
}

func (v *View) drawBodies(rw fluid.RigidWorld, bounds r2.Box) {
	cw, ch := v.cellSize(bounds)
	for _, b := range rw.Bodies() {
		style := dynamicStyle
		if b.Kind() == fluid.BodyStatic {
			style = staticStyle
		}
		bb := b.Bounds()
		x0 := max(int((bb.Min.X-bounds.Min.X)/cw), 0)
		y0 := max(int((bb.Min.Y-bounds.Min.Y)/ch), 0)
		x1 := min(int((bb.Max.X-bounds.Min.X)/cw), v.cols-1)
		y1 := min(int((bb.Max.Y-bounds.Min.Y)/ch), v.rows-1)
		verts := b.Vertices()
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if rw.PointInPolygon(verts, v.CellToWorld(x, y, bounds)) {
					v.screen.SetContent(x, y, bodyGlyph, nil, style)
				}
			}
		}
	}
}

func (v *View) drawStatus(status string) {
	y := v.rows
	x := 0
	for _, r := range status {
		if x >= v.cols {
			break
		}
		v.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
	for ; x < v.cols; x++ {
		v.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
}

// Glyph returns the ramp glyph for a fill fraction. Any fill above zero gets
// at least the first visible glyph; a full cell gets the last.
func Glyph(fill float64) rune {
	if fill <= 0 || math.IsNaN(fill) {
		return rune(Ramp[0])
	}
	last := len(Ramp) - 1
	i := 1 + int(fill*float64(last-1))
	return rune(Ramp[min(i, last)])
}
