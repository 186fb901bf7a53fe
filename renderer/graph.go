package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Graph is a scrolling line plot of one scalar, e.g. kinetic energy.
type Graph struct {
	Label string
	Color rl.Color

	values []float64
	head   int
	full   bool
}

// NewGraph creates a graph keeping the last capacity samples.
func NewGraph(label string, capacity int, color rl.Color) *Graph {
	if capacity < 2 {
		capacity = 2
	}
	return &Graph{Label: label, Color: color, values: make([]float64, capacity)}
}

// Push appends a sample, dropping the oldest once full.
func (g *Graph) Push(v float64) {
	g.values[g.head] = v
	g.head = (g.head + 1) % len(g.values)
	if g.head == 0 {
		g.full = true
	}
}

// Len returns the number of stored samples.
func (g *Graph) Len() int {
	if g.full {
		return len(g.values)
	}
	return g.head
}

// at returns the i-th oldest sample.
func (g *Graph) at(i int) float64 {
	if !g.full {
		return g.values[i]
	}
	return g.values[(g.head+i)%len(g.values)]
}

// Draw plots the samples in the rectangle, scaled to the current maximum.
func (g *Graph) Draw(x, y, width, height float32) {
	n := g.Len()
	rl.DrawRectangle(int32(x), int32(y), int32(width), int32(height), rl.Color{R: 0, G: 0, B: 0, A: 140})
	if n < 2 {
		return
	}

	maxV := 0.0
	for i := range n {
		maxV = max(maxV, g.at(i))
	}
	if maxV == 0 {
		maxV = 1.0
	}

	baseY := y + height
	step := width / float32(len(g.values)-1)
	for i := 1; i < n; i++ {
		x1 := x + float32(i-1)*step
		x2 := x + float32(i)*step
		y1 := baseY - float32(g.at(i-1)/maxV)*(height-5)
		y2 := baseY - float32(g.at(i)/maxV)*(height-5)
		rl.DrawLine(int32(x1), int32(y1), int32(x2), int32(y2), g.Color)
	}
	rl.DrawText(fmt.Sprintf("%s  %.3g", g.Label, g.at(n-1)), int32(x)+5, int32(y)+5, 10, g.Color)
}
