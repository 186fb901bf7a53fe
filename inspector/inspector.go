// Package inspector shows the state of whatever the user clicked on: a scene
// entity, a rigid body or a fluid.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
	"github.com/pthm-cable/sphfluid/sim"
	"github.com/pthm-cable/sphfluid/ui"
)

// Panel dimensions
const (
	PanelWidth   = 300
	HeaderHeight = 26
)

// markerPickRadius is how close a click must land to a scene entity, in px.
const markerPickRadius = 14

// Kind identifies what is selected.
type Kind int

const (
	KindNone Kind = iota
	KindEntity
	KindBody
	KindFluid
)

// Section is a titled group of fields.
type Section struct {
	Title  string
	Fields []Field
}

// Inspector manages the selection and draws its panel.
type Inspector struct {
	kind    Kind
	entity  ecs.Entity
	body    *physics.Body
	fluidID int
	probe   r2.Vec // click position, for fluid probes

	renderer *ui.Renderer
	panelX   int32
	panelY   int32
}

// NewInspector creates an inspector whose panel hugs the right screen edge.
func NewInspector(screenWidth int32) *Inspector {
	ins := &Inspector{renderer: ui.NewRenderer()}
	ins.Resize(screenWidth)
	return ins
}

// Resize moves the panel after a window resize.
func (ins *Inspector) Resize(screenWidth int32) {
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// Pick selects the thing under world position p: a scene entity first, then
// a rigid body, then the fluid of the nearest particle within one smoothing
// radius. It reports whether anything was selected.
func (ins *Inspector) Pick(s *sim.Simulation, p r2.Vec) bool {
	ins.Deselect()

	if e, ok := pickEntity(s.World(), p); ok {
		ins.kind = KindEntity
		ins.entity = e
		return true
	}
	if b := s.Space().BodyAt(p); b != nil {
		ins.kind = KindBody
		ins.body = b
		return true
	}

	h := s.Fluids().SmoothingRadius()
	best := h * h
	found := -1
	s.Fluids().ForEachParticle(func(f *fluid.Fluid, pt *fluid.Particle) {
		d := r2.Sub(pt.Pos, p)
		if d2 := r2.Dot(d, d); d2 < best {
			best = d2
			found = f.ID
		}
	})
	if found >= 0 {
		ins.kind = KindFluid
		ins.fluidID = found
		ins.probe = p
		return true
	}
	return false
}

// pickEntity returns the marker entity closest to p within markerPickRadius.
func pickEntity(w *ecs.World, p r2.Vec) (ecs.Entity, bool) {
	emitters := ecs.NewMap[components.Emitter](w)
	drains := ecs.NewMap[components.Drain](w)
	stirrers := ecs.NewMap[components.Stirrer](w)

	var closest ecs.Entity
	closestDist := float32(markerPickRadius * markerPickRadius)
	found := false

	filter := ecs.NewFilter1[components.Position](w)
	query := filter.Query()
	for query.Next() {
		e := query.Entity()
		if !emitters.Has(e) && !drains.Has(e) && !stirrers.Has(e) {
			continue
		}
		pos := query.Get()
		dx := float32(p.X) - pos.X
		dy := float32(p.Y) - pos.Y
		if d := dx*dx + dy*dy; d < closestDist {
			closest = e
			closestDist = d
			found = true
		}
	}
	return closest, found
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.kind = KindNone
	ins.body = nil
}

// Kind returns what is selected.
func (ins *Inspector) Kind() Kind { return ins.kind }

// SelectedBody returns the selected rigid body, or nil.
func (ins *Inspector) SelectedBody() *physics.Body {
	if ins.kind != KindBody {
		return nil
	}
	return ins.body
}

// validate drops selections that no longer exist in s.
func (ins *Inspector) validate(s *sim.Simulation) {
	switch ins.kind {
	case KindEntity:
		if !s.World().Alive(ins.entity) {
			ins.Deselect()
		}
	case KindBody:
		for _, b := range s.Space().Boxes() {
			if b == ins.body {
				return
			}
		}
		ins.Deselect()
	case KindFluid:
		if _, ok := s.Fluids().Fluid(ins.fluidID); !ok {
			ins.Deselect()
		}
	}
}

// Describe returns the sections shown for the current selection. It
// deselects first if the selection no longer exists.
func (ins *Inspector) Describe(s *sim.Simulation) (string, []Section) {
	ins.validate(s)

	switch ins.kind {
	case KindEntity:
		return ins.describeEntity(s.World())
	case KindBody:
		return ins.describeBody()
	case KindFluid:
		return ins.describeFluid(s.Fluids())
	}
	return "", nil
}

func (ins *Inspector) describeEntity(w *ecs.World) (string, []Section) {
	e := ins.entity
	title := "Entity"
	var sections []Section

	if pos := ecs.NewMap[components.Position](w); pos.Has(e) {
		p := pos.Get(e)
		sections = append(sections, Section{Title: "Position", Fields: []Field{
			{Name: "At", Value: r2.Vec{X: float64(p.X), Y: float64(p.Y)}, Widget: WidgetLabel},
		}})
	}
	if m := ecs.NewMap[components.Emitter](w); m.Has(e) {
		title = "Emitter"
		sections = append(sections, Section{Title: "Emitter", Fields: ExtractFields(m.Get(e))})
	}
	if m := ecs.NewMap[components.Drain](w); m.Has(e) {
		title = "Drain"
		sections = append(sections, Section{Title: "Drain", Fields: ExtractFields(m.Get(e))})
	}
	if m := ecs.NewMap[components.Stirrer](w); m.Has(e) {
		title = "Stirrer"
		sections = append(sections, Section{Title: "Stirrer", Fields: ExtractFields(m.Get(e))})
	}
	if m := ecs.NewMap[components.Tint](w); m.Has(e) {
		sections = append(sections, Section{Title: "Tint", Fields: ExtractFields(m.Get(e))})
	}
	return title, sections
}

func (ins *Inspector) describeBody() (string, []Section) {
	b := ins.body
	w, h := b.Size()
	fields := []Field{
		{Name: "Position", Value: b.Position(), Widget: WidgetLabel},
		{Name: "Size", Value: fmt.Sprintf("%.0f x %.0f", w, h), Widget: WidgetLabel},
		{Name: "Angle", Value: b.Angle(), Widget: WidgetAngle},
	}
	title := "Static Body"
	if b.Kind() == fluid.BodyDynamic {
		title = "Dynamic Body"
		v := b.Velocity()
		fields = append(fields,
			Field{Name: "Velocity", Value: v, Widget: WidgetLabel},
			Field{Name: "Speed", Value: math.Hypot(v.X, v.Y), Widget: WidgetBar, Options: map[string]string{"max": "300"}},
			Field{Name: "Mass", Value: b.Mass(), Widget: WidgetLabel},
		)
	}
	return title, []Section{{Title: "Body", Fields: fields}}
}

func (ins *Inspector) describeFluid(w *fluid.World) (string, []Section) {
	f, _ := w.Fluid(ins.fluidID)

	// Probe: particles of this fluid within h of the click.
	h := w.SmoothingRadius()
	var n int
	var density, pressure, speed float64
	for _, p := range f.Particles {
		d := r2.Sub(p.Pos, ins.probe)
		if r2.Dot(d, d) > h*h {
			continue
		}
		n++
		density += p.Density
		pressure += p.Pressure
		speed += math.Hypot(p.Vel.X, p.Vel.Y)
	}
	probe := []Field{{Name: "Samples", Value: n, Widget: WidgetLabel}}
	if n > 0 {
		inv := 1 / float64(n)
		probe = append(probe,
			Field{Name: "Density", Value: density * inv, Widget: WidgetLabel},
			Field{Name: "Compression", Value: density*inv/f.Config.RestDensity - 1, Widget: WidgetBar, Options: map[string]string{"max": "1"}},
			Field{Name: "Pressure", Value: pressure * inv, Widget: WidgetLabel},
			Field{Name: "Speed", Value: speed * inv, Widget: WidgetBar, Options: map[string]string{"max": "500"}},
		)
	}

	state := []Field{
		{Name: "Particles", Value: len(f.Particles), Widget: WidgetLabel},
		{Name: "Active", Value: f.Active, Widget: WidgetBool},
	}
	return fmt.Sprintf("Fluid #%d", f.ID), []Section{
		{Title: "State", Fields: state},
		{Title: "Config", Fields: ExtractFields(f.Config)},
		{Title: "Probe", Fields: probe},
	}
}

// HandleInput processes selection clicks. It returns true when the click
// was consumed and should not reach the tools.
func (ins *Inspector) HandleInput(s *sim.Simulation, cam *camera.Camera, enabled bool) bool {
	if ins.kind != KindNone && rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return true
	}
	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return false
	}
	mouse := rl.GetMousePosition()

	if ins.kind != KindNone {
		closeX := ins.panelX + PanelWidth - 22
		closeY := ins.panelY + 4
		if int32(mouse.X) >= closeX && int32(mouse.X) <= closeX+18 &&
			int32(mouse.Y) >= closeY && int32(mouse.Y) <= closeY+18 {
			ins.Deselect()
			return true
		}
		if int32(mouse.X) >= ins.panelX && int32(mouse.X) <= ins.panelX+PanelWidth &&
			int32(mouse.Y) >= ins.panelY && int32(mouse.Y) <= ins.panelY+ins.panelHeight(s) {
			return true
		}
	}
	if !enabled {
		return false
	}
	wx, wy := cam.ScreenToWorld(mouse.X, mouse.Y)
	ins.Pick(s, r2.Vec{X: float64(wx), Y: float64(wy)})
	return true
}

func (ins *Inspector) panelHeight(s *sim.Simulation) int32 {
	_, sections := ins.Describe(s)
	theme := ins.renderer.Theme
	height := int32(HeaderHeight) + theme.Padding*2
	for _, sec := range sections {
		height += theme.LineHeight + 4
		for _, f := range sec.Fields {
			height += fieldHeight(theme, f)
		}
	}
	return height
}

// Draw renders the inspector panel if something is selected.
func (ins *Inspector) Draw(s *sim.Simulation) {
	title, sections := ins.Describe(s)
	if ins.kind == KindNone {
		return
	}
	r := ins.renderer
	height := ins.panelHeight(s)

	r.DrawPanel(ins.panelX, ins.panelY, PanelWidth, height)
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, r.Theme.PanelBorder)
	rl.DrawText(title, ins.panelX+r.Theme.Padding, ins.panelY+6, 16, rl.White)

	closeX := ins.panelX + PanelWidth - 22
	closeY := ins.panelY + 4
	rl.DrawRectangle(closeX, closeY, 18, 18, rl.Color{R: 170, G: 70, B: 70, A: 255})
	rl.DrawText("X", closeX+5, closeY+3, 14, rl.White)

	x := ins.panelX + r.Theme.Padding
	y := ins.panelY + HeaderHeight + r.Theme.Padding
	width := int32(PanelWidth) - 2*r.Theme.Padding
	for _, sec := range sections {
		y = r.DrawSectionHeader(x, y, sec.Title)
		for _, f := range sec.Fields {
			y = DrawField(r, x, y, width, f)
		}
		y += 4
	}
}

// DrawHighlight outlines the selection in world space.
func (ins *Inspector) DrawHighlight(s *sim.Simulation, cam *camera.Camera) {
	color := rl.Color{R: 255, G: 220, B: 90, A: 220}
	switch ins.kind {
	case KindEntity:
		pos := ecs.NewMap[components.Position](s.World())
		if !s.World().Alive(ins.entity) || !pos.Has(ins.entity) {
			return
		}
		p := pos.Get(ins.entity)
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), markerPickRadius*cam.Zoom, color)
	case KindFluid:
		sx, sy := cam.WorldToScreen(float32(ins.probe.X), float32(ins.probe.Y))
		rl.DrawCircleLines(int32(sx), int32(sy), float32(s.Fluids().SmoothingRadius())*cam.Zoom, color)
	}
	// Bodies are highlighted by the body renderer.
}
