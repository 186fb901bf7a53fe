package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/ui"
)

// Widget colors
var (
	ColorAngleBg     = rl.Color{R: 40, G: 50, B: 65, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 90, G: 180, B: 255, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// drawAngle renders a compass-style angle indicator. 0 points right and
// angles grow clockwise on screen.
func drawAngle(r *ui.Renderer, x, y int32, name string, radians float32) int32 {
	size := int32(32)
	centerX := x + r.Theme.LabelWidth + size/2
	centerY := y + size/2

	rl.DrawText(name+":", x, y+size/2-6, r.Theme.FontSize, r.Theme.LabelColor)

	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), r.Theme.LabelColor)

	needleLen := float32(size/2 - 3)
	endX := float32(centerX) + needleLen*float32(math.Cos(float64(radians)))
	endY := float32(centerY) + needleLen*float32(math.Sin(float64(radians)))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	degrees := radians * 180 / math.Pi
	rl.DrawText(fmt.Sprintf("%.0f deg", degrees), centerX+size/2+6, y+size/2-6, r.Theme.FontSize, r.Theme.ValueColor)

	return y + size + 4
}

// drawBool renders an on/off indicator.
func drawBool(r *ui.Renderer, x, y int32, name string, value bool) int32 {
	rl.DrawText(name+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)

	color := ColorBoolOff
	text := "OFF"
	if value {
		color = ColorBoolOn
		text = "ON"
	}
	ix := x + r.Theme.LabelWidth
	rl.DrawRectangle(ix, y+1, 12, 12, color)
	rl.DrawText(text, ix+17, y, r.Theme.FontSize, color)

	return y + r.Theme.LineHeight
}

// DrawField renders a field using its widget type and returns the next Y.
func DrawField(r *ui.Renderer, x, y, width int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			return r.DrawBar(x, y, field.Name, v, GetMax(field.Options), width)
		}

	case WidgetAngle:
		if v, ok := GetFloatValue(field.Value); ok {
			return drawAngle(r, x, y, field.Name, v)
		}

	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return drawBool(r, x, y, field.Name, v)
		}

	case WidgetColor:
		if c, ok := field.Value.(fluid.Color); ok {
			return r.DrawColorSwatch(x, y, field.Name, rl.Color{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return r.DrawLabelValue(x, y, field.Name, FormatValue(field.Value, field.Options["fmt"]))
}

// fieldHeight returns the vertical space DrawField uses for field.
func fieldHeight(theme ui.Theme, field Field) int32 {
	switch field.Widget {
	case WidgetAngle:
		if _, ok := GetFloatValue(field.Value); ok {
			return 36
		}
	case WidgetBar:
		if _, ok := GetFloatValue(field.Value); ok {
			return theme.LineHeight + 2
		}
	}
	return theme.LineHeight
}
