// Turbulence field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/turbpreview
package main

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 640
	previewW     = 640
	previewH     = 480
	panelWidth   = windowWidth - previewW - 30
	arrowStep    = 24 // screen px between arrows
)

// FieldParams holds the turbulence settings being previewed.
type FieldParams struct {
	Strength  float32
	Scale     float32
	TimeSpeed float32
	Seed      int64
}

func defaultParams() FieldParams {
	cfg := config.Cfg().Turbulence
	return FieldParams{
		Strength:  float32(cfg.Strength),
		Scale:     float32(cfg.Scale),
		TimeSpeed: float32(cfg.TimeSpeed),
		Seed:      1,
	}
}

func main() {
	if err := config.Init(""); err != nil {
		panic(err)
	}
	worldW := float64(config.Cfg().Derived.WorldW32)
	worldH := float64(config.Cfg().Derived.WorldH32)

	rl.InitWindow(windowWidth, windowHeight, "Turbulence Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	field := newField(params)
	animating := false

	for !rl.WindowShouldClose() {
		if animating {
			field.Advance(float64(rl.GetFrameTime()))
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		maxMag := drawField(field, worldW, worldH)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("World: %.0f x %.0f px  Peak: %.0f px/s^2", worldW, worldH, maxMag), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.2f", field.Time()), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Turbulence Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Strength (peak px/s^2)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newStrength := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1000",
			params.Strength, 0, 1000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.Strength), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newStrength != params.Strength {
			params.Strength = newStrength
			field.Strength = float64(newStrength)
		}
		panelY += 35

		rl.DrawText("Scale (noise frequency per px)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.001", "0.05",
			params.Scale, 0.001, 0.05,
		)
		rl.DrawText(fmt.Sprintf("%.4f", params.Scale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newScale != params.Scale {
			params.Scale = newScale
			field.Scale = float64(newScale)
		}
		panelY += 35

		rl.DrawText("Time speed (pattern drift)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSpeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "3",
			params.TimeSpeed, 0, 3,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.TimeSpeed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSpeed != params.TimeSpeed {
			params.TimeSpeed = newSpeed
			field.TimeSpeed = float64(newSpeed)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			field.ResetTime()
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			field = newField(params)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			field = newField(params)
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := yamlSnippet(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func newField(p FieldParams) *systems.TurbulenceSystem {
	return systems.NewTurbulenceSystem(nil, p.Seed, float64(p.Strength), float64(p.Scale), float64(p.TimeSpeed))
}

// drawField shades the preview by field magnitude and draws direction
// arrows. It returns the largest magnitude sampled.
func drawField(field *systems.TurbulenceSystem, worldW, worldH float64) float64 {
	sx := worldW / previewW
	sy := worldH / previewH
	peak := max(field.Strength, 1)
	maxMag := 0.0

	for y := 0; y < previewH; y += arrowStep {
		for x := 0; x < previewW; x += arrowStep {
			cx := float64(x) + arrowStep/2
			cy := float64(y) + arrowStep/2
			a := field.Sample(r2.Vec{X: cx * sx, Y: cy * sy})
			mag := r2.Norm(a)
			maxMag = max(maxMag, mag)

			shade := uint8(255 - min(mag/peak, 1)*120)
			rl.DrawRectangle(int32(10+x), int32(10+y), arrowStep, arrowStep, rl.Color{R: shade, G: shade, B: 255, A: 255})

			if mag == 0 {
				continue
			}
			l := float64(arrowStep/2) * min(mag/peak, 1) / mag
			from := rl.Vector2{X: float32(10 + cx), Y: float32(10 + cy)}
			to := rl.Vector2{X: from.X + float32(a.X*l), Y: from.Y + float32(a.Y*l)}
			rl.DrawLineEx(from, to, 1.5, rl.DarkBlue)
			rl.DrawCircleV(to, 2, rl.DarkBlue)
		}
	}
	return maxMag
}

func yamlSnippet(p FieldParams) string {
	return fmt.Sprintf("turbulence:\n  enabled: true\n  strength: %.0f\n  scale: %.4f\n  time_speed: %.2f",
		p.Strength, p.Scale, math.Round(float64(p.TimeSpeed)*100)/100)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
