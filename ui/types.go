// Package ui draws the heads-up display, overlay toggles and stat panels.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 14, G: 20, B: 30, A: 230},
		PanelBorder:     rl.Color{R: 50, G: 70, B: 95, A: 255},
		SectionHeader:   rl.Color{R: 120, G: 190, B: 255, A: 255},
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		BarBg:           rl.Color{R: 35, G: 40, B: 50, A: 255},
		BarFill:         rl.Color{R: 60, G: 140, B: 230, A: 255},
		BarFillNegative: rl.Color{R: 210, G: 110, B: 80, A: 255},
		BarFillPositive: rl.Color{R: 80, G: 190, B: 140, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      90,
		BarHeight:       10,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}

// ToColor converts an 8-bit RGBA fluid colour to a raylib colour.
func ToColor(r, g, b, a uint8) rl.Color {
	return rl.Color{R: r, G: g, B: b, A: a}
}
