package tidepool

import "math"

// ColorStop is one stop of a gradient preset. Offset is a percentage in
// [0, 100].
type ColorStop struct {
	Offset float64
	Color  RGB
}

// GradientPreset is a named linear gradient: ordered stops plus the angle
// of the gradient line in degrees.
type GradientPreset struct {
	Name  string
	Angle int
	Stops []ColorStop
}

// Endpoints returns the gradient line in percent of the bounding box:
// (50-50cos θ, 50-50sin θ) to (50+50cos θ, 50+50sin θ).
func (p GradientPreset) Endpoints() (x1, y1, x2, y2 float64) {
	return angleEndpoints(float64(p.Angle))
}

func angleEndpoints(deg float64) (x1, y1, x2, y2 float64) {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return 50 - 50*c, 50 - 50*s, 50 + 50*c, 50 + 50*s
}

// Colors returns the stop colors in order.
func (p GradientPreset) Colors() []RGB {
	out := make([]RGB, len(p.Stops))
	for i, s := range p.Stops {
		out[i] = s.Color
	}
	return out
}

// gradientStops converts the preset stops to scene gradient stops.
func (p GradientPreset) gradientStops() []GradientStop {
	out := make([]GradientStop, len(p.Stops))
	for i, s := range p.Stops {
		out[i] = GradientStop{Offset: s.Offset / 100, Color: s.Color.Color(1)}
	}
	return out
}

func (p GradientPreset) clone() GradientPreset {
	p.Stops = append([]ColorStop(nil), p.Stops...)
	return p
}

func hex(s string) RGB { return MustParseColor(s) }

var presets = []GradientPreset{
	{"Violet Dream", 135, []ColorStop{
		{0, hex("#4158D0")},
		{50, hex("#C850C0")},
		{100, hex("#FFCC70")},
	}},
	{"Ocean Breeze", 90, []ColorStop{
		{0, hex("#0093E9")},
		{50, hex("#42C2FF")},
		{100, hex("#80D0C7")},
	}},
	{"Sunset Vibes", 225, []ColorStop{
		{0, hex("#FF3CAC")},
		{50, hex("#784BA0")},
		{100, hex("#2B86C5")},
	}},
	{"Emerald Forest", 180, []ColorStop{
		{0, hex("#004D40")},
		{50, hex("#00897B")},
		{100, hex("#B2DFDB")},
	}},
	{"Coral Reef", 45, []ColorStop{
		{0, hex("#FF7E5F")},
		{50, hex("#FF9966")},
		{100, hex("#FFCF9C")},
	}},
	{"Northern Lights", 315, []ColorStop{
		{0, hex("#43cea2")},
		{50, hex("#185a9d")},
		{100, hex("#111F4D")},
	}},
	{"Cosmic Purple", 225, []ColorStop{
		{0, hex("#8E2DE2")},
		{25, hex("#6A14F1")},
		{50, hex("#8214B3")},
		{75, hex("#AA0BB7")},
		{100, hex("#4A00E0")},
	}},
	{"Golden Horizon", 90, []ColorStop{
		{0, hex("#F2994A")},
		{25, hex("#F9C449")},
		{50, hex("#F7B733")},
		{75, hex("#ED8F03")},
		{100, hex("#FC4A1A")},
	}},
	{"Deep Ocean", 135, []ColorStop{
		{0, hex("#000428")},
		{20, hex("#001C53")},
		{40, hex("#003087")},
		{60, hex("#0050AB")},
		{80, hex("#0078D4")},
		{100, hex("#004e92")},
	}},
	{"Neon City", 45, []ColorStop{
		{0, hex("#FE01FC")},
		{25, hex("#AE18FF")},
		{50, hex("#01FFFF")},
		{75, hex("#00FF74")},
		{100, hex("#FE01FC")},
	}},
	{"Aurora Sky", 315, []ColorStop{
		{0, hex("#1e3c72")},
		{20, hex("#2a5298")},
		{40, hex("#3674cb")},
		{60, hex("#5d93e1")},
		{80, hex("#6699ff")},
		{100, hex("#2a5298")},
	}},
	{"Rainbow Fusion", 180, []ColorStop{
		{0, hex("#FF0000")},
		{16.6, hex("#FF8F00")},
		{33.3, hex("#FFFF00")},
		{50, hex("#00FF00")},
		{66.6, hex("#00FFFF")},
		{83.3, hex("#0000FF")},
		{100, hex("#8B00FF")},
	}},
}

// Presets returns a copy of the built-in gradient catalog in display order.
func Presets() []GradientPreset {
	out := make([]GradientPreset, len(presets))
	for i, p := range presets {
		out[i] = p.clone()
	}
	return out
}

// TransitionEffect selects how one gradient is replaced by the next.
type TransitionEffect uint8

const (
	EffectFade TransitionEffect = iota
	EffectRadialExpand
	EffectSweep
	EffectBlinds
	EffectPixelate
	EffectRipple
	EffectSpiral
	effectCount
)

var effectNames = [effectCount]string{
	"fade", "radialExpand", "sweep", "blinds", "pixelate", "ripple", "spiral",
}

// String returns the effect's short name, e.g. "radialExpand".
func (e TransitionEffect) String() string {
	if e < effectCount {
		return effectNames[e]
	}
	return "unknown"
}

// Effects returns every transition effect in cycling order.
func Effects() []TransitionEffect {
	out := make([]TransitionEffect, effectCount)
	for i := range out {
		out[i] = TransitionEffect(i)
	}
	return out
}
