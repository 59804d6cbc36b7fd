package tidepool

import (
	"math"
	"testing"
)

func nearColor(a, b Color, eps float64) bool {
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}

var (
	red  = Color{1, 0, 0, 1}
	blue = Color{0, 0, 1, 1}
)

func TestLinearGradientColorAt(t *testing.T) {
	g := NewLinearGradient(0, 0, 1, 0, GradientStop{0, red}, GradientStop{1, blue})
	bbox := Rect{Width: 100, Height: 50}
	tests := []struct {
		x    float64
		want Color
	}{
		{0, red},
		{50, Color{0.5, 0, 0.5, 1}},
		{100, blue},
		{-20, red},
		{150, blue},
	}
	for _, tt := range tests {
		if got := g.ColorAt(tt.x, 25, bbox); !nearColor(got, tt.want, 1e-9) {
			t.Errorf("ColorAt(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestLinearGradientDiagonal(t *testing.T) {
	x1, y1, x2, y2 := angleEndpoints(135)
	g := NewLinearGradient(x1/100, y1/100, x2/100, y2/100, GradientStop{0, red}, GradientStop{1, blue})
	bbox := Rect{Width: 100, Height: 100}
	if got := g.ColorAt(100, 0, bbox); !nearColor(got, red, 1e-9) {
		t.Errorf("top-right = %v, want red", got)
	}
	if got := g.ColorAt(0, 100, bbox); !nearColor(got, blue, 1e-9) {
		t.Errorf("bottom-left = %v, want blue", got)
	}
}

func TestMultiStopGradient(t *testing.T) {
	green := Color{0, 1, 0, 1}
	g := NewLinearGradient(0, 0, 1, 0,
		GradientStop{0, red}, GradientStop{0.5, green}, GradientStop{1, blue})
	bbox := Rect{Width: 1, Height: 1}
	if got := g.ColorAt(0.5, 0, bbox); !nearColor(got, green, 1e-9) {
		t.Errorf("middle = %v, want green", got)
	}
	if got := g.ColorAt(0.75, 0, bbox); !nearColor(got, Color{0, 0.5, 0.5, 1}, 1e-9) {
		t.Errorf("three quarters = %v", got)
	}
}

func TestGradientOutOfOrderStops(t *testing.T) {
	green := Color{0, 1, 0, 1}
	white := Color{1, 1, 1, 1}
	g := NewLinearGradient(0, 0, 1, 0,
		GradientStop{0, red}, GradientStop{0.6, green}, GradientStop{0.4, blue}, GradientStop{1, white})
	tests := []struct {
		t    float64
		want Color
	}{
		{0.3, lerpColor(red, green, 0.5)},
		{0.5, lerpColor(red, green, 0.5/0.6)},
		{0.7, lerpColor(blue, white, 0.25)},
		{1, white},
	}
	for _, tt := range tests {
		if got := g.colorAtParam(tt.t); !nearColor(got, tt.want, 1e-9) {
			t.Errorf("colorAtParam(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestRadialGradientColorAt(t *testing.T) {
	g := NewRadialGradient(0.5, 0.5, 0.5, GradientStop{0, red}, GradientStop{1, red.WithAlpha(0)})
	bbox := Rect{Width: 200, Height: 200}
	if got := g.ColorAt(100, 100, bbox); !nearColor(got, red, 1e-9) {
		t.Errorf("center = %v, want red", got)
	}
	if got := g.ColorAt(150, 100, bbox); !approxEqual(got.A, 0.5, 1e-9) {
		t.Errorf("half radius alpha = %v, want 0.5", got.A)
	}
	if got := g.ColorAt(0, 0, bbox); got.A != 0 {
		t.Errorf("corner alpha = %v, want 0", got.A)
	}
}

func TestGradientUserSpace(t *testing.T) {
	g := NewLinearGradient(10, 0, 20, 0, GradientStop{0, red}, GradientStop{1, blue})
	g.Units = UnitsUserSpace
	if got := g.ColorAt(15, 0, Rect{Width: 1000, Height: 1000}); !nearColor(got, Color{0.5, 0, 0.5, 1}, 1e-9) {
		t.Errorf("ColorAt = %v", got)
	}
}

func TestGradientEdgeCases(t *testing.T) {
	if got := (&Gradient{}).ColorAt(0, 0, Rect{}); got != (Color{}) {
		t.Errorf("no stops = %v, want transparent", got)
	}
	g := NewLinearGradient(0.5, 0.5, 0.5, 0.5, GradientStop{0, red}, GradientStop{1, blue})
	if got := g.ColorAt(1, 1, Rect{Width: 1, Height: 1}); !nearColor(got, red, 1e-9) {
		t.Errorf("degenerate line = %v, want first stop", got)
	}
	r := NewRadialGradient(0, 0, 0, GradientStop{0, red}, GradientStop{1, blue})
	if got := r.ColorAt(0, 0, Rect{Width: 1, Height: 1}); !nearColor(got, blue, 1e-9) {
		t.Errorf("zero radius = %v, want last stop", got)
	}
}

func TestGradientStopLimit(t *testing.T) {
	stops := make([]GradientStop, maxGradientStops+2)
	for i := range stops {
		stops[i] = GradientStop{Offset: float64(i) / float64(len(stops)-1), Color: red}
	}
	stops[len(stops)-1].Color = blue
	g := NewLinearGradient(0, 0, 1, 0, stops...)
	if got := g.ColorAt(1, 0, Rect{Width: 1, Height: 1}); !nearColor(got, red, 1e-9) {
		t.Errorf("stop past the limit was used: %v", got)
	}
}

func TestGradientCloneAndSetStops(t *testing.T) {
	g := NewLinearGradient(0, 0, 1, 0, GradientStop{0, red}, GradientStop{1, blue})
	c := g.Clone()
	c.Stops[0].Color = blue
	c.SetLine(1, 1, 0, 0)
	if g.Stops[0].Color != red || g.X2 != 1 {
		t.Error("Clone shares state with the original")
	}
	src := []GradientStop{{0, blue}}
	g.SetStops(src)
	src[0].Color = red
	if len(g.Stops) != 1 || g.Stops[0].Color != blue {
		t.Errorf("SetStops = %v", g.Stops)
	}
}

func TestPaintAt(t *testing.T) {
	if got := SolidPaint(red).At(5, 5, Rect{}); got != red {
		t.Errorf("solid = %v", got)
	}
	g := NewLinearGradient(0, 0, 1, 0, GradientStop{0, blue}, GradientStop{1, blue})
	p := Paint{Color: red, Gradient: g}
	if got := p.At(0, 0, Rect{Width: 1, Height: 1}); got != blue {
		t.Errorf("gradient should win over color, got %v", got)
	}
}

func TestColorOver(t *testing.T) {
	got := Color{1, 0, 0, 0.5}.over(Color{0, 0, 1, 1})
	if !nearColor(got, Color{0.5, 0, 0.5, 1}, 1e-9) {
		t.Errorf("over = %v", got)
	}
	if got := (Color{}).over(Color{}); got != (Color{}) {
		t.Errorf("transparent over transparent = %v", got)
	}
	rgba := Color{1, 1, 1, 0.5}.toRGBA()
	if rgba.R != 128 || rgba.A != 128 {
		t.Errorf("toRGBA = %v, want premultiplied 128", rgba)
	}
}
