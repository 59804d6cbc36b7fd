package tidepool

import "math"

// maxGradientStops is the number of stops the gradient shader can evaluate.
// Extra stops are ignored by the GPU path and by ColorAt alike.
const maxGradientStops = 8

// GradientKind selects the gradient geometry.
type GradientKind uint8

const (
	GradientLinear GradientKind = iota // projection onto the (X1,Y1)->(X2,Y2) vector
	GradientRadial                     // distance from (CX,CY) divided by R
)

// GradientUnits selects the coordinate system gradient geometry is expressed in.
type GradientUnits uint8

const (
	// UnitsBoundingBox expresses coordinates as fractions (0..1) of the
	// painted shape's local bounding box.
	UnitsBoundingBox GradientUnits = iota
	// UnitsUserSpace expresses coordinates in the painted node's local space.
	UnitsUserSpace
)

// GradientStop is a color at a position along the gradient (Offset in 0..1).
type GradientStop struct {
	Offset float64
	Color  Color
}

// Gradient is a linear or radial color ramp with pad spread.
type Gradient struct {
	Kind  GradientKind
	Units GradientUnits

	// Linear geometry.
	X1, Y1, X2, Y2 float64
	// Radial geometry.
	CX, CY, R float64

	Stops []GradientStop
}

// NewLinearGradient creates a bounding-box linear gradient.
func NewLinearGradient(x1, y1, x2, y2 float64, stops ...GradientStop) *Gradient {
	return &Gradient{Kind: GradientLinear, X1: x1, Y1: y1, X2: x2, Y2: y2, Stops: stops}
}

// NewRadialGradient creates a bounding-box radial gradient.
func NewRadialGradient(cx, cy, r float64, stops ...GradientStop) *Gradient {
	return &Gradient{Kind: GradientRadial, CX: cx, CY: cy, R: r, Stops: stops}
}

// SetLine sets the linear gradient endpoints.
func (g *Gradient) SetLine(x1, y1, x2, y2 float64) {
	g.X1, g.Y1, g.X2, g.Y2 = x1, y1, x2, y2
}

// SetStops replaces the stop list with a copy of stops.
func (g *Gradient) SetStops(stops []GradientStop) {
	g.Stops = append(g.Stops[:0], stops...)
}

// Clone returns a deep copy of g.
func (g *Gradient) Clone() *Gradient {
	c := *g
	c.Stops = append([]GradientStop(nil), g.Stops...)
	return &c
}

// gradientSpace maps a local point into the gradient's coordinate space.
func (g *Gradient) gradientSpace(x, y float64, bbox Rect) (float64, float64) {
	if g.Units == UnitsUserSpace {
		return x, y
	}
	u, v := 0.0, 0.0
	if bbox.Width != 0 {
		u = (x - bbox.X) / bbox.Width
	}
	if bbox.Height != 0 {
		v = (y - bbox.Y) / bbox.Height
	}
	return u, v
}

// param returns the unclamped gradient parameter for a gradient-space point.
func (g *Gradient) param(u, v float64) float64 {
	switch g.Kind {
	case GradientRadial:
		if g.R <= 0 {
			return 1
		}
		return math.Hypot(u-g.CX, v-g.CY) / g.R
	default:
		dx, dy := g.X2-g.X1, g.Y2-g.Y1
		l := dx*dx + dy*dy
		if l == 0 {
			return 0
		}
		return ((u-g.X1)*dx + (v-g.Y1)*dy) / l
	}
}

// ColorAt evaluates the gradient at local point (x, y) of a shape whose
// local bounding box is bbox.
func (g *Gradient) ColorAt(x, y float64, bbox Rect) Color {
	u, v := g.gradientSpace(x, y, bbox)
	return g.colorAtParam(g.param(u, v))
}

// colorAtParam evaluates the stop ramp at t with pad spread. Mirrors the
// shader's stop walk so CPU sampling and GPU output agree.
func (g *Gradient) colorAtParam(t float64) Color {
	stops := g.Stops
	if len(stops) > maxGradientStops {
		stops = stops[:maxGradientStops]
	}
	if len(stops) == 0 {
		return Color{}
	}
	t = clamp01(t)
	c := stops[0].Color
	o1 := stopOffset(0, stops[0].Offset)
	for i := 1; i < len(stops); i++ {
		o0 := o1
		o1 = stopOffset(o0, stops[i].Offset)
		if t > o0 {
			f := 1.0
			if o1 > o0 {
				f = clamp01((t - o0) / (o1 - o0))
			}
			c = lerpColor(stops[i-1].Color, stops[i].Color, f)
		}
	}
	return c
}

// stopOffset clamps a stop offset into [prev, 1], the way SVG treats an
// offset smaller than an earlier one.
func stopOffset(prev, o float64) float64 {
	return math.Min(math.Max(o, prev), 1)
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
		A: lerp(a.A, b.A, t),
	}
}

// Paint is a solid color or a gradient. A non-nil Gradient takes precedence.
type Paint struct {
	Color    Color
	Gradient *Gradient
}

// SolidPaint returns a solid-color paint.
func SolidPaint(c Color) Paint {
	return Paint{Color: c}
}

// GradientPaint returns a gradient paint.
func GradientPaint(g *Gradient) Paint {
	return Paint{Gradient: g}
}

// At returns the paint color at local point (x, y) for a shape with local
// bounding box bbox.
func (p Paint) At(x, y float64, bbox Rect) Color {
	if p.Gradient != nil {
		return p.Gradient.ColorAt(x, y, bbox)
	}
	return p.Color
}
