package tidepool

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill (opaque white).
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// WithAlpha returns the color with its alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// toRGBA converts to a premultiplied color.RGBA for ebiten.Image.Fill.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// over composites c on top of dst (source-over, straight alpha).
func (c Color) over(dst Color) Color {
	a := c.A + dst.A*(1-c.A)
	if a <= 0 {
		return Color{}
	}
	return Color{
		R: (c.R*c.A + dst.R*dst.A*(1-c.A)) / a,
		G: (c.G*c.A + dst.G*dst.A*(1-c.A)) / a,
		B: (c.B*c.A + dst.B*dst.A*(1-c.A)) / a,
		A: a,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Range is a general-purpose min/max range.
// Used by the particle system and the randomized agent parameters.
type Range struct {
	Min, Max float64
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
	BlendErase                   // destination-out (punch transparent holes)
	BlendMask                    // clip destination to source alpha
	BlendAtop                    // source-atop (draw only where destination exists)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendMask:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendAtop:
		return ebiten.BlendSourceAtop
	default:
		return ebiten.BlendSourceOver
	}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeGroup  NodeType = iota // group node with no visual output
	NodeTypeRect                   // axis-aligned rectangle at local (0,0) sized Width x Height
	NodeTypeCircle                 // circle centered at local (0,0) with Radius
	NodeTypePath                   // filled polyline/curve path
	NodeTypeImage                  // draws an ebiten.Image at local (0,0)
	NodeTypeParticles              // CPU-simulated particle system
)

// String returns the lowercase node type name used in debug output.
func (t NodeType) String() string {
	switch t {
	case NodeTypeGroup:
		return "group"
	case NodeTypeRect:
		return "rect"
	case NodeTypeCircle:
		return "circle"
	case NodeTypePath:
		return "path"
	case NodeTypeImage:
		return "image"
	case NodeTypeParticles:
		return "particles"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerMove EventType = iota // fires when the pointer moves
	EventClick                        // fires on press then release over the same node
	EventDoubleClick                  // fires on the second click of a quick pair
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)
