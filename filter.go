package tidepool

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for visual effects applied to a node's rendered output.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius). Zero means no padding.
	Padding() int
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders re-premultiply output.

// gradientShaderSrc evaluates a linear or radial ramp of up to eight stops.
// The fragment's SrcX/SrcY carry the local position of the painted shape.
const gradientShaderSrc = `//kage:unit pixels
package main

var Kind float
var Start vec2
var End vec2
var Radius float
var BoxOrigin vec2
var BoxSize vec2
var Count float
var Offsets [8]float
var Colors [8]vec4
var Alpha float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	p := (src - BoxOrigin) / BoxSize
	t := 0.0
	if Kind == 0 {
		d := End - Start
		l := dot(d, d)
		if l > 0 {
			t = dot(p-Start, d) / l
		}
	} else {
		t = 1.0
		if Radius > 0 {
			t = length(p-Start) / Radius
		}
	}
	t = clamp(t, 0, 1)
	c := Colors[0]
	for i := 1; i < 8; i++ {
		if float(i) < Count {
			o0 := Offsets[i-1]
			o1 := Offsets[i]
			if t > o0 {
				f := 1.0
				if o1 > o0 {
					f = clamp((t-o0)/(o1-o0), 0, 1)
				}
				c = mix(Colors[i-1], Colors[i], f)
			}
		}
	}
	a := clamp(c.a*Alpha, 0, 1)
	return vec4(c.rgb*a, a)
}
`

// --- Lazy shader compilation (single-threaded, no sync.Once) ---

var gradientShader *ebiten.Shader

func ensureGradientShader() *ebiten.Shader {
	if gradientShader == nil {
		s, err := ebiten.NewShader([]byte(gradientShaderSrc))
		if err != nil {
			panic("tidepool: failed to compile gradient shader: " + err.Error())
		}
		gradientShader = s
	}
	return gradientShader
}

// gradientUniforms fills u with the uniform values for g painted on a shape
// with local bounds bbox at the given alpha.
func gradientUniforms(u map[string]any, g *Gradient, bbox Rect, alpha float64) {
	if g.Kind == GradientRadial {
		u["Kind"] = float32(1)
		u["Start"] = []float32{float32(g.CX), float32(g.CY)}
		u["End"] = []float32{0, 0}
		u["Radius"] = float32(g.R)
	} else {
		u["Kind"] = float32(0)
		u["Start"] = []float32{float32(g.X1), float32(g.Y1)}
		u["End"] = []float32{float32(g.X2), float32(g.Y2)}
		u["Radius"] = float32(0)
	}
	if g.Units == UnitsUserSpace || bbox.Width == 0 || bbox.Height == 0 {
		u["BoxOrigin"] = []float32{0, 0}
		u["BoxSize"] = []float32{1, 1}
	} else {
		u["BoxOrigin"] = []float32{float32(bbox.X), float32(bbox.Y)}
		u["BoxSize"] = []float32{float32(bbox.Width), float32(bbox.Height)}
	}
	offsets := make([]float32, maxGradientStops)
	colors := make([]float32, maxGradientStops*4)
	count := min(len(g.Stops), maxGradientStops)
	prev := 0.0
	for i := 0; i < count; i++ {
		s := g.Stops[i]
		prev = stopOffset(prev, s.Offset)
		offsets[i] = float32(prev)
		colors[i*4] = float32(s.Color.R)
		colors[i*4+1] = float32(s.Color.G)
		colors[i*4+2] = float32(s.Color.B)
		colors[i*4+3] = float32(s.Color.A)
	}
	u["Count"] = float32(count)
	u["Offsets"] = offsets
	u["Colors"] = colors
	u["Alpha"] = float32(alpha)
}

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// Bilinear filtering during DrawImage does the work; no Kage shader.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	if f.Radius <= 0 {
		f.imgOp.GeoM.Reset()
		f.imgOp.ColorScale.Reset()
		f.imgOp.Filter = ebiten.FilterNearest
		dst.DrawImage(src, &f.imgOp)
		return
	}

	passes := int(math.Ceil(math.Log2(float64(f.Radius) + 1)))
	if passes < 1 {
		passes = 1
	}

	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	op := &f.imgOp

	// Downscale passes: each half-size
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	// Upscale passes: draw each back up
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	drawScaled(dst, current, op)
}

// Padding returns the blur radius; the offscreen buffer is expanded to avoid clipping.
func (f *BlurFilter) Padding() int { return f.Radius }

// drawScaled draws src stretched over the whole of dst with linear filtering.
func drawScaled(dst, src *ebiten.Image, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sw := float64(src.Bounds().Dx())
	sh := float64(src.Bounds().Dy())
	tw := float64(dst.Bounds().Dx())
	th := float64(dst.Bounds().Dy())
	op.GeoM.Scale(tw/sw, th/sh)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// --- GlowFilter ---

// GlowFilter draws a blurred, tinted copy of the source behind the source.
type GlowFilter struct {
	Color   Color
	blur    *BlurFilter
	scratch *ebiten.Image
	imgOp   ebiten.DrawImageOptions
}

// NewGlowFilter creates a glow of the given radius. A zero-alpha color glows
// with the source's own colors.
func NewGlowFilter(radius int, c Color) *GlowFilter {
	return &GlowFilter{Color: c, blur: NewBlurFilter(radius)}
}

// Apply renders the glow halo then the untouched source into dst.
func (f *GlowFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	if f.scratch == nil || f.scratch.Bounds().Dx() != b.Dx() || f.scratch.Bounds().Dy() != b.Dy() {
		if f.scratch != nil {
			f.scratch.Deallocate()
		}
		f.scratch = ebiten.NewImage(b.Dx(), b.Dy())
	} else {
		f.scratch.Clear()
	}
	f.blur.Apply(src, f.scratch)

	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterNearest
	if f.Color.A > 0 {
		op.ColorScale.Scale(
			float32(f.Color.R*f.Color.A),
			float32(f.Color.G*f.Color.A),
			float32(f.Color.B*f.Color.A),
			float32(f.Color.A),
		)
	}
	dst.DrawImage(f.scratch, op)

	op.ColorScale.Reset()
	dst.DrawImage(src, op)
}

// Padding returns the glow radius.
func (f *GlowFilter) Padding() int { return f.blur.Radius }

// --- Filter padding helper ---

// filterChainPadding returns the cumulative padding required by a slice of filters.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// --- Filter application helper ---

// applyFilters runs a filter chain on src, ping-ponging between two images.
// Returns the image containing the final result (either src or the provided
// scratch image). The caller must handle releasing scratch if pooled.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var scratch *ebiten.Image

	for _, f := range filters {
		if scratch == nil {
			scratch = pool.Acquire(w, h)
		} else {
			scratch.Clear()
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}

	// scratch now holds the image that is not the result; if it is not the
	// caller's src it came from the pool and goes back.
	if scratch != nil && scratch != src {
		pool.Release(scratch)
	}
	return current
}
