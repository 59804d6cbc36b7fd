package tidepool

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

const (
	blindsStrips = 10
	pixelCols    = 20
	pixelRows    = 15
	rippleRings  = 5
)

// frameStep converts elapsed milliseconds into a per-tick increment of
// rate units per 16ms frame, capped at limit.
func frameStep(elapsedMs, rate, limit float64) float64 {
	return math.Min(limit, elapsedMs/16*rate)
}

// startFade fades the background out and ends the session when the
// gradient is swapped at the midpoint. The fade back in runs on the engine
// after the session has finished.
func (e *TransitionEngine) startFade(s *transitionSession) {
	const half = 500 * time.Millisecond

	opacity := e.bg.Opacity()
	s.tweens = append(s.tweens, TweenValue(&opacity, 0, float32(half.Seconds()), ease.Linear))

	swapped := false
	e.after(s, half, func() {
		swapped = true
		e.finish()
	})
	s.cleanups = append(s.cleanups, func() {
		if !swapped {
			e.bg.SetOpacity(1)
			return
		}
		e.fadeLevel = 0
		e.bg.SetOpacity(0)
		e.fadeIn = TweenValue(&e.fadeLevel, 1, float32(half.Seconds()), ease.Linear)
	})

	s.grace = 0
	s.step = func(float64) bool {
		e.bg.SetOpacity(opacity)
		return false
	}
}

// startRadialExpand reveals the target through a circle growing from the
// viewport center until it covers the corners.
func (e *TransitionEngine) startRadialExpand(s *transitionSession) {
	ov := e.overlay(s, "radial-overlay")
	clip := NewCircle("radial-clip", 0, SolidPaint(ColorWhite))
	clip.X, clip.Y = e.width/2, e.height/2
	ov.SetClip(clip)

	minDim := math.Max(1, math.Min(e.width, e.height))
	limit := 1.1 * math.Hypot(e.width, e.height) / minDim * 100

	var radius float64
	s.step = func(ms float64) bool {
		radius += frameStep(ms, 2, 5)
		clip.Radius = radius / 100 * minDim / 2
		return radius >= limit
	}
}

// startSweep reveals the target behind an edge moving left to right.
func (e *TransitionEngine) startSweep(s *transitionSession) {
	ov := e.overlay(s, "sweep-overlay")
	clip := NewRect("sweep-clip", 0, e.height, SolidPaint(ColorWhite))
	ov.SetClip(clip)

	offset := -100.0
	s.step = func(ms float64) bool {
		offset = math.Min(100, offset+frameStep(ms, 3, 6))
		clip.SetSize((offset+100)/200*e.width, e.height)
		return offset >= 100
	}
}

// startBlinds drops ten vertical strips from the top, each starting a
// little after its left neighbour.
func (e *TransitionEngine) startBlinds(s *transitionSession) {
	ov := e.overlay(s, "blinds-overlay")
	clip := NewGroup("blinds-clip")
	stripW := e.width / blindsStrips
	strips := make([]*Node, blindsStrips)
	for i := range strips {
		// One extra pixel hides seams between neighbouring strips.
		strips[i] = NewRect("blind", stripW+1, 0, SolidPaint(ColorWhite))
		strips[i].X = float64(i) * stripW
		clip.AddChild(strips[i])
	}
	ov.SetClip(clip)

	var height float64
	s.step = func(ms float64) bool {
		height += frameStep(ms, 2, 4)
		complete := true
		for i, strip := range strips {
			h := math.Max(0, math.Min(100, height-float64(i)*2))
			strip.SetSize(stripW+1, h/100*e.height)
			if h < 100 {
				complete = false
			}
		}
		return complete
	}
}

type pixelCell struct {
	node          *Node
	delay         float64
	width, height float64 // percent of the viewport
}

// startPixelate grows a 20x15 grid of cells, each after a random delay.
func (e *TransitionEngine) startPixelate(s *transitionSession) {
	ov := e.overlay(s, "pixelate-overlay")
	clip := NewGroup("pixelate-clip")
	const cellW, cellH = 100.0 / pixelCols, 100.0 / pixelRows
	cells := make([]pixelCell, 0, pixelCols*pixelRows)
	for row := 0; row < pixelRows; row++ {
		for col := 0; col < pixelCols; col++ {
			n := NewRect("pixel", 0, 0, SolidPaint(ColorWhite))
			n.X = float64(col) * cellW / 100 * e.width
			n.Y = float64(row) * cellH / 100 * e.height
			clip.AddChild(n)
			cells = append(cells, pixelCell{node: n, delay: e.rng.Float64() * 30})
		}
	}
	ov.SetClip(clip)

	var clock float64
	s.step = func(ms float64) bool {
		clock += ms * 0.1
		growth := frameStep(ms, 5, 10)
		complete := true
		for i := range cells {
			c := &cells[i]
			if clock <= c.delay {
				complete = false
				continue
			}
			if c.width >= cellW && c.height >= cellH {
				continue
			}
			c.width = math.Min(cellW, c.width+growth)
			c.height = math.Min(cellH, c.height+growth)
			// Cover rounding gaps between cells once fully grown.
			pad := 0.0
			if c.width >= cellW && c.height >= cellH {
				pad = 1
			}
			c.node.SetSize(c.width/100*e.width+pad, c.height/100*e.height+pad)
			if c.width < cellW || c.height < cellH {
				complete = false
			}
		}
		return complete
	}
}

type rippleRing struct {
	clip   *Node
	delay  float64 // ms
	radius float64 // px
}

// startRipple expands five concentric circles, ring i starting 15ms after
// ring i-1, each revealing its own copy of the target.
func (e *TransitionEngine) startRipple(s *transitionSession) {
	maxR := math.Hypot(e.width, e.height) / 2
	rings := make([]rippleRing, rippleRings)
	for i := range rings {
		ov := e.overlay(s, "ripple-overlay")
		clip := NewCircle("ripple-clip", 0, SolidPaint(ColorWhite))
		clip.X, clip.Y = e.width/2, e.height/2
		ov.SetClip(clip)
		rings[i] = rippleRing{clip: clip, delay: float64(i) * 15}
	}

	s.step = func(ms float64) bool {
		inc := math.Min(maxR/30, ms/16*maxR/60)
		complete := true
		for i := range rings {
			r := &rings[i]
			if r.delay > 0 {
				r.delay -= ms
				complete = false
				continue
			}
			r.radius += inc
			r.clip.Radius = r.radius
			if r.radius <= maxR*1.2 {
				complete = false
			}
		}
		return complete
	}
}

// spiralRadiusFrames is the number of 16ms frames the spiral arm needs to
// reach its terminal radius.
const spiralRadiusFrames = 300

// startSpiral draws an Archimedean spiral from the center as the clip
// region, rotating the target gradient and shifting its hues while it grows.
func (e *TransitionEngine) startSpiral(s *transitionSession) {
	stopColors := make([]RGB, len(s.target.Stops))
	grad := presetGradient(s.target)
	for i, st := range s.target.Stops {
		stopColors[i] = EnhanceSaturation(st.Color, 0.2)
		grad.Stops[i].Color = stopColors[i].Color(1)
	}
	ov := e.own(s, NewRect("spiral-overlay", e.width, e.height, GradientPaint(grad)))

	cx, cy := e.width/2, e.height/2
	path := NewPath().MoveTo(cx, cy)
	clip := NewPathNode("spiral-clip", path, SolidPaint(ColorWhite))
	ov.SetClip(clip)

	maxR := math.Max(e.width, e.height) * 1.5
	radiusRate := maxR / spiralRadiusFrames
	base := float64(s.target.Angle)
	var angle, radius float64

	s.grace = 300 * time.Millisecond
	s.step = func(ms float64) bool {
		angle += frameStep(ms, 0.1, 0.2)
		radius += frameStep(ms, radiusRate, 2*radiusRate)
		if radius > maxR {
			path.LineTo(cx, cy)
			return true
		}
		path.LineTo(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle))

		x1, y1, x2, y2 := angleEndpoints(base + angle*0.02*180/math.Pi)
		grad.SetLine(x1/100, y1/100, x2/100, y2/100)

		// Each tick reshifts the already shifted color.
		shift := math.Sin(angle*0.05) * 0.1
		for i := range stopColors {
			stopColors[i] = ShiftHue(stopColors[i], shift*float64(i+1))
			grad.Stops[i].Color = stopColors[i].Color(1)
		}
		return false
	}
}
