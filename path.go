package tidepool

import "math"

// curveSegments is the number of line segments each cubic Bézier is
// flattened into.
const curveSegments = 12

// FillMode selects how a path node is triangulated.
type FillMode uint8

const (
	// FillNonZero fills every region the outline winds around a nonzero
	// number of times, like SVG's default fill-rule. Concave,
	// self-intersecting and holed outlines are all covered.
	FillNonZero FillMode = iota
	// FillStrip drops a vertical quad from every edge to the lowest point of
	// the path. Correct for x-monotone silhouettes filled to a baseline.
	FillStrip
)

// Direction is the winding of a closed subpath on screen (y down).
type Direction uint8

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Path is a list of flattened subpaths. Every mutation bumps an internal
// version so nodes holding the path re-tessellate lazily.
type Path struct {
	subpaths [][]Vec2
	version  uint64
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// Reset clears all subpaths, keeping allocated capacity.
func (p *Path) Reset() {
	for i := range p.subpaths {
		p.subpaths[i] = p.subpaths[i][:0]
	}
	p.subpaths = p.subpaths[:0]
	p.version++
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	p.subpaths = append(p.subpaths, []Vec2{{x, y}})
	p.version++
	return p
}

// LineTo appends a straight segment. Starts a subpath if none is open.
func (p *Path) LineTo(x, y float64) *Path {
	if len(p.subpaths) == 0 {
		return p.MoveTo(x, y)
	}
	last := len(p.subpaths) - 1
	p.subpaths[last] = append(p.subpaths[last], Vec2{x, y})
	p.version++
	return p
}

// CubicTo appends a cubic Bézier from the current point through control
// points (c1x, c1y) and (c2x, c2y) to (x, y), flattened to line segments.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	if len(p.subpaths) == 0 {
		p.MoveTo(x, y)
		return p
	}
	last := len(p.subpaths) - 1
	sp := p.subpaths[last]
	p0 := sp[len(sp)-1]
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		sp = append(sp, Vec2{
			X: a*p0.X + b*c1x + c*c2x + d*x,
			Y: a*p0.Y + b*c1y + c*c2y + d*y,
		})
	}
	p.subpaths[last] = sp
	p.version++
	return p
}

// Circle appends a closed clockwise circular subpath.
func (p *Path) Circle(cx, cy, r float64) *Path {
	return p.CircleDir(cx, cy, r, Clockwise)
}

// CircleDir appends a closed circular subpath wound in dir. A circle wound
// against its enclosing outline cuts a hole under the nonzero rule.
func (p *Path) CircleDir(cx, cy, r float64, dir Direction) *Path {
	segs := circleSegments(r)
	sign := 1.0
	if dir == CounterClockwise {
		sign = -1
	}
	p.MoveTo(cx+r, cy)
	for i := 1; i < segs; i++ {
		a := sign * 2 * math.Pi * float64(i) / float64(segs)
		p.LineTo(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return p.Close()
}

// Close closes the current subpath. Subpaths are implicitly closed for
// filling; Close only bumps the version so it is safe to call repeatedly.
func (p *Path) Close() *Path {
	p.version++
	return p
}

// Subpaths returns the flattened subpaths. The returned slices MUST NOT be mutated.
func (p *Path) Subpaths() [][]Vec2 {
	return p.subpaths
}

// NumPoints returns the total number of points across all subpaths.
func (p *Path) NumPoints() int {
	n := 0
	for _, sp := range p.subpaths {
		n += len(sp)
	}
	return n
}

// Bounds returns the axis-aligned bounds of all points.
func (p *Path) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, sp := range p.subpaths {
		for _, pt := range sp {
			if first {
				minX, maxX, minY, maxY = pt.X, pt.X, pt.Y, pt.Y
				first = false
				continue
			}
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains reports whether (x, y) is inside the path under the nonzero
// winding rule over all subpaths.
func (p *Path) Contains(x, y float64) bool {
	return p.Winding(x, y) != 0
}

// Winding returns the signed number of times the path winds around (x, y).
// Subpaths are implicitly closed; those with fewer than three points are
// skipped.
func (p *Path) Winding(x, y float64) int {
	w := 0
	for _, sp := range p.subpaths {
		n := len(sp)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a, b := sp[i], sp[(i+1)%n]
			side := (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
			if a.Y <= y {
				if b.Y > y && side > 0 {
					w++
				}
			} else if b.Y <= y && side < 0 {
				w--
			}
		}
	}
	return w
}

// circleSegments picks a tessellation density for a circle of radius r.
func circleSegments(r float64) int {
	segs := int(r / 2)
	if segs < 16 {
		segs = 16
	}
	if segs > 96 {
		segs = 96
	}
	return segs
}
