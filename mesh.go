package tidepool

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// meshKey captures every input the tessellation of a node depends on.
type meshKey struct {
	typ         NodeType
	w, h, r     float64
	path        *Path
	pathVersion uint64
	mode        FillMode
	valid       bool
}

func currentMeshKey(n *Node) meshKey {
	k := meshKey{typ: n.Type, mode: n.FillMode, valid: true}
	switch n.Type {
	case NodeTypeRect:
		k.w, k.h = n.Width, n.Height
	case NodeTypeCircle:
		k.r = n.Radius
	case NodeTypePath:
		k.path = n.Path
		if n.Path != nil {
			k.pathVersion = n.Path.version
		}
	}
	return k
}

// ensureMesh rebuilds the node's local-space triangles if any geometry input
// changed since the last build.
func ensureMesh(n *Node) {
	k := currentMeshKey(n)
	if k == n.meshKey {
		return
	}
	n.meshKey = k
	n.verts = n.verts[:0]
	n.inds = n.inds[:0]
	switch n.Type {
	case NodeTypeRect:
		n.verts, n.inds = appendQuad(n.verts, n.inds, 0, 0, n.Width, n.Height)
	case NodeTypeCircle:
		n.verts, n.inds = appendCircleFan(n.verts, n.inds, n.Radius)
	case NodeTypePath:
		if n.Path == nil {
			return
		}
		if n.FillMode == FillStrip {
			n.verts, n.inds = appendStrip(n.verts, n.inds, n.Path)
		} else {
			n.verts, n.inds = appendFan(n.verts, n.inds, n.Path)
		}
	}
}

func appendQuad(verts []ebiten.Vertex, inds []uint16, x, y, w, h float64) ([]ebiten.Vertex, []uint16) {
	base := uint16(len(verts))
	verts = append(verts,
		localVertex(x, y), localVertex(x+w, y),
		localVertex(x+w, y+h), localVertex(x, y+h),
	)
	inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	return verts, inds
}

func appendCircleFan(verts []ebiten.Vertex, inds []uint16, r float64) ([]ebiten.Vertex, []uint16) {
	if r <= 0 {
		return verts, inds
	}
	segs := circleSegments(r)
	base := uint16(len(verts))
	verts = append(verts, localVertex(0, 0))
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		verts = append(verts, localVertex(r*math.Cos(a), r*math.Sin(a)))
	}
	for i := 0; i < segs; i++ {
		next := (i+1)%segs + 1
		inds = append(inds, base, base+uint16(i+1), base+uint16(next))
	}
	return verts, inds
}

// appendFan triangulates each subpath as a fan from its first point. The
// triangles overlap for concave outlines, so they are only correct when
// drawn with ebiten.FillRuleNonZero, which counts each triangle by its
// orientation the way Path.Winding counts edges.
func appendFan(verts []ebiten.Vertex, inds []uint16, p *Path) ([]ebiten.Vertex, []uint16) {
	for _, sp := range p.subpaths {
		if len(sp) < 3 {
			continue
		}
		base := uint16(len(verts))
		for _, pt := range sp {
			verts = append(verts, localVertex(pt.X, pt.Y))
		}
		for i := 1; i < len(sp)-1; i++ {
			inds = append(inds, base, base+uint16(i), base+uint16(i+1))
		}
	}
	return verts, inds
}

// appendStrip emits one quad per edge, dropped to the path's lowest point.
// Edges that already lie on the baseline or are vertical produce no area.
func appendStrip(verts []ebiten.Vertex, inds []uint16, p *Path) ([]ebiten.Vertex, []uint16) {
	b := p.Bounds()
	baseline := b.Y + b.Height
	for _, sp := range p.subpaths {
		for i := 0; i+1 < len(sp); i++ {
			a, c := sp[i], sp[i+1]
			if a.X == c.X || (a.Y == baseline && c.Y == baseline) {
				continue
			}
			base := uint16(len(verts))
			verts = append(verts,
				localVertex(a.X, a.Y), localVertex(c.X, c.Y),
				localVertex(c.X, baseline), localVertex(a.X, baseline),
			)
			inds = append(inds, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return verts, inds
}

// worldVectorPath rebuilds dst as p transformed by m, for vector.FillPath.
func worldVectorPath(dst *vector.Path, p *Path, m [6]float64) {
	dst.Reset()
	for _, sp := range p.subpaths {
		if len(sp) < 3 {
			continue
		}
		for i, pt := range sp {
			x := float32(m[0]*pt.X + m[2]*pt.Y + m[4])
			y := float32(m[1]*pt.X + m[3]*pt.Y + m[5])
			if i == 0 {
				dst.MoveTo(x, y)
			} else {
				dst.LineTo(x, y)
			}
		}
		dst.Close()
	}
}

func localVertex(x, y float64) ebiten.Vertex {
	return ebiten.Vertex{DstX: float32(x), DstY: float32(y), ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
}

// localBounds returns the node's own geometry bounds in local space.
func localBounds(n *Node) Rect {
	switch n.Type {
	case NodeTypeRect, NodeTypeImage:
		return Rect{Width: n.Width, Height: n.Height}
	case NodeTypeCircle:
		return Rect{X: -n.Radius, Y: -n.Radius, Width: 2 * n.Radius, Height: 2 * n.Radius}
	case NodeTypePath:
		if n.Path != nil {
			return n.Path.Bounds()
		}
	}
	return Rect{}
}

// shapeContainsLocal reports whether the node's own geometry covers the
// local point (lx, ly).
func shapeContainsLocal(n *Node, lx, ly float64) bool {
	switch n.Type {
	case NodeTypeRect, NodeTypeImage:
		return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
	case NodeTypeCircle:
		return lx*lx+ly*ly <= n.Radius*n.Radius
	case NodeTypePath:
		return n.Path != nil && n.Path.Contains(lx, ly)
	}
	return false
}

// transformVertices applies an affine transform and writes the result into
// dst. Solid fills sample the white pixel and carry the premultiplied tint in
// the vertex color. Gradient fills keep the local position in SrcX/SrcY so
// the shader can evaluate the ramp per fragment.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
func transformVertices(src, dst []ebiten.Vertex, transform [6]float64, tint Color, gradient bool) {
	a, b, c, d, tx, ty := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]
	ca := float32(clamp01(tint.A))
	cr := float32(tint.R) * ca
	cg := float32(tint.G) * ca
	cb := float32(tint.B) * ca

	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		v := ebiten.Vertex{
			DstX: float32(a*ox + c*oy + tx),
			DstY: float32(b*ox + d*oy + ty),
		}
		if gradient {
			v.SrcX, v.SrcY = s.DstX, s.DstY
			v.ColorR, v.ColorG, v.ColorB, v.ColorA = 1, 1, 1, 1
		} else {
			v.SrcX, v.SrcY = 0.5, 0.5
			v.ColorR, v.ColorG, v.ColorB, v.ColorA = cr, cg, cb, ca
		}
		dst[i] = v
	}
}

// ensureTransformedVerts grows the node's transformedVerts buffer to fit
// len(n.verts), using a high-water-mark strategy (never shrinks).
func ensureTransformedVerts(n *Node) []ebiten.Vertex {
	need := len(n.verts)
	if cap(n.transformedVerts) < need {
		n.transformedVerts = make([]ebiten.Vertex, need)
	}
	n.transformedVerts = n.transformedVerts[:need]
	return n.transformedVerts
}

// --- White pixel singleton (single-threaded, no sync.Once) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured solid fills.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// worldAABB transforms the four corners of a local rect and returns their
// axis-aligned bounds.
func worldAABB(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// rectUnion returns the smallest Rect containing both a and b.
func rectUnion(a, b Rect) Rect {
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.X+a.Width, b.X+b.Width)
	maxY := math.Max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// rectIntersect returns the overlap of a and b (zero-sized if disjoint).
func rectIntersect(a, b Rect) Rect {
	minX := math.Max(a.X, b.X)
	minY := math.Max(a.Y, b.Y)
	maxX := math.Min(a.X+a.Width, b.X+b.Width)
	maxY := math.Min(a.Y+a.Height, b.Y+b.Height)
	if maxX <= minX || maxY <= minY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
