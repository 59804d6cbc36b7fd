package tidepool

import (
	"math"
	"testing"
	"time"
)

func TestEnsureMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		node      *Node
		verts     int
		triangles int
	}{
		{"rect", NewRect("r", 10, 5, SolidPaint(red)), 4, 2},
		{"circle", NewCircle("c", 10, SolidPaint(red)), 17, 16},
		{"empty circle", NewCircle("c", 0, SolidPaint(red)), 0, 0},
		{"square path", NewPathNode("p", square(NewPath(), 0, 0, 10), SolidPaint(red)), 4, 2},
		{"empty path", NewPathNode("p", nil, SolidPaint(red)), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ensureMesh(tt.node)
			if len(tt.node.verts) != tt.verts || len(tt.node.inds) != 3*tt.triangles {
				t.Errorf("verts = %d, inds = %d, want %d and %d",
					len(tt.node.verts), len(tt.node.inds), tt.verts, 3*tt.triangles)
			}
		})
	}
}

func TestEnsureMeshRebuilds(t *testing.T) {
	r := NewRect("r", 10, 5, SolidPaint(red))
	ensureMesh(r)
	if r.verts[2].DstX != 10 || r.verts[2].DstY != 5 {
		t.Errorf("corner = (%v, %v), want (10, 5)", r.verts[2].DstX, r.verts[2].DstY)
	}
	r.SetSize(20, 8)
	ensureMesh(r)
	if r.verts[2].DstX != 20 || r.verts[2].DstY != 8 {
		t.Errorf("after SetSize corner = (%v, %v), want (20, 8)", r.verts[2].DstX, r.verts[2].DstY)
	}

	p := NewPath().MoveTo(0, 0).LineTo(10, 0).LineTo(10, 10)
	n := NewPathNode("p", p, SolidPaint(red))
	ensureMesh(n)
	if len(n.inds) != 3 {
		t.Fatalf("inds = %d, want 3", len(n.inds))
	}
	p.LineTo(0, 10)
	ensureMesh(n)
	if len(n.verts) != 4 || len(n.inds) != 6 {
		t.Errorf("after LineTo: verts = %d, inds = %d, want 4 and 6", len(n.verts), len(n.inds))
	}

	c := NewCircle("c", 10, SolidPaint(red))
	ensureMesh(c)
	c.Radius = 100
	ensureMesh(c)
	if want := circleSegments(100) + 1; len(c.verts) != want {
		t.Errorf("after radius change verts = %d, want %d", len(c.verts), want)
	}
}

func TestEnsureMeshStrip(t *testing.T) {
	p := NewPath().MoveTo(0, 5).LineTo(10, 0).LineTo(20, 5).LineTo(20, 5).LineTo(20, 10).LineTo(0, 10)
	n := NewPathNode("wave", p, SolidPaint(red))
	n.FillMode = FillStrip
	ensureMesh(n)
	// Only the two sloped edges produce quads.
	if len(n.verts) != 8 || len(n.inds) != 12 {
		t.Fatalf("verts = %d, inds = %d, want 8 and 12", len(n.verts), len(n.inds))
	}
	for _, v := range n.verts[2:4] {
		if v.DstY != 10 {
			t.Errorf("dropped vertex y = %v, want baseline 10", v.DstY)
		}
	}
}

func TestShapeContainsLocal(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		x, y float64
		want bool
	}{
		{"rect", NewRect("r", 10, 10, Paint{}), 5, 5, true},
		{"rect out", NewRect("r", 10, 10, Paint{}), 11, 5, false},
		{"circle", NewCircle("c", 5, Paint{}), -3, 3, true},
		{"circle out", NewCircle("c", 5, Paint{}), 4, 4, false},
		{"group", NewGroup("g"), 0, 0, false},
		{"empty path", NewPathNode("p", nil, Paint{}), 0, 0, false},
	}
	for _, tt := range tests {
		if got := shapeContainsLocal(tt.node, tt.x, tt.y); got != tt.want {
			t.Errorf("%s: shapeContainsLocal(%v, %v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestLocalBounds(t *testing.T) {
	if got := localBounds(NewCircle("c", 4, Paint{})); got != (Rect{X: -4, Y: -4, Width: 8, Height: 8}) {
		t.Errorf("circle bounds = %+v", got)
	}
	p := NewPathNode("p", NewPath().MoveTo(1, 2).LineTo(5, 8), Paint{})
	if got := localBounds(p); got != (Rect{X: 1, Y: 2, Width: 4, Height: 6}) {
		t.Errorf("path bounds = %+v", got)
	}
	if got := localBounds(NewGroup("g")); got != (Rect{}) {
		t.Errorf("group bounds = %+v", got)
	}
}

// stencilWinding sums the fan triangles covering (x, y), each fanned from its
// subpath's first point and counted +1 or -1 by orientation. This is how
// both appendFan vertices and vector.FillPath are stencilled under
// FillRuleNonZero.
func stencilWinding(p *Path, x, y float64) int {
	w := 0
	for _, sp := range p.Subpaths() {
		if len(sp) < 3 {
			continue
		}
		a := sp[0]
		for i := 1; i+1 < len(sp); i++ {
			b, c := sp[i], sp[i+1]
			d1 := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
			d2 := (c.X-b.X)*(y-b.Y) - (c.Y-b.Y)*(x-b.X)
			d3 := (a.X-c.X)*(y-c.Y) - (a.Y-c.Y)*(x-c.X)
			switch {
			case d1 > 0 && d2 > 0 && d3 > 0:
				w++
			case d1 < 0 && d2 < 0 && d3 < 0:
				w--
			}
		}
	}
	return w
}

// coverageMismatches counts grid points where the stencilled fan and
// shapeContainsLocal disagree.
func coverageMismatches(n *Node, b Rect, cols, rows int) (bad, total int) {
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			// Off-grid offsets keep samples off edges and fan diagonals.
			x := b.X + (float64(i)+0.37)*b.Width/float64(cols)
			y := b.Y + (float64(j)+0.61)*b.Height/float64(rows)
			gpu := stencilWinding(n.Path, x, y) != 0
			if gpu != shapeContainsLocal(n, x, y) {
				bad++
			}
			total++
		}
	}
	return bad, total
}

func TestFanCoverageMatchesContains(t *testing.T) {
	r := newTransitionRig(t)
	r.engine.Play(EffectSpiral, Presets()[1])
	r.run(250 * 16 * time.Millisecond)
	spiral := r.layer.ChildAt(0).Clip()
	if spiral == nil || spiral.Path.NumPoints() < 200 {
		t.Fatal("spiral clip not grown")
	}

	ring := NewPath().Circle(0, 0, 20).CircleDir(0, 0, 10, CounterClockwise)
	tests := []struct {
		name string
		node *Node
		area Rect
	}{
		{"spiral", spiral, Rect{Width: 800, Height: 600}},
		{"long fish", NewPathNode("fish", fishPath(FishLong, 40), SolidPaint(red)), Rect{X: -20, Y: -20, Width: 40, Height: 40}},
		{"round fish", NewPathNode("fish", fishPath(FishRound, 40), SolidPaint(red)), Rect{X: -20, Y: -20, Width: 40, Height: 40}},
		{"ring", NewPathNode("ring", ring, SolidPaint(red)), Rect{X: -25, Y: -25, Width: 50, Height: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad, total := coverageMismatches(tt.node, tt.area, 80, 60)
			if bad != 0 {
				t.Errorf("GPU and CPU coverage disagree on %d/%d samples", bad, total)
			}
		})
	}
}

func TestSpiralClipCoversCenterDisk(t *testing.T) {
	r := newTransitionRig(t)
	r.engine.Play(EffectSpiral, Presets()[1])
	r.run(250 * 16 * time.Millisecond)
	spiral := r.layer.ChildAt(0).Clip()

	// Every point well inside the innermost full turn is covered.
	for _, d := range []float64{5, 40, 80, 120} {
		for k := 0; k < 12; k++ {
			a := float64(k) * 0.52
			x, y := 400+d*math.Cos(a), 300+d*math.Sin(a)
			if !shapeContainsLocal(spiral, x, y) {
				t.Errorf("point at radius %v angle %.2f not covered", d, a)
			}
		}
	}
}

func TestFishRoundEyeIsHole(t *testing.T) {
	p := fishPath(FishRound, 40)
	if p.Contains(0.6*20, -0.2*20) {
		t.Error("eye center should be a hole")
	}
	if !p.Contains(-5, 0) {
		t.Error("body should be filled")
	}
}
