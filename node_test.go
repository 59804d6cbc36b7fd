package tidepool

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constructor defaults ---

func TestNewGroupDefaults(t *testing.T) {
	n := NewGroup("test")
	assertNodeDefaults(t, n, "test", NodeTypeGroup)
}

func TestNewRectDefaults(t *testing.T) {
	n := NewRect("r", 40, 20, SolidPaint(Color{1, 0, 0, 1}))
	assertNodeDefaults(t, n, "r", NodeTypeRect)
	if n.Width != 40 || n.Height != 20 {
		t.Errorf("size = %vx%v, want 40x20", n.Width, n.Height)
	}
	if n.Fill.Color != (Color{1, 0, 0, 1}) {
		t.Errorf("Fill = %v, want red", n.Fill.Color)
	}
}

func TestNewCircleDefaults(t *testing.T) {
	n := NewCircle("c", 12, Paint{})
	assertNodeDefaults(t, n, "c", NodeTypeCircle)
	if n.Radius != 12 {
		t.Errorf("Radius = %v, want 12", n.Radius)
	}
	if n.Fill.Color != ColorWhite {
		t.Errorf("empty paint = %v, want white", n.Fill.Color)
	}
}

func TestNewPathNodeDefaults(t *testing.T) {
	n := NewPathNode("p", nil, SolidPaint(ColorWhite))
	assertNodeDefaults(t, n, "p", NodeTypePath)
	if n.Path == nil {
		t.Error("nil path not replaced")
	}
}

func TestNewImageDefaults(t *testing.T) {
	n := NewImage("img", ebiten.NewImage(30, 10))
	assertNodeDefaults(t, n, "img", NodeTypeImage)
	if n.Width != 30 || n.Height != 10 {
		t.Errorf("size = %vx%v, want 30x10", n.Width, n.Height)
	}
}

func TestNewParticlesDefaults(t *testing.T) {
	n := NewParticles("e", EmitterConfig{BlendMode: BlendAdd})
	assertNodeDefaults(t, n, "e", NodeTypeParticles)
	if n.Emitter == nil || n.BlendMode != BlendAdd {
		t.Errorf("emitter = %v, blend = %v", n.Emitter, n.BlendMode)
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %d, want %d", n.Type, typ)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if n.Interactable {
		t.Error("Interactable should be false")
	}
	if !n.transformDirty {
		t.Error("transformDirty should be true")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	if a.ID == b.ID {
		t.Errorf("IDs collide: %d", a.ID)
	}
}

// --- Tree manipulation ---

func TestAddChildReparents(t *testing.T) {
	p1, p2, c := NewGroup("p1"), NewGroup("p2"), NewGroup("c")
	p1.AddChild(c)
	p2.AddChild(c)
	if c.Parent != p2 {
		t.Error("child not moved to p2")
	}
	if p1.NumChildren() != 0 || p2.NumChildren() != 1 {
		t.Errorf("children = %d, %d, want 0, 1", p1.NumChildren(), p2.NumChildren())
	}
}

func TestAddChildPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil child", func() { NewGroup("p").AddChild(nil) }},
		{"cycle", func() {
			a, b := NewGroup("a"), NewGroup("b")
			a.AddChild(b)
			b.AddChild(a)
		}},
		{"self", func() {
			a := NewGroup("a")
			a.AddChild(a)
		}},
		{"index out of range", func() { NewGroup("p").AddChildAt(NewGroup("c"), 3) }},
		{"remove foreign", func() { NewGroup("p").RemoveChild(NewGroup("c")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestAddChildAt(t *testing.T) {
	p := NewGroup("p")
	a, b, c := NewGroup("a"), NewGroup("b"), NewGroup("c")
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)
	for i, want := range []*Node{a, b, c} {
		if p.ChildAt(i) != want {
			t.Errorf("ChildAt(%d) = %q, want %q", i, p.ChildAt(i).Name, want.Name)
		}
	}
}

func TestRemoveChildren(t *testing.T) {
	p := NewGroup("p")
	kids := []*Node{NewGroup("a"), NewGroup("b")}
	for _, k := range kids {
		p.AddChild(k)
	}
	p.RemoveChildren()
	if p.NumChildren() != 0 {
		t.Errorf("NumChildren = %d, want 0", p.NumChildren())
	}
	for _, k := range kids {
		if k.Parent != nil || k.IsDisposed() {
			t.Errorf("%s: parent=%v disposed=%v", k.Name, k.Parent, k.IsDisposed())
		}
	}
}

func TestZIndexOrder(t *testing.T) {
	p := NewGroup("p")
	a, b, c := NewGroup("a"), NewGroup("b"), NewGroup("c")
	a.ZIndex = 5
	c.ZIndex = -1
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)
	got := sortedChildList(p)
	want := []*Node{c, b, a}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, got[i].Name, want[i].Name)
		}
	}
	b.SetZIndex(10)
	if sortedChildList(p)[2] != b {
		t.Error("SetZIndex did not resort")
	}
}

// --- Disposal ---

func TestDisposeSubtreeAndClip(t *testing.T) {
	root := NewGroup("root")
	p := NewRect("p", 10, 10, Paint{})
	child := NewGroup("child")
	clip := NewGroup("clip")
	clipShape := NewCircle("shape", 5, Paint{})
	clip.AddChild(clipShape)
	p.AddChild(child)
	p.SetClip(clip)
	root.AddChild(p)

	if got := countSubtree(root); got != 5 {
		t.Errorf("countSubtree = %d, want 5", got)
	}
	p.Dispose()
	for _, n := range []*Node{p, child, clip, clipShape} {
		if !n.IsDisposed() {
			t.Errorf("%s not disposed", n.Name)
		}
	}
	if root.NumChildren() != 0 {
		t.Error("disposed node still attached")
	}
	if got := countSubtree(root); got != 1 {
		t.Errorf("countSubtree after dispose = %d, want 1", got)
	}
	p.Dispose()
}

func TestClearClipKeepsClipAlive(t *testing.T) {
	n := NewRect("n", 1, 1, Paint{})
	clip := NewRect("clip", 1, 1, Paint{})
	n.SetClip(clip)
	n.ClearClip()
	n.Dispose()
	if clip.IsDisposed() {
		t.Error("cleared clip was disposed with its former owner")
	}
	if n.Clip() != nil {
		t.Error("Clip() not nil")
	}
}

func TestSetFillColor(t *testing.T) {
	n := NewRect("n", 1, 1, GradientPaint(NewLinearGradient(0, 0, 1, 0)))
	n.SetFillColor(Color{0, 1, 0, 1})
	if n.Fill.Gradient != nil || n.Fill.Color != (Color{0, 1, 0, 1}) {
		t.Errorf("Fill = %+v, want solid green", n.Fill)
	}
}

func TestDebugDisposedPanics(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	n := NewGroup("gone")
	n.Dispose()
	defer func() {
		if recover() == nil {
			t.Error("expected panic adding a disposed node")
		}
	}()
	s.Root().AddChild(n)
}
