package tidepool

import "testing"

const stepDT = 1.0 / 60

func stepN(s *Scene, n int) {
	for i := 0; i < n; i++ {
		s.Step(stepDT)
	}
}

func interactiveRect(name string, x, y, w, h float64) *Node {
	r := NewRect(name, w, h, SolidPaint(red))
	r.SetPosition(x, y)
	r.Interactable = true
	return r
}

func TestHitShapes(t *testing.T) {
	r := HitRect{X: 10, Y: 10, Width: 20, Height: 10}
	c := HitCircle{CenterX: 0, CenterY: 0, Radius: 5}
	tests := []struct {
		name  string
		shape HitShape
		x, y  float64
		want  bool
	}{
		{"rect inside", r, 15, 15, true},
		{"rect edge", r, 30, 20, true},
		{"rect outside", r, 31, 15, false},
		{"circle inside", c, 3, 4, true},
		{"circle outside", c, 4, 4, false},
	}
	for _, tt := range tests {
		if got := tt.shape.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: Contains(%v, %v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestHitTestTopmost(t *testing.T) {
	s := NewScene()
	bottom := interactiveRect("bottom", 0, 0, 50, 50)
	top := interactiveRect("top", 25, 25, 50, 50)
	s.Root().AddChild(bottom)
	s.Root().AddChild(top)

	tests := []struct {
		x, y float64
		want *Node
	}{
		{10, 10, bottom},
		{30, 30, top},
		{70, 70, top},
		{90, 90, nil},
	}
	for _, tt := range tests {
		if got := s.hitTest(tt.x, tt.y); got != tt.want {
			t.Errorf("hitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	bottom.SetZIndex(1)
	if got := s.hitTest(30, 30); got != bottom {
		t.Errorf("after SetZIndex, hitTest = %v, want bottom", got)
	}
}

func TestHitTestSkips(t *testing.T) {
	s := NewScene()
	g := NewGroup("g")
	r := interactiveRect("r", 0, 0, 50, 50)
	g.AddChild(r)
	s.Root().AddChild(g)

	if got := s.hitTest(10, 10); got != nil {
		t.Errorf("non-interactable ancestor: hitTest = %v, want nil", got)
	}
	g.Interactable = true
	if got := s.hitTest(10, 10); got != r {
		t.Errorf("hitTest = %v, want r", got)
	}
	r.Visible = false
	if got := s.hitTest(10, 10); got != nil {
		t.Errorf("invisible: hitTest = %v, want nil", got)
	}
	r.Visible = true
	r.SetScale(0, 1)
	if got := s.hitTest(10, 10); got != nil {
		t.Errorf("zero scale: hitTest = %v, want nil", got)
	}
}

func TestHitTestGroupHitShape(t *testing.T) {
	s := NewScene()
	g := NewGroup("g")
	g.Interactable = true
	s.Root().AddChild(g)
	if got := s.hitTest(5, 5); got != nil {
		t.Errorf("group without HitShape: hitTest = %v, want nil", got)
	}
	g.HitShape = HitRect{Width: 10, Height: 10}
	if got := s.hitTest(5, 5); got != g {
		t.Errorf("group with HitShape: hitTest = %v, want g", got)
	}
}

func TestClick(t *testing.T) {
	s := NewScene()
	r := interactiveRect("r", 0, 0, 50, 50)
	r.UserData = "payload"
	var clicks []ClickContext
	r.OnClick = func(ctx ClickContext) { clicks = append(clicks, ctx) }
	s.Root().AddChild(r)

	s.InjectClick(10, 20)
	stepN(s, 2)
	if len(clicks) != 1 {
		t.Fatalf("clicks = %d, want 1", len(clicks))
	}
	ctx := clicks[0]
	if ctx.Node != r || ctx.UserData != "payload" || ctx.LocalX != 10 || ctx.LocalY != 20 {
		t.Errorf("ctx = %+v", ctx)
	}

	// Press on the node, release elsewhere.
	s.InjectPress(10, 10)
	s.InjectRelease(80, 80)
	stepN(s, 2)
	if len(clicks) != 1 {
		t.Errorf("drag off fired a click")
	}
}

func TestDoubleClick(t *testing.T) {
	tests := []struct {
		name  string
		queue func(s *Scene)
		want  int
	}{
		{"same spot", func(s *Scene) {
			s.InjectDoubleClick(10, 10)
			stepN(s, 4)
		}, 1},
		{"too slow", func(s *Scene) {
			s.InjectClick(10, 10)
			stepN(s, 30)
			s.InjectClick(10, 10)
			stepN(s, 2)
		}, 0},
		{"too far", func(s *Scene) {
			s.InjectClick(5, 5)
			s.InjectClick(20, 20)
			stepN(s, 4)
		}, 0},
		{"triple", func(s *Scene) {
			s.InjectDoubleClick(10, 10)
			s.InjectClick(10, 10)
			stepN(s, 6)
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene()
			r := interactiveRect("r", 0, 0, 50, 50)
			n := 0
			r.OnDoubleClick = func(ClickContext) { n++ }
			s.Root().AddChild(r)
			tt.queue(s)
			if n != tt.want {
				t.Errorf("double clicks = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestSceneCallbacks(t *testing.T) {
	s := NewScene()
	r := interactiveRect("r", 0, 0, 50, 50)
	s.Root().AddChild(r)

	var moves []PointerContext
	clicks := 0
	s.OnPointerMove(func(ctx PointerContext) { moves = append(moves, ctx) })
	h := s.OnClick(func(ClickContext) { clicks++ })

	s.InjectMove(100, 100)
	s.InjectMove(100, 100)
	s.InjectMove(10, 10)
	stepN(s, 3)
	if len(moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(moves))
	}
	if moves[0].Node != nil || moves[1].Node != r {
		t.Errorf("move nodes = %v, %v", moves[0].Node, moves[1].Node)
	}

	s.InjectClick(10, 10)
	stepN(s, 2)
	h.Remove()
	h.Remove()
	s.InjectClick(10, 10)
	stepN(s, 2)
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1 after Remove", clicks)
	}

	CallbackHandle{}.Remove()
}
