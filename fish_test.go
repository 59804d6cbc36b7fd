package tidepool

import (
	"math"
	"testing"
)

type stubWaves struct {
	idx     int
	dist    float64
	surface float64
}

func (s stubWaves) Nearest(float64) (int, float64)  { return s.idx, s.dist }
func (s stubWaves) SurfaceAt(int, float64) float64 { return s.surface }

func newTestSwarm(n int, palette []RGB) *FishSwarm {
	return NewFishSwarm(NewGroup("root"), nil, palette, n, testRand(), 1000, 500)
}

func TestRandomFishRanges(t *testing.T) {
	rng := testRand()
	for i := 0; i < 200; i++ {
		a := randomFish(rng, 3)
		if a.X < 0 || a.X > 100 || a.Y < 30 || a.Y > 80 {
			t.Fatalf("position (%v, %v) out of range", a.X, a.Y)
		}
		if a.Size < 10 || a.Size > 40 || a.Speed < 0.02 || a.Speed > 0.1 {
			t.Fatalf("size %v speed %v out of range", a.Size, a.Speed)
		}
		if a.Direction != 1 && a.Direction != -1 {
			t.Fatalf("Direction = %v", a.Direction)
		}
		if a.ColorIndex < 0 || a.ColorIndex >= 3 {
			t.Fatalf("ColorIndex = %d", a.ColorIndex)
		}
		if a.Kind > FishRound {
			t.Fatalf("Kind = %d", a.Kind)
		}
	}
}

func TestFishWraparound(t *testing.T) {
	f := newTestSwarm(2, nil)
	f.agents[0] = FishAgent{X: 110.5, Y: 50, Speed: 0.6, Direction: 1}
	f.agents[1] = FishAgent{X: -9.9, Y: 50, Speed: 0.2, Direction: -1}
	f.Tick()
	if got := f.agents[0].X; got != -10 {
		t.Errorf("right swimmer X = %v, want -10", got)
	}
	if got := f.agents[1].X; got != 110 {
		t.Errorf("left swimmer X = %v, want 110", got)
	}

	// Fish swimming away from an edge are not wrapped.
	f.agents[0] = FishAgent{X: -50, Y: 50, Speed: 1, Direction: 1}
	f.Tick()
	if got := f.agents[0].X; got != -49 {
		t.Errorf("X = %v, want -49", got)
	}
}

func TestFishRepulsion(t *testing.T) {
	tests := []struct {
		name   string
		fish   FishAgent
		px, py float64
		wantX  float64
		wantY  float64
	}{
		{"on top of the pointer", FishAgent{X: 50, Y: 50}, 0.5, 0.5, 49, 50},
		{"pushed left", FishAgent{X: 40, Y: 50}, 0.5, 0.5, 39.5, 50},
		{"out of reach", FishAgent{X: 10, Y: 50}, 0.5, 0.5, 10, 50},
		{"clamped to band", FishAgent{X: 50, Y: 79.5}, 0.5, 0.7, 50, 80},
		{"clamped to left edge", FishAgent{X: 0.2, Y: 50}, 0.01, 0.5, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestSwarm(1, nil)
			f.agents[0] = tt.fish
			f.OnPointerMoved(tt.px, tt.py)
			a := f.agents[0]
			if math.Abs(a.X-tt.wantX) > 1e-6 || math.Abs(a.Y-tt.wantY) > 1e-6 {
				t.Errorf("position = (%v, %v), want (%v, %v)", a.X, a.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestFishPlacement(t *testing.T) {
	f := newTestSwarm(1, nil)
	f.agents[0] = FishAgent{X: 25, Y: 40, Direction: -1, Depth: 1, WobbleSpeed: 0}
	f.place(0, 0, 0)
	n := f.nodes[0]
	if n.X != 250 || n.Y != 200 {
		t.Errorf("node at (%v, %v), want (250, 200)", n.X, n.Y)
	}
	if n.ScaleX != -1 || n.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want (-1, 1)", n.ScaleX, n.ScaleY)
	}

	f.place(0, 2, 0)
	if want := -2 * 5 * math.Pi / 180; math.Abs(n.Rotation-want) > 1e-12 {
		t.Errorf("Rotation = %v, want %v", n.Rotation, want)
	}
}

func TestFishSurfaceCoupling(t *testing.T) {
	f := newTestSwarm(1, nil)
	f.agents[0] = FishAgent{X: 50, Y: 50, Depth: 0}
	if got := f.surface(&f.agents[0]); got != 0 {
		t.Errorf("surface without waves = %v, want 0", got)
	}
	f.SetWaves(stubWaves{idx: 0, dist: 10, surface: 4})
	if got := f.surface(&f.agents[0]); math.Abs(got-1) > 1e-12 {
		t.Errorf("surface = %v, want 1", got)
	}
	f.agents[0].Depth = 1
	if got := f.surface(&f.agents[0]); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("deep surface = %v, want 0.3", got)
	}
	f.SetWaves(stubWaves{idx: 0, dist: 25, surface: 4})
	if got := f.surface(&f.agents[0]); got != 0 {
		t.Errorf("distant surface = %v, want 0", got)
	}
}

func TestFishPaletteRecolor(t *testing.T) {
	palette := []RGB{{255, 0, 0}, {0, 255, 0}}
	f := newTestSwarm(6, palette)
	f.OnPaletteChanged([]RGB{{0, 0, 255}})
	for i, n := range f.nodes {
		c := n.Fill.Color
		if c.R != 0 || c.G != 0 || c.B != 1 {
			t.Errorf("fish %d color = %v, want blue", i, c)
		}
		if want := f.agents[i].alpha(); c.A != want {
			t.Errorf("fish %d alpha = %v, want %v", i, c.A, want)
		}
	}
}

func TestFishRegenerate(t *testing.T) {
	f := newTestSwarm(5, nil)
	old := f.nodes[0]
	f.Regenerate()
	if !old.IsDisposed() {
		t.Error("old fish node not disposed")
	}
	if len(f.Agents()) != 5 || f.group.NumChildren() != 5 {
		t.Errorf("population = %d agents, %d nodes, want 5", len(f.Agents()), f.group.NumChildren())
	}
}

func TestFishPathKinds(t *testing.T) {
	for _, k := range []FishKind{FishNormal, FishLong, FishRound} {
		p := fishPath(k, 20)
		if !p.Contains(0, 0) && k != FishLong {
			t.Errorf("kind %d: body does not contain origin", k)
		}
		b := p.Bounds()
		if b.Width <= 0 || b.Width > 20.001 {
			t.Errorf("kind %d: width %v", k, b.Width)
		}
	}
}
