package tidepool

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestSamplePathDeterministic(t *testing.T) {
	l := WaveLayer{Amplitude: 20, Frequency: 0.005, BaseY: 75, Phase: 1.25}
	a := SamplePath(l, 12, 0.4, 960, 640)
	b := SamplePath(l, 12, 0.4, 960, 640)
	if len(a) != 13 {
		t.Fatalf("len = %d, want 13", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
	if a[0].X != 0 || a[12].X != 960 {
		t.Errorf("x span = %v..%v, want 0..960", a[0].X, a[12].X)
	}
	if want := 480 + 20*math.Sin(1.25+0.4); math.Abs(a[0].Y-want) > 1e-9 {
		t.Errorf("first y = %v, want %v", a[0].Y, want)
	}
}

func TestSamplePathFlatWithoutAmplitude(t *testing.T) {
	for _, pt := range SamplePath(WaveLayer{BaseY: 50}, 4, 3, 100, 200) {
		if pt.Y != 100 {
			t.Errorf("y = %v, want 100", pt.Y)
		}
	}
	if got := len(SamplePath(WaveLayer{}, 0, 0, 10, 10)); got != 2 {
		t.Errorf("len with zero points = %d, want 2", got)
	}
}

func TestWaveLayerParameters(t *testing.T) {
	rng := testRand()
	tests := []struct {
		i       int
		amp     float64
		baseY   float64
		opacity float64
		color   RGB
	}{
		{0, 20, 75, 0.2, RGB{255, 255, 255}},
		{1, 17, 83, 0.16, RGB{200, 220, 255}},
		{3, 11, 99, 0.08, RGB{200, 220, 255}},
		{5, 5, 115, 0.02, RGB{200, 220, 255}},
	}
	for _, tt := range tests {
		l := newWaveLayer(tt.i, rng)
		if math.Abs(l.Amplitude-tt.amp) > 1e-9 || l.BaseAmplitude != l.Amplitude {
			t.Errorf("layer %d amplitude = %v/%v, want %v", tt.i, l.Amplitude, l.BaseAmplitude, tt.amp)
		}
		if math.Abs(l.BaseY-tt.baseY) > 1e-9 {
			t.Errorf("layer %d BaseY = %v, want %v", tt.i, l.BaseY, tt.baseY)
		}
		if math.Abs(l.Opacity-tt.opacity) > 1e-9 {
			t.Errorf("layer %d Opacity = %v, want %v", tt.i, l.Opacity, tt.opacity)
		}
		if l.Color != tt.color {
			t.Errorf("layer %d Color = %v, want %v", tt.i, l.Color, tt.color)
		}
		if l.Phase < 0 || l.Phase >= 2*math.Pi {
			t.Errorf("layer %d Phase = %v out of range", tt.i, l.Phase)
		}
	}
}

func TestWaveFieldTick(t *testing.T) {
	root := NewGroup("root")
	w := NewWaveField(root, 4, 12, testRand(), 960, 640)
	if len(w.group.Children()) != 4 {
		t.Fatalf("wave nodes = %d, want 4", len(w.group.Children()))
	}
	before := w.Layers()
	w.Tick()
	after := w.Layers()
	if math.Abs(w.TimeOffset()-0.02) > 1e-12 {
		t.Errorf("TimeOffset = %v, want 0.02", w.TimeOffset())
	}
	for i := range after {
		if d := after[i].Phase - before[i].Phase; math.Abs(d-before[i].PhaseSpeed) > 1e-12 {
			t.Errorf("layer %d phase advanced %v, want %v", i, d, before[i].PhaseSpeed)
		}
	}
	// MoveTo bottom-left, 13 samples, LineTo bottom-right.
	if got := w.paths[0].NumPoints(); got != 15 {
		t.Errorf("path points = %d, want 15", got)
	}
}

func TestWaveFieldPointer(t *testing.T) {
	w := NewWaveField(NewGroup("root"), 3, 8, testRand(), 100, 100)
	w.OnPointerMoved(1, 0.75)
	ls := w.Layers()
	if want := 20 * 1.5; math.Abs(ls[0].Amplitude-want) > 1e-9 {
		t.Errorf("layer 0 amplitude = %v, want %v", ls[0].Amplitude, want)
	}
	if want := 17 * (1 + 0.92*0.5); math.Abs(ls[1].Amplitude-want) > 1e-9 {
		t.Errorf("layer 1 amplitude = %v, want %v", ls[1].Amplitude, want)
	}
	for i, l := range ls {
		if math.Abs(l.SpeedModifier-0.025) > 1e-12 {
			t.Errorf("layer %d SpeedModifier = %v, want 0.025", i, l.SpeedModifier)
		}
	}

	// Moves replace the bias rather than accumulating it.
	w.OnPointerMoved(0.5, 0.75)
	w.OnPointerMoved(0.5, 0.75)
	if got := w.Layers()[0].SpeedModifier; got != 0 {
		t.Errorf("SpeedModifier = %v, want 0", got)
	}
}

func TestWaveFieldRegenerate(t *testing.T) {
	root := NewGroup("root")
	w := NewWaveField(root, 4, 12, testRand(), 960, 640)
	old := append([]*Node(nil), w.nodes...)
	w.Tick()
	w.Regenerate()
	for i, n := range old {
		if !n.IsDisposed() {
			t.Errorf("old node %d not disposed", i)
		}
	}
	if len(w.group.Children()) != 4 {
		t.Errorf("wave nodes = %d, want 4", len(w.group.Children()))
	}
	if w.TimeOffset() == 0 {
		t.Error("Regenerate reset the global drift")
	}
}

func TestWaveFieldNearest(t *testing.T) {
	w := NewWaveField(NewGroup("root"), 4, 12, testRand(), 960, 640)
	tests := []struct {
		y    float64
		idx  int
		dist float64
	}{
		{75, 0, 0},
		{80, 1, 3},
		{100, 3, 1},
		{10, 0, 65},
	}
	for _, tt := range tests {
		idx, dist := w.Nearest(tt.y)
		if idx != tt.idx || math.Abs(dist-tt.dist) > 1e-9 {
			t.Errorf("Nearest(%v) = %d, %v, want %d, %v", tt.y, idx, dist, tt.idx, tt.dist)
		}
	}
	empty := NewWaveField(NewGroup("root"), 0, 12, testRand(), 960, 640)
	if idx, _ := empty.Nearest(50); idx != -1 {
		t.Errorf("empty Nearest = %d, want -1", idx)
	}
}
