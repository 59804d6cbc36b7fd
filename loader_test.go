package tidepool

import (
	"errors"
	"testing"
	"time"
)

type loaderRig struct {
	root    *Node
	content *Node
	sched   *Scheduler
	bus     *Bus
	loads   int
}

func newLoaderRig() *loaderRig {
	r := &loaderRig{root: NewGroup("root"), content: NewGroup("main-content"), sched: NewScheduler(), bus: NewBus()}
	r.root.AddChild(r.content)
	r.bus.SubscribeLoad(LoadFunc(func() { r.loads++ }))
	return r
}

func (r *loaderRig) run(l *LoaderSequencer, d time.Duration) {
	const frame = 10 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		r.sched.Advance(frame)
		l.Tick(frame)
	}
}

func TestLoaderProgress(t *testing.T) {
	r := newLoaderRig()
	l, err := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	if r.content.Visible {
		t.Error("content visible while loading")
	}
	l.Start()
	if l.Frames() != 1 {
		t.Errorf("Frames() after Start = %d, want 1", l.Frames())
	}

	last := l.Progress()
	for elapsed := time.Duration(0); elapsed < 2500*time.Millisecond; elapsed += 10 * time.Millisecond {
		r.run(l, 10*time.Millisecond)
		p := l.Progress()
		if p < last {
			t.Fatalf("progress went back from %v to %v", last, p)
		}
		if p > 100 {
			t.Fatalf("progress = %v, want <= 100", p)
		}
		last = p
	}
	if last != 100 {
		t.Errorf("progress at 2500ms = %v, want 100", last)
	}
	if r.loads != 0 {
		t.Error("completion published before the fade")
	}

	r.run(l, 900*time.Millisecond)
	if !l.Done() {
		t.Fatal("loader not done after the fade")
	}
	if r.loads != 1 {
		t.Errorf("loads = %d, want 1", r.loads)
	}
	if !r.content.Visible {
		t.Error("content hidden after loading")
	}
	if r.root.NumChildren() != 1 {
		t.Errorf("root children = %d, want only the content", r.root.NumChildren())
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", r.sched.Pending())
	}
	if l.Err() != nil {
		t.Errorf("Err() = %v, want nil", l.Err())
	}
}

func TestLoaderTickCount(t *testing.T) {
	r := newLoaderRig()
	l, _ := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	l.Start()
	r.run(l, 2490*time.Millisecond)
	// One tick at start plus one every 30ms until 2500/30 frames are drawn.
	if l.Frames() != 84 {
		t.Errorf("Frames() = %d, want 84", l.Frames())
	}
	r.run(l, 500*time.Millisecond)
	if l.Frames() != 84 {
		t.Errorf("Frames() kept ticking: %d", l.Frames())
	}
}

func TestLoaderSkip(t *testing.T) {
	r := newLoaderRig()
	l, _ := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	l.Start()
	r.run(l, time.Second)
	l.Skip()
	if r.loads != 1 || !r.content.Visible || !l.Done() {
		t.Fatalf("after Skip: loads=%d visible=%v done=%v", r.loads, r.content.Visible, l.Done())
	}
	frames := l.Frames()
	r.run(l, 5*time.Second)
	if r.loads != 1 {
		t.Errorf("loads = %d, want 1", r.loads)
	}
	if l.Frames() != frames {
		t.Errorf("ticks ran after Skip: %d -> %d", frames, l.Frames())
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", r.sched.Pending())
	}
}

func TestLoaderFallbackOnce(t *testing.T) {
	r := newLoaderRig()
	l, _ := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	l.Start()
	first := errors.New("first")
	l.Fallback(first)
	l.Fallback(errors.New("second"))
	if r.loads != 1 {
		t.Errorf("loads = %d, want 1", r.loads)
	}
	if !errors.Is(l.Err(), first) {
		t.Errorf("Err() = %v, want first", l.Err())
	}
}

func TestLoaderInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  LoaderConfig
	}{
		{"zero duration", LoaderConfig{Interval: time.Millisecond}},
		{"zero interval", LoaderConfig{Duration: time.Second}},
		{"negative particles", LoaderConfig{Duration: time.Second, Interval: time.Millisecond, Particles: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newLoaderRig()
			l, err := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, tt.cfg, testRand(), 800, 600)
			if !errors.Is(err, ErrLoaderFailed) {
				t.Errorf("err = %v, want ErrLoaderFailed", err)
			}
			if !l.Done() || r.loads != 1 || !r.content.Visible {
				t.Errorf("fallback not applied: done=%v loads=%d visible=%v", l.Done(), r.loads, r.content.Visible)
			}
		})
	}
}

func TestLoaderMissingContent(t *testing.T) {
	r := newLoaderRig()
	_, err := NewLoaderSequencer(r.root, nil, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	if !errors.Is(err, ErrMissingNode) || !errors.Is(err, ErrLoaderFailed) {
		t.Errorf("err = %v, want ErrLoaderFailed wrapping ErrMissingNode", err)
	}
	if r.loads != 1 {
		t.Errorf("loads = %d, want 1", r.loads)
	}
}

func TestLoaderFlourish(t *testing.T) {
	r := newLoaderRig()
	l, _ := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	l.Start()
	r.run(l, 2510*time.Millisecond)
	if l.flourish == nil || l.flourish.Emitter.AliveCount() == 0 {
		t.Fatal("no flourish particles after completion")
	}
	r.run(l, 400*time.Millisecond)
	if a := l.layer.Alpha; a <= 0 || a >= 1 {
		t.Errorf("layer alpha mid fade = %v", a)
	}
}

func TestLoaderLabel(t *testing.T) {
	r := newLoaderRig()
	l, _ := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, DefaultLoaderConfig(), testRand(), 800, 600)
	if l.label == nil || l.label.Parent != l.layer {
		t.Fatal("LOADING label not in loader layer")
	}
	if w := l.label.Width; w != float64(len("LOADING")*debugGlyphW) {
		t.Errorf("label width = %v, want %v", w, len("LOADING")*debugGlyphW)
	}
	if x, y := l.label.X, l.label.Y; x != 400-l.label.Width/2 || y != 300-debugGlyphH/2 {
		t.Errorf("label at (%v, %v), want centered", x, y)
	}
}

func TestLoaderSimpleIndicator(t *testing.T) {
	r := newLoaderRig()
	cfg := DefaultLoaderConfig()
	cfg.Simple = true
	l, err := NewLoaderSequencer(r.root, r.content, r.sched, r.bus, cfg, testRand(), 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	if l.label == nil || l.label.Width != float64(len("Loading...")*debugGlyphW) {
		t.Fatal("no Loading... indicator")
	}
	if len(l.particles) != 0 || l.bar != nil {
		t.Error("simple indicator built the particle animation")
	}
	l.Start()
	r.run(l, 2400*time.Millisecond)
	if r.content.Visible || l.Done() {
		t.Error("simple indicator ended before the loading duration")
	}
	r.run(l, 1000*time.Millisecond)
	if !l.Done() || r.loads != 1 || !r.content.Visible {
		t.Errorf("done=%v loads=%d visible=%v, want completed", l.Done(), r.loads, r.content.Visible)
	}
	if l.flourish != nil {
		t.Error("simple indicator fired the flourish")
	}
}
