package tidepool

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tanema/gween/ease"
)

// ErrLoaderFailed is returned (wrapped) when the loading screen cannot be
// built or animated. The loader has already fallen back when it is seen.
var ErrLoaderFailed = errors.New("tidepool: loader failed")

// LoaderConfig holds the timing of the loading sequence.
type LoaderConfig struct {
	Duration  time.Duration
	FadeOut   time.Duration
	Interval  time.Duration
	Particles int
	// Simple replaces the particle animation with a static "Loading..."
	// indicator. The timing is unchanged.
	Simple bool
}

// DefaultLoaderConfig returns the stock timing: 2.5s of loading drawn at
// 30ms ticks with 25 particles and an 800ms fade.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Duration:  2500 * time.Millisecond,
		FadeOut:   800 * time.Millisecond,
		Interval:  30 * time.Millisecond,
		Particles: 25,
	}
}

func (c LoaderConfig) validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %v", ErrLoaderFailed, c.Duration)
	case c.Interval <= 0:
		return fmt.Errorf("%w: tick interval %v", ErrLoaderFailed, c.Interval)
	case c.FadeOut < 0:
		return fmt.Errorf("%w: fade-out %v", ErrLoaderFailed, c.FadeOut)
	case c.Particles < 0:
		return fmt.Errorf("%w: %d particles", ErrLoaderFailed, c.Particles)
	}
	return nil
}

// loaderParticle orbits its base position. BaseX and BaseY are percent.
type loaderParticle struct {
	node         *Node
	baseX, baseY float64
	size         float64
	depth        float64
	speed        float64
	angle        float64
}

type loaderState uint8

const (
	loaderIdle loaderState = iota
	loaderRunning
	loaderCompleting
	loaderDone
)

const (
	progressBarWidth  = 200.0
	progressBarHeight = 4.0

	loaderLabel       = "LOADING"
	loaderSimpleLabel = "Loading..."
)

// LoaderSequencer plays the loading screen: orbiting particles and a
// progress bar for a fixed duration, a short flourish, a fade out, then the
// main content is revealed and loading completion is published.
type LoaderSequencer struct {
	cfg     LoaderConfig
	sched   *Scheduler
	bus     *Bus
	rng     *rand.Rand
	content *Node

	layer     *Node
	backdrop  *Node
	pulse     *Node
	barTrack  *Node
	bar       *Node
	flourish  *Node
	label     *Node
	particles []loaderParticle
	simple    bool
	tweens    []*TweenGroup

	state       loaderState
	frameCount  int
	totalFrames float64
	progress    float64
	tickTimer   TimerID
	timers      []TimerID
	err         error

	width, height float64
}

// NewLoaderSequencer builds the loading screen under parent and hides
// content until it completes. If the screen cannot be built the returned
// sequencer has already fallen back (content shown, completion published)
// and the error says why.
func NewLoaderSequencer(parent, content *Node, sched *Scheduler, bus *Bus, cfg LoaderConfig, rng *rand.Rand, width, height float64) (*LoaderSequencer, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	l := &LoaderSequencer{
		cfg:     cfg,
		sched:   sched,
		bus:     bus,
		rng:     rng,
		content: content,
		width:   width,
		height:  height,
	}
	if err := cfg.validate(); err != nil {
		l.Fallback(err)
		return l, err
	}
	if parent == nil || content == nil {
		err := fmt.Errorf("%w: %w", ErrLoaderFailed, ErrMissingNode)
		l.Fallback(err)
		return l, err
	}
	l.totalFrames = float64(cfg.Duration) / float64(cfg.Interval)
	if cfg.Simple {
		l.buildSimple(parent)
	} else if err := l.buildAnimated(parent); err != nil {
		l.err = err
		l.buildSimple(parent)
	}
	content.Visible = false
	return l, nil
}

// buildAnimated is build with panics turned into an error. Nothing is
// attached to parent on failure.
func (l *LoaderSequencer) buildAnimated(parent *Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if l.layer != nil {
				l.layer.Dispose()
			}
			l.layer, l.backdrop, l.pulse, l.label = nil, nil, nil, nil
			l.barTrack, l.bar, l.particles = nil, nil, nil
			err = fmt.Errorf("%w: %v", ErrLoaderFailed, r)
		}
	}()
	l.build(parent)
	return nil
}

// buildSimple shows the static indicator on the backdrop.
func (l *LoaderSequencer) buildSimple(parent *Node) {
	l.simple = true
	l.layer = NewGroup("loader")
	l.layer.ZIndex = layerLoader
	l.layer.Interactable = false
	l.backdrop = NewRect("loader-backdrop", l.width, l.height, SolidPaint(Color{0.04, 0.04, 0.12, 1}))
	l.label = newDebugLabel("loader-text", loaderSimpleLabel)
	l.layer.AddChild(l.backdrop)
	l.layer.AddChild(l.label)
	l.layout()
	parent.AddChild(l.layer)
}

func (l *LoaderSequencer) build(parent *Node) {
	l.layer = NewGroup("loader")
	l.layer.ZIndex = layerLoader
	l.layer.Interactable = false
	l.backdrop = NewRect("loader-backdrop", l.width, l.height, SolidPaint(Color{0.04, 0.04, 0.12, 1}))
	l.layer.AddChild(l.backdrop)

	l.pulse = NewCircle("loader-pulse", 30, SolidPaint(Color{1, 1, 1, 0.3}))

	l.particles = make([]loaderParticle, l.cfg.Particles)
	for i := range l.particles {
		p := loaderParticle{
			size:  5 + l.rng.Float64()*15,
			baseX: 50 + (l.rng.Float64()-0.5)*80,
			baseY: 50 + (l.rng.Float64()-0.5)*80,
			depth: l.rng.Float64(),
			speed: 0.3 + l.rng.Float64()*0.7,
			angle: l.rng.Float64() * 2 * math.Pi,
		}
		hue := float64(220 + l.rng.IntN(60))
		r, g, b := colorful.Hsl(hue, 0.8, 0.6).Clamped().RGB255()
		c := RGB{r, g, b}.Color(0.4 + p.depth*0.5)
		p.node = NewCircle("loader-particle", p.size/2, SolidPaint(c))
		l.layer.AddChild(p.node)
		l.particles[i] = p
	}

	l.label = newDebugLabel("loader-text", loaderLabel)
	l.layer.AddChild(l.label)
	l.layer.AddChild(l.pulse)

	l.barTrack = NewRect("loader-progress-track", progressBarWidth, progressBarHeight, SolidPaint(Color{1, 1, 1, 0.2}))
	l.bar = NewRect("loader-progress", 0, progressBarHeight, SolidPaint(Color{1, 1, 1, 0.9}))
	l.layer.AddChild(l.barTrack)
	l.layer.AddChild(l.bar)
	l.layout()
	parent.AddChild(l.layer)
}

func (l *LoaderSequencer) layout() {
	cx, cy := l.width/2, l.height/2
	l.backdrop.SetSize(l.width, l.height)
	l.label.SetPosition(cx-l.label.Width/2, cy-l.label.Height/2)
	if l.simple {
		return
	}
	l.pulse.SetPosition(cx, cy)
	l.barTrack.SetPosition(cx-progressBarWidth/2, l.height*0.7)
	l.bar.SetPosition(cx-progressBarWidth/2, l.height*0.7)
	if l.flourish != nil {
		l.flourish.SetPosition(cx, cy)
	}
	l.placeParticles()
}

// Start begins the sequence: the first tick runs at once, later ones every
// Interval, and completion is scheduled Duration from now.
func (l *LoaderSequencer) Start() {
	if l.state != loaderIdle {
		return
	}
	l.state = loaderRunning
	if l.simple {
		l.timers = append(l.timers, l.sched.After(l.cfg.Duration, l.guard(l.complete)))
		return
	}
	l.guard(l.tick)()
	if l.state != loaderRunning {
		return
	}
	if float64(l.frameCount) < l.totalFrames {
		l.tickTimer = l.sched.Every(l.cfg.Interval, l.guard(l.tick))
		l.timers = append(l.timers, l.tickTimer)
	}
	l.timers = append(l.timers, l.sched.After(l.cfg.Duration, l.guard(l.complete)))
}

// guard wraps a timer callback so a panic inside it degrades to the
// fallback instead of escaping into the scheduler.
func (l *LoaderSequencer) guard(fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				l.Fallback(fmt.Errorf("%w: %v", ErrLoaderFailed, r))
			}
		}()
		fn()
	}
}

// tick advances the orbit animation and the progress bar by one frame.
func (l *LoaderSequencer) tick() {
	if l.state != loaderRunning {
		return
	}
	for i := range l.particles {
		l.particles[i].angle += l.particles[i].speed * 0.02
	}
	l.frameCount++
	l.progress = math.Min(100, float64(l.frameCount)/l.totalFrames*100)
	l.placeParticles()
	l.bar.SetSize(l.progress/100*progressBarWidth, progressBarHeight)
	l.pulse.SetAlpha(0.6 + 0.4*math.Sin(float64(l.frameCount)*0.2))

	if float64(l.frameCount) >= l.totalFrames && l.tickTimer != 0 {
		l.sched.Cancel(l.tickTimer)
		l.tickTimer = 0
	}
}

func (l *LoaderSequencer) placeParticles() {
	pulse := 1 + 0.2*math.Sin(l.progress*0.1)
	for i := range l.particles {
		p := &l.particles[i]
		orbit := 20 * p.depth
		x := p.baseX + math.Cos(p.angle)*orbit
		y := p.baseY + math.Sin(p.angle)*orbit
		s := (0.6 + p.depth*0.8) * pulse
		p.node.X = x / 100 * l.width
		p.node.Y = y / 100 * l.height
		p.node.ScaleX, p.node.ScaleY = s, s
		p.node.MarkDirty()
	}
}

// complete plays the flourish and fades the loading layer out.
func (l *LoaderSequencer) complete() {
	if l.state != loaderRunning {
		return
	}
	l.state = loaderCompleting
	if l.tickTimer != 0 {
		l.sched.Cancel(l.tickTimer)
		l.tickTimer = 0
	}
	if !l.simple {
		l.burst()
	}

	fade := TweenAlpha(l.layer, 0, float32(l.cfg.FadeOut.Seconds()), ease.OutQuad)
	l.tweens = append(l.tweens, fade)
	l.timers = append(l.timers, l.sched.After(l.cfg.FadeOut, l.guard(l.reveal)))
}

// burst fires the completion flourish and the pulse ripples.
func (l *LoaderSequencer) burst() {
	l.flourish = NewParticles("loader-flourish", EmitterConfig{
		MaxParticles: 64,
		Lifetime:     Range{0.4, 0.8},
		Speed:        Range{80, 220},
		Angle:        Range{0, 2 * math.Pi},
		Size:         4,
		StartScale:   Range{1, 1.5},
		EndScale:     Range{0, 0.2},
		StartAlpha:   Range{0.9, 1},
		EndAlpha:     Range{0, 0},
		StartColor:   Color{0.8, 0.85, 1, 1},
		EndColor:     Color{0.6, 0.4, 1, 1},
		BlendMode:    BlendAdd,
		Rand:         l.rng,
	})
	l.flourish.SetPosition(l.width/2, l.height/2)
	l.layer.AddChild(l.flourish)
	l.flourish.Emitter.Burst(48)

	for i := 0; i < 3; i++ {
		l.timers = append(l.timers, l.sched.After(time.Duration(i)*150*time.Millisecond, l.guard(l.ripple)))
	}
}

func (l *LoaderSequencer) ripple() {
	if l.state != loaderCompleting {
		return
	}
	ring := NewCircle("loader-ripple", 10, SolidPaint(Color{1, 1, 1, 0.4}))
	ring.SetPosition(l.width/2, l.height/2)
	l.layer.AddChild(ring)
	grow := TweenScale(ring, 20, 20, 0.8, ease.OutCubic)
	fade := TweenAlpha(ring, 0, 0.8, ease.OutCubic)
	l.tweens = append(l.tweens, grow, fade)
}

// reveal shows the content and tears the loading screen down.
func (l *LoaderSequencer) reveal() {
	if l.state != loaderCompleting {
		return
	}
	l.release()
	l.bus.PublishLoadingComplete()
}

// Fallback abandons the animation: the loading layer is removed, content
// is shown and completion is published. It is safe to call at any point
// and more than once; completion is published only once.
func (l *LoaderSequencer) Fallback(err error) {
	if l.state == loaderDone {
		return
	}
	if err != nil && l.err == nil {
		l.err = err
	}
	l.release()
	l.bus.PublishLoadingComplete()
}

// Skip ends the loading screen immediately.
func (l *LoaderSequencer) Skip() {
	l.Fallback(nil)
}

func (l *LoaderSequencer) release() {
	l.state = loaderDone
	for _, id := range l.timers {
		l.sched.Cancel(id)
	}
	l.timers = nil
	l.tickTimer = 0
	l.tweens = nil
	if l.layer != nil {
		l.layer.Dispose()
		l.layer = nil
	}
	l.particles = nil
	l.flourish = nil
	l.label = nil
	if l.content != nil {
		l.content.Visible = true
	}
}

// Tick advances the flourish tweens by dt. The orbit itself runs on the
// scheduler.
func (l *LoaderSequencer) Tick(dt time.Duration) {
	if l.state != loaderCompleting {
		return
	}
	for _, tw := range l.tweens {
		tw.Update(float32(dt.Seconds()))
	}
}

// Resize lays the loading screen out for a new viewport.
func (l *LoaderSequencer) Resize(width, height float64) {
	l.width, l.height = width, height
	if l.layer != nil {
		l.layout()
	}
}

// Progress returns the progress bar value in percent.
func (l *LoaderSequencer) Progress() float64 {
	return l.progress
}

// Frames returns the number of animation ticks run so far.
func (l *LoaderSequencer) Frames() int {
	return l.frameCount
}

// Done reports whether the loading screen is gone.
func (l *LoaderSequencer) Done() bool {
	return l.state == loaderDone
}

// Err returns the error that caused a fallback, if any.
func (l *LoaderSequencer) Err() error {
	return l.err
}
