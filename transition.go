package tidepool

import (
	"math/rand/v2"
	"time"
)

// TransitionState is a snapshot of the engine's selection counters and of
// the session in flight, if any.
type TransitionState struct {
	GradientIndex int
	EffectIndex   int
	Active        bool
	SessionID     uint64
	Effect        TransitionEffect
}

// transitionSession is one in-flight transition. Every node, timer, tween
// and cleanup it creates is recorded here and released by
// TransitionEngine.finish, which is the only way a session ends.
type transitionSession struct {
	id     uint64
	effect TransitionEffect
	target GradientPreset

	nodes    []*Node
	timers   []TimerID
	tweens   []*TweenGroup
	cleanups []func()

	// step advances the effect by elapsedMs and reports whether the mask is
	// fully grown.
	step  func(elapsedMs float64) bool
	grace time.Duration

	completing bool
	done       bool
}

// TransitionEngine animates the background from one gradient preset to the
// next with a rotating set of effects. At most one session runs at a time.
type TransitionEngine struct {
	layer *Node
	bg    *Background
	sched *Scheduler
	rng   *rand.Rand

	presets []GradientPreset
	effects []TransitionEffect

	gradientIndex int
	effectIndex   int

	session *transitionSession
	nextID  uint64

	// fadeIn restores the background after a fade session swapped it.
	fadeIn    *TweenGroup
	fadeLevel float64

	width, height float64

	// OnStart, when set, is called after a session has been started.
	OnStart func(target GradientPreset, effect TransitionEffect)
	// OnFinish, when set, is called after a session released its resources,
	// whether it completed or was cut short.
	OnFinish func(target GradientPreset, effect TransitionEffect)
}

// NewTransitionEngine creates an engine that draws its temporary overlays
// into layer and swaps gradients on bg. The engine assumes preset 0 is the
// one currently shown.
func NewTransitionEngine(layer *Node, bg *Background, sched *Scheduler, rng *rand.Rand, width, height float64) *TransitionEngine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &TransitionEngine{
		layer:   layer,
		bg:      bg,
		sched:   sched,
		rng:     rng,
		presets: Presets(),
		effects: Effects(),
		width:   width,
		height:  height,
	}
}

// RequestChange ends any active session at its terminal state, advances the
// gradient and effect counters independently and starts the next session.
func (e *TransitionEngine) RequestChange() {
	e.finish()
	e.gradientIndex = (e.gradientIndex + 1) % len(e.presets)
	e.effectIndex = (e.effectIndex + 1) % len(e.effects)
	e.Play(e.effects[e.effectIndex], e.presets[e.gradientIndex])
}

// Play runs effect towards target without touching the selection counters.
// An active session is finished first.
func (e *TransitionEngine) Play(effect TransitionEffect, target GradientPreset) {
	e.finish()
	e.settleFade()
	e.nextID++
	s := &transitionSession{
		id:     e.nextID,
		effect: effect,
		target: target.clone(),
		grace:  50 * time.Millisecond,
	}
	e.session = s

	switch effect {
	case EffectFade:
		e.startFade(s)
	case EffectRadialExpand:
		e.startRadialExpand(s)
	case EffectSweep:
		e.startSweep(s)
	case EffectBlinds:
		e.startBlinds(s)
	case EffectPixelate:
		e.startPixelate(s)
	case EffectRipple:
		e.startRipple(s)
	case EffectSpiral:
		e.startSpiral(s)
	default:
		// Unknown effects swap immediately.
		e.finish()
		return
	}

	if e.OnStart != nil {
		e.OnStart(s.target, effect)
	}
}

// Tick advances the active session and any trailing fade-in by dt.
func (e *TransitionEngine) Tick(dt time.Duration) {
	if e.fadeIn != nil {
		e.fadeIn.Update(float32(dt.Seconds()))
		e.bg.SetOpacity(e.fadeLevel)
		if e.fadeIn.Done {
			e.fadeIn = nil
		}
	}
	s := e.session
	if s == nil || s.done {
		return
	}
	for _, tw := range s.tweens {
		tw.Update(float32(dt.Seconds()))
	}
	if s.completing || s.step == nil {
		return
	}
	if !s.step(float64(dt) / float64(time.Millisecond)) {
		return
	}
	s.completing = true
	if s.grace <= 0 {
		e.finish()
		return
	}
	id := s.id
	e.after(s, s.grace, func() {
		if e.session == nil || e.session.id != id {
			return
		}
		e.finish()
	})
}

// Finish ends the active session immediately, applying its target.
func (e *TransitionEngine) Finish() {
	e.finish()
}

// Active reports whether a session is in flight.
func (e *TransitionEngine) Active() bool {
	return e.session != nil
}

// State returns a snapshot of the engine.
func (e *TransitionEngine) State() TransitionState {
	st := TransitionState{GradientIndex: e.gradientIndex, EffectIndex: e.effectIndex}
	if e.session != nil {
		st.Active = true
		st.SessionID = e.session.id
		st.Effect = e.session.effect
	}
	return st
}

// Current returns the preset selected by the gradient counter.
func (e *TransitionEngine) Current() GradientPreset {
	return e.presets[e.gradientIndex].clone()
}

// Resize records the viewport used by sessions started afterwards. A
// session in flight keeps the geometry it was started with.
func (e *TransitionEngine) Resize(width, height float64) {
	e.width, e.height = width, height
}

// Fading reports whether the background is still fading back in after a
// fade session.
func (e *TransitionEngine) Fading() bool {
	return e.fadeIn != nil
}

// settleFade jumps a trailing fade-in to full opacity.
func (e *TransitionEngine) settleFade() {
	if e.fadeIn == nil {
		return
	}
	e.fadeIn = nil
	e.bg.SetOpacity(1)
}

func (e *TransitionEngine) finish() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil
	s.done = true
	for _, id := range s.timers {
		e.sched.Cancel(id)
	}
	for _, tw := range s.tweens {
		tw.Finish()
	}
	for _, fn := range s.cleanups {
		fn()
	}
	for _, n := range s.nodes {
		n.Dispose()
	}
	s.timers, s.tweens, s.cleanups, s.nodes = nil, nil, nil, nil
	e.bg.Apply(s.target)
	if e.OnFinish != nil {
		e.OnFinish(s.target, s.effect)
	}
}

// own adds n to the transition layer on behalf of s.
func (e *TransitionEngine) own(s *transitionSession, n *Node) *Node {
	e.layer.AddChild(n)
	s.nodes = append(s.nodes, n)
	return n
}

func (e *TransitionEngine) after(s *transitionSession, d time.Duration, fn func()) {
	s.timers = append(s.timers, e.sched.After(d, fn))
}

// overlay creates a full-viewport rect painted with the target gradient.
func (e *TransitionEngine) overlay(s *transitionSession, name string) *Node {
	return e.own(s, NewRect(name, e.width, e.height, GradientPaint(presetGradient(s.target))))
}

// presetGradient builds a bounding-box linear gradient for p.
func presetGradient(p GradientPreset) *Gradient {
	x1, y1, x2, y2 := p.Endpoints()
	return NewLinearGradient(x1/100, y1/100, x2/100, y2/100, p.gradientStops()...)
}
