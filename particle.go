package tidepool

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state. Unexported; managed by ParticleEmitter.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64 // initial lifetime (for computing t)
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
	startR     float32
	startG     float32
	startB     float32
	endR       float32
	endG       float32
	endB       float32
	colorR     float32
	colorG     float32
	colorB     float32
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are silently dropped when full.
	MaxParticles int
	// EmitRate is the number of particles spawned per second while active.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial particle speeds in pixels per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// Size is the edge length in pixels of a particle quad at scale 1.
	Size float64
	// StartScale is the range of scale factors at birth, interpolated to EndScale over lifetime.
	StartScale Range
	// EndScale is the range of scale factors at death.
	EndScale Range
	// StartAlpha is the range of alpha values at birth, interpolated to EndAlpha over lifetime.
	StartAlpha Range
	// EndAlpha is the range of alpha values at death.
	EndAlpha Range
	// Gravity is the constant acceleration applied to all particles each frame.
	Gravity Vec2
	// StartColor is the tint at birth, interpolated to EndColor over lifetime.
	StartColor Color
	// EndColor is the tint at death.
	EndColor Color
	// BlendMode is the compositing operation for particle rendering.
	BlendMode BlendMode
	// Rand, when set, drives every randomized parameter. Nil uses the
	// package-level source.
	Rand *rand.Rand
}

// ParticleEmitter manages a pool of particles with CPU-based simulation.
type ParticleEmitter struct {
	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
}

// newParticleEmitter creates a ParticleEmitter with a preallocated pool.
func newParticleEmitter(cfg EmitterConfig) *ParticleEmitter {
	n := cfg.MaxParticles
	if n <= 0 {
		n = 128
	}
	if cfg.Size <= 0 {
		cfg.Size = 4
	}
	return &ParticleEmitter{
		config:    cfg,
		particles: make([]particle, n),
	}
}

// Start begins emitting particles.
func (e *ParticleEmitter) Start() {
	e.active = true
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.active = false
}

// Reset stops emitting and kills all alive particles.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
}

// Burst spawns up to count particles immediately, independent of EmitRate.
func (e *ParticleEmitter) Burst(count int) {
	for i := 0; i < count && e.alive < len(e.particles); i++ {
		e.spawnParticle()
	}
}

// IsActive reports whether the emitter is currently emitting new particles.
func (e *ParticleEmitter) IsActive() bool {
	return e.active
}

// AliveCount returns the number of alive particles.
func (e *ParticleEmitter) AliveCount() int {
	return e.alive
}

// Config returns a pointer to the emitter's config for live tuning.
func (e *ParticleEmitter) Config() *EmitterConfig {
	return &e.config
}

// update advances particle simulation by dt seconds.
func (e *ParticleEmitter) update(dt float64) {
	gx := e.config.Gravity.X * dt
	gy := e.config.Gravity.Y * dt

	// Update existing particles, swap-remove dead ones.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vx += gx
		p.vy += gy
		p.x += p.vx * dt
		p.y += p.vy * dt

		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)
		p.colorR = lerp32(p.startR, p.endR, t)
		p.colorG = lerp32(p.startG, p.endG, t)
		p.colorB = lerp32(p.startB, p.endB, t)

		i++
	}

	if e.active && e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawnParticle()
			}
		}
	}
}

// spawnParticle initializes the particle at slot e.alive and increments alive.
func (e *ParticleEmitter) spawnParticle() {
	p := &e.particles[e.alive]
	r := e.config.Rand

	angle := e.config.Angle.RandomFrom(r)
	speed := e.config.Speed.RandomFrom(r)
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed
	p.x = 0
	p.y = 0

	p.life = e.config.Lifetime.RandomFrom(r)
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(e.config.StartScale.RandomFrom(r))
	p.endScale = float32(e.config.EndScale.RandomFrom(r))
	p.scale = p.startScale

	p.startAlpha = float32(e.config.StartAlpha.RandomFrom(r))
	p.endAlpha = float32(e.config.EndAlpha.RandomFrom(r))
	p.alpha = p.startAlpha

	p.startR = float32(e.config.StartColor.R)
	p.startG = float32(e.config.StartColor.G)
	p.startB = float32(e.config.StartColor.B)
	p.endR = float32(e.config.EndColor.R)
	p.endG = float32(e.config.EndColor.G)
	p.endB = float32(e.config.EndColor.B)
	p.colorR = p.startR
	p.colorG = p.startG
	p.colorB = p.startB

	e.alive++
}

// localBounds returns the emitter-space bounds of all alive particles.
func (e *ParticleEmitter) localBounds() Rect {
	if e.alive == 0 {
		return Rect{}
	}
	var r Rect
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		half := float64(p.scale) * e.config.Size / 2
		pr := Rect{X: p.x - half, Y: p.y - half, Width: 2 * half, Height: 2 * half}
		if i == 0 {
			r = pr
		} else {
			r = rectUnion(r, pr)
		}
	}
	return r
}

// updateParticles walks the tree and advances every emitter by dt seconds.
func updateParticles(n *Node, dt float64) {
	if n.Type == NodeTypeParticles && n.Emitter != nil {
		n.Emitter.update(dt)
	}
	for _, child := range n.children {
		updateParticles(child, dt)
	}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerp32 linearly interpolates between a and b by t (float32).
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Random returns a random float64 in [Min, Max) from the package-level source.
func (r Range) Random() float64 {
	return r.RandomFrom(nil)
}

// RandomFrom returns a random float64 in [Min, Max) drawn from src, or from
// the package-level source when src is nil.
func (r Range) RandomFrom(src *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	var f float64
	if src != nil {
		f = src.Float64()
	} else {
		f = rand.Float64()
	}
	return r.Min + f*(r.Max-r.Min)
}
