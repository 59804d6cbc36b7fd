package tidepool

import (
	"math"
	"math/rand/v2"
)

// FishKind selects a fish silhouette.
type FishKind uint8

const (
	FishNormal FishKind = iota
	FishLong
	FishRound
)

const (
	repelRadius = 20.0 // percent units
	repelScale  = 0.05
	wrapMargin  = 10.0
)

// FishAgent is one swimming decoration. X and Y are percentages of the
// viewport; Size is in pixels before depth scaling.
type FishAgent struct {
	X, Y         float64
	Size         float64
	Speed        float64
	Direction    float64 // +1 swims right, -1 left
	Depth        float64 // 0 near the surface, 1 deep
	Wobble       float64
	WobbleSpeed  float64
	WobbleAmount float64
	Kind         FishKind
	ColorIndex   int
}

func randomFish(rng *rand.Rand, paletteSize int) FishAgent {
	dir := 1.0
	if rng.Float64() <= 0.5 {
		dir = -1
	}
	idx := 0
	if paletteSize > 0 {
		idx = rng.IntN(paletteSize)
	}
	return FishAgent{
		X:            rng.Float64() * 100,
		Y:            30 + rng.Float64()*50,
		Size:         10 + rng.Float64()*30,
		Speed:        0.02 + rng.Float64()*0.08,
		Direction:    dir,
		Depth:        rng.Float64(),
		Wobble:       rng.Float64() * 2 * math.Pi,
		WobbleSpeed:  0.05 + rng.Float64()*0.1,
		WobbleAmount: 0.5 + rng.Float64()*2,
		Kind:         FishKind(rng.IntN(3)),
		ColorIndex:   idx,
	}
}

func (f *FishAgent) alpha() float64 {
	return 0.2 + f.Depth*0.3
}

// fishPath builds the silhouette of kind for a fish of the given size,
// centered on the origin and facing +x.
func fishPath(kind FishKind, size float64) *Path {
	s := size / 2
	p := NewPath()
	switch kind {
	case FishLong:
		p.MoveTo(-s, 0).
			CubicTo(-s*0.7, -s*0.5, -s*0.3, -s*0.8, 0, 0).
			CubicTo(s*0.5, s*0.3, s*0.8, -s*0.2, s, 0).
			CubicTo(s*0.8, s*0.5, s*0.3, s, 0, s*0.5).
			CubicTo(-s*0.5, s, -s*0.8, s*0.5, -s, 0).
			Close()
	case FishRound:
		p.MoveTo(-s*0.8, 0).
			CubicTo(-s*0.8, -s*0.8, s*0.8, -s*0.8, s*0.8, 0).
			CubicTo(s*0.8, s*0.8, -s*0.8, s*0.8, -s*0.8, 0).
			Close()
		p.CircleDir(s*0.6, -s*0.2, s*0.15, CounterClockwise)
	default:
		p.MoveTo(-s, 0).LineTo(-s*0.3, -s*0.5).LineTo(s*0.7, 0).LineTo(-s*0.3, s*0.5).Close()
		p.MoveTo(s*0.7, 0).LineTo(s, -s*0.5).LineTo(s, s*0.5).Close()
	}
	return p
}

// WaveSource is the read-only view of the wave field the swarm couples to.
type WaveSource interface {
	// Nearest returns the layer whose baseline is closest to yPct and the
	// distance in percent, or -1.
	Nearest(yPct float64) (int, float64)
	// SurfaceAt returns layer i's displacement at xPct.
	SurfaceAt(i int, xPct float64) float64
}

// FishSwarm animates a fixed population of fish.
type FishSwarm struct {
	group  *Node
	agents []FishAgent
	nodes  []*Node

	waves   WaveSource
	palette []RGB
	count   int
	rng     *rand.Rand

	width, height float64
}

// NewFishSwarm creates count fish under parent colored from palette. waves
// may be nil, in which case the fish ignore the surface.
func NewFishSwarm(parent *Node, waves WaveSource, palette []RGB, count int, rng *rand.Rand, width, height float64) *FishSwarm {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f := &FishSwarm{
		group:   NewGroup("fish"),
		waves:   waves,
		palette: append([]RGB(nil), palette...),
		count:   count,
		rng:     rng,
		width:   width,
		height:  height,
	}
	f.group.ZIndex = layerFish
	parent.AddChild(f.group)
	f.build()
	return f
}

func (f *FishSwarm) build() {
	f.agents = make([]FishAgent, f.count)
	f.nodes = make([]*Node, f.count)
	for i := range f.agents {
		a := randomFish(f.rng, len(f.palette))
		n := NewPathNode("fish", fishPath(a.Kind, a.Size), SolidPaint(f.colorFor(&a)))
		n.Filters = []Filter{NewGlowFilter(2, Color{})}
		f.group.AddChild(n)
		f.agents[i], f.nodes[i] = a, n
		f.place(i, 0, 0)
	}
}

func (f *FishSwarm) colorFor(a *FishAgent) Color {
	if len(f.palette) == 0 {
		return ColorWhite.WithAlpha(a.alpha())
	}
	return f.palette[a.ColorIndex%len(f.palette)].Color(a.alpha())
}

// SetWaves attaches the wave field the fish couple to.
func (f *FishSwarm) SetWaves(w WaveSource) {
	f.waves = w
}

// Regenerate replaces the whole population.
func (f *FishSwarm) Regenerate() {
	for _, n := range f.nodes {
		n.Dispose()
	}
	f.build()
}

// Resize records the new viewport. Positions are relative so the fish
// keep swimming where they were.
func (f *FishSwarm) Resize(width, height float64) {
	f.width, f.height = width, height
	for i := range f.agents {
		f.place(i, 0, 0)
	}
}

// Agents returns a copy of the population.
func (f *FishSwarm) Agents() []FishAgent {
	return append([]FishAgent(nil), f.agents...)
}

// Tick swims every fish one step: horizontal drift with wraparound, wobble
// and surface coupling.
func (f *FishSwarm) Tick() {
	for i := range f.agents {
		a := &f.agents[i]
		a.X += a.Speed * a.Direction
		if a.X > 100+wrapMargin && a.Direction > 0 {
			a.X = -wrapMargin
		} else if a.X < -wrapMargin && a.Direction < 0 {
			a.X = 100 + wrapMargin
		}
		a.Wobble += a.WobbleSpeed
		wobbleY := math.Sin(a.Wobble) * a.WobbleAmount
		f.place(i, wobbleY, f.surface(a))
	}
}

// surface returns the wave displacement felt by a, in percent units.
// Deeper fish feel less of it.
func (f *FishSwarm) surface(a *FishAgent) float64 {
	if f.waves == nil {
		return 0
	}
	i, dist := f.waves.Nearest(a.Y)
	if i < 0 {
		return 0
	}
	influence := math.Max(0, 1-dist/20) * (1 - a.Depth*0.7)
	return f.waves.SurfaceAt(i, a.X) * influence * 0.5
}

// place positions node i. The horizontal flip is applied before the wobble
// rotation, so a left-facing fish rotates the other way.
func (f *FishSwarm) place(i int, wobbleY, wave float64) {
	a := &f.agents[i]
	n := f.nodes[i]
	scale := 0.3 + a.Depth*0.7
	n.X = a.X / 100 * f.width
	n.Y = (a.Y + wobbleY + wave) / 100 * f.height
	n.ScaleX = a.Direction * scale
	n.ScaleY = scale
	n.Rotation = a.Direction * wobbleY * 5 * math.Pi / 180
	n.MarkDirty()
}

// OnPointerMoved pushes fish within reach of the pointer away from it, then
// keeps them inside the swimming band. x and y are viewport fractions.
func (f *FishSwarm) OnPointerMoved(x, y float64) {
	for i := range f.agents {
		a := &f.agents[i]
		dx := x*100 - a.X
		dy := y*100 - a.Y
		d := math.Hypot(dx, dy)
		if d >= repelRadius {
			continue
		}
		angle := math.Atan2(dy, dx)
		force := (repelRadius - d) * repelScale
		a.X -= math.Cos(angle) * force
		a.Y -= math.Sin(angle) * force
		a.X = math.Max(0, math.Min(100, a.X))
		a.Y = math.Max(20, math.Min(80, a.Y))
	}
}

// OnPaletteChanged recolors every fish from its fixed palette index.
func (f *FishSwarm) OnPaletteChanged(colors []RGB) {
	f.palette = colors
	for i := range f.agents {
		f.nodes[i].SetFillColor(f.colorFor(&f.agents[i]))
	}
}
