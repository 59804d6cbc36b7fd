package tidepool

import (
	"math"
	"math/rand/v2"
)

// WaveLayer holds the parameters of one sine-wave silhouette. BaseY is a
// percentage of the viewport height; Amplitude is in pixels and Frequency in
// radians per pixel.
type WaveLayer struct {
	Amplitude     float64
	BaseAmplitude float64
	Frequency     float64
	PhaseSpeed    float64
	BaseY         float64
	Phase         float64
	SpeedModifier float64
	Opacity       float64
	Color         RGB
}

// newWaveLayer derives the parameters of layer i: deeper layers are fainter,
// flatter, slower, tighter and lower on screen.
func newWaveLayer(i int, rng *rand.Rand) WaveLayer {
	c := RGB{255, 255, 255}
	if i%2 == 1 {
		c = RGB{200, 220, 255}
	}
	amp := 20 - float64(i)*3
	return WaveLayer{
		Amplitude:     amp,
		BaseAmplitude: amp,
		Frequency:     0.005 + float64(i)*0.002,
		PhaseSpeed:    0.03 - float64(i)*0.005,
		BaseY:         75 + float64(i)*8,
		Phase:         rng.Float64() * 2 * math.Pi,
		Opacity:       math.Max(0.02, 0.2-float64(i)*0.04),
		Color:         c,
	}
}

// Offset returns the layer's displacement from its baseline at horizontal
// pixel position x.
func (l WaveLayer) Offset(x, timeOffset float64) float64 {
	return l.Amplitude * math.Sin(l.Frequency*x+l.Phase+timeOffset)
}

// SamplePath returns the wave silhouette of l sampled at points+1 evenly
// spaced x positions from 0 to width inclusive. The result depends only on
// its arguments.
func SamplePath(l WaveLayer, points int, timeOffset, width, height float64) []Vec2 {
	if points < 1 {
		points = 1
	}
	out := make([]Vec2, points+1)
	base := l.BaseY / 100 * height
	for i := 0; i <= points; i++ {
		x := float64(i) * width / float64(points)
		out[i] = Vec2{x, base + l.Offset(x, timeOffset)}
	}
	return out
}

// WaveField animates a stack of wave layers filled down to the bottom of the
// viewport.
type WaveField struct {
	group  *Node
	layers []WaveLayer
	nodes  []*Node
	paths  []*Path

	count      int
	points     int
	timeOffset float64
	rng        *rand.Rand

	width, height float64
}

// NewWaveField creates count layers sampled at points segments under parent.
func NewWaveField(parent *Node, count, points int, rng *rand.Rand, width, height float64) *WaveField {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	w := &WaveField{
		group:  NewGroup("waves"),
		count:  count,
		points: points,
		rng:    rng,
		width:  width,
		height: height,
	}
	w.group.ZIndex = layerWaves
	parent.AddChild(w.group)
	w.build()
	return w
}

func (w *WaveField) build() {
	w.layers = make([]WaveLayer, w.count)
	w.nodes = make([]*Node, w.count)
	w.paths = make([]*Path, w.count)
	for i := range w.layers {
		l := newWaveLayer(i, w.rng)
		p := NewPath()
		n := NewPathNode("wave", p, SolidPaint(l.Color.Color(l.Opacity)))
		n.FillMode = FillStrip
		n.Filters = []Filter{NewBlurFilter(i + 1)}
		n.ZIndex = i
		w.group.AddChild(n)
		w.layers[i], w.paths[i], w.nodes[i] = l, p, n
		w.trace(i)
	}
}

// Regenerate discards every layer and its nodes and builds a fresh set with
// new random phases. The global drift is kept.
func (w *WaveField) Regenerate() {
	for _, n := range w.nodes {
		n.Dispose()
	}
	w.build()
}

// Resize sets the viewport and regenerates the layers.
func (w *WaveField) Resize(width, height float64) {
	w.width, w.height = width, height
	w.Regenerate()
}

// Tick advances the global drift and every layer's phase, then retraces
// the paths.
func (w *WaveField) Tick() {
	w.timeOffset += 0.02
	for i := range w.layers {
		l := &w.layers[i]
		l.Phase += l.PhaseSpeed + l.SpeedModifier
		w.trace(i)
	}
}

func (w *WaveField) trace(i int) {
	p := w.paths[i]
	p.Reset()
	p.MoveTo(0, w.height)
	for _, pt := range SamplePath(w.layers[i], w.points, w.timeOffset, w.width, w.height) {
		p.LineTo(pt.X, pt.Y)
	}
	p.LineTo(w.width, w.height)
	p.Close()
}

// OnPointerMoved raises layers near the pointer's height and biases every
// layer's phase speed by its horizontal position. x and y are viewport
// fractions. The bias is replaced on every move, never integrated.
func (w *WaveField) OnPointerMoved(x, y float64) {
	for i := range w.layers {
		l := &w.layers[i]
		effect := math.Max(0, 1-math.Abs(y-l.BaseY/100))
		l.Amplitude = l.BaseAmplitude * (1 + effect*0.5)
		l.SpeedModifier = (x - 0.5) * 0.05
	}
}

// Layers returns a copy of the current layer state.
func (w *WaveField) Layers() []WaveLayer {
	return append([]WaveLayer(nil), w.layers...)
}

// TimeOffset returns the global drift term.
func (w *WaveField) TimeOffset() float64 {
	return w.timeOffset
}

// Nearest returns the index of the layer whose baseline is closest to the
// height yPct (percent) and that distance, or -1 when there are no layers.
func (w *WaveField) Nearest(yPct float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, l := range w.layers {
		if d := math.Abs(yPct - l.BaseY); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// SurfaceAt returns layer i's displacement at horizontal position xPct
// (percent of the viewport width).
func (w *WaveField) SurfaceAt(i int, xPct float64) float64 {
	return w.layers[i].Offset(xPct/100*w.width, w.timeOffset)
}
