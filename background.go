package tidepool

import "math"

// Background owns the full-screen gradient and the pointer highlight on
// top of it.
type Background struct {
	layer     *Node
	rect      *Node
	highlight *Node
	grad      *Gradient
	glow      *Gradient

	bus    *Bus
	preset GradientPreset
	colors []RGB // live stop colors, drifted by the pulse
	style  ControlStyle

	pulse  float64
	width  float64
	height float64
}

// NewBackground creates the background layer under parent, sized to the
// viewport. Nothing is drawn until the first Apply.
func NewBackground(parent *Node, bus *Bus, width, height float64) *Background {
	b := &Background{bus: bus, width: width, height: height}
	b.layer = NewGroup("background")
	b.layer.ZIndex = layerBackground

	b.grad = NewLinearGradient(0, 0, 1, 0)
	b.rect = NewRect("background-gradient", width, height, GradientPaint(b.grad))

	b.glow = NewRadialGradient(0.5, 0.5, 0.3,
		GradientStop{0, Color{1, 1, 1, 0.3}},
		GradientStop{1, Color{1, 1, 1, 0}},
	)
	b.highlight = NewRect("background-highlight", width, height, GradientPaint(b.glow))
	b.highlight.Visible = false

	b.layer.AddChild(b.rect)
	b.layer.AddChild(b.highlight)
	parent.AddChild(b.layer)
	return b
}

// Apply replaces the gradient with p, recomputes the control contrast style
// and publishes the palette.
func (b *Background) Apply(p GradientPreset) {
	b.preset = p.clone()
	x1, y1, x2, y2 := p.Endpoints()
	b.grad.SetLine(x1/100, y1/100, x2/100, y2/100)
	b.grad.SetStops(p.gradientStops())
	b.colors = p.Colors()
	b.style = ContrastFor(b.colors)
	b.bus.PublishPalette(b.colors)
}

// Preset returns the most recently applied preset.
func (b *Background) Preset() GradientPreset {
	return b.preset.clone()
}

// Style returns the control style computed by the last Apply.
func (b *Background) Style() ControlStyle {
	return b.style
}

// Gradient returns the live background gradient. Callers must not keep it
// past the next Apply.
func (b *Background) Gradient() *Gradient {
	return b.grad
}

// SetOpacity sets the opacity of the whole background layer.
func (b *Background) SetOpacity(a float64) {
	b.layer.SetAlpha(a)
}

// Opacity returns the background layer opacity.
func (b *Background) Opacity() float64 {
	return b.layer.Alpha
}

// Resize fits the background to a new viewport.
func (b *Background) Resize(width, height float64) {
	b.width, b.height = width, height
	b.rect.SetSize(width, height)
	b.highlight.SetSize(width, height)
}

// OnPointerMoved moves the highlight to the pointer. x and y are viewport
// fractions.
func (b *Background) OnPointerMoved(x, y float64) {
	b.glow.CX, b.glow.CY = x, y
	b.highlight.Visible = true
}

// Tick advances the idle pulse: the middle stop sways around 50% and the
// interior stop colors drift in hue. The drift accumulates on the live
// colors; Apply resets it.
func (b *Background) Tick() {
	stops := b.grad.Stops
	if len(stops) < 3 {
		return
	}
	b.pulse += 0.005
	stops[1].Offset = (50 + 5*math.Sin(b.pulse)) / 100
	for i := 1; i < len(stops)-1; i++ {
		b.colors[i] = ShiftHue(b.colors[i], math.Sin(b.pulse+float64(i)*0.5)*0.02)
		stops[i].Color = b.colors[i].Color(stops[i].Color.A)
	}
}
