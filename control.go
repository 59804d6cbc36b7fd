package tidepool

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	controlLabel  = "Change Gradient"
	controlWidth  = 160.0
	controlHeight = 40.0
	controlMargin = 30.0
)

// Control is the "Change Gradient" button. It stays hidden and inert until
// Activate and restyles itself from every published palette.
type Control struct {
	group  *Node
	button *Node
	label  *Node
	glow   *GlowFilter
	style  ControlStyle
	active bool

	width, height float64
}

// NewControl creates the button under parent. onPress runs on every click
// once the control is active.
func NewControl(parent *Node, onPress func(), width, height float64) *Control {
	c := &Control{width: width, height: height}
	c.group = NewGroup("controls")
	c.group.ZIndex = layerControls
	c.group.Visible = false
	c.group.Interactable = true

	c.glow = NewGlowFilter(4, lightControl.Glow)
	c.button = NewRect("change-gradient", controlWidth, controlHeight, SolidPaint(lightControl.Background))
	c.button.Filters = []Filter{c.glow}
	c.button.HitShape = HitRect{Width: controlWidth, Height: controlHeight}
	c.button.OnClick = func(ClickContext) {
		if c.active && onPress != nil {
			onPress()
		}
	}

	c.label = newDebugLabel("change-gradient-label", controlLabel)
	c.label.SetPosition((controlWidth-c.label.Width)/2, (controlHeight-c.label.Height)/2)

	c.group.AddChild(c.button)
	c.group.AddChild(c.label)
	parent.AddChild(c.group)
	c.applyStyle(lightControl)
	c.layout()
	return c
}

// newDebugLabel renders a single line of text with the debug font into an
// image node sized to fit it.
func newDebugLabel(name, text string) *Node {
	img := ebiten.NewImage(max(len(text), 1)*debugGlyphW, debugGlyphH)
	ebitenutil.DebugPrint(img, text)
	return NewImage(name, img)
}

// Activate shows the control and lets it take clicks.
func (c *Control) Activate() {
	c.active = true
	c.group.Visible = true
	c.button.Interactable = true
}

// Active reports whether the control has been activated.
func (c *Control) Active() bool {
	return c.active
}

// Button returns the clickable node.
func (c *Control) Button() *Node {
	return c.button
}

// Style returns the style currently applied.
func (c *Control) Style() ControlStyle {
	return c.style
}

// OnPaletteChanged restyles the control to contrast with colors.
func (c *Control) OnPaletteChanged(colors []RGB) {
	c.applyStyle(ContrastFor(colors))
}

func (c *Control) applyStyle(st ControlStyle) {
	c.style = st
	c.button.SetFillColor(st.Background)
	c.label.SetFillColor(st.Text)
	c.glow.Color = st.Glow
}

// Resize keeps the control anchored to the bottom center.
func (c *Control) Resize(width, height float64) {
	c.width, c.height = width, height
	c.layout()
}

func (c *Control) layout() {
	c.group.SetPosition((c.width-controlWidth)/2, c.height-controlMargin-controlHeight)
}
