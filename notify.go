package tidepool

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween/ease"
)

const (
	toastHold       = 2 * time.Second
	toastFade       = 0.5 // seconds
	toastPadX       = 20.0
	toastPadY       = 10.0
	toastBottom     = 80.0
	debugGlyphW     = 6
	debugGlyphH     = 16
	toastMaxColumns = 64
)

// Notifier shows a short text toast near the bottom of the screen.
type Notifier struct {
	group *Node
	panel *Node
	label *Node
	img   *ebiten.Image

	sched *Scheduler
	hide  TimerID
	fade  *TweenGroup
	text  string

	width, height float64
}

// NewNotifier creates a hidden toast under parent.
func NewNotifier(parent *Node, sched *Scheduler, width, height float64) *Notifier {
	n := &Notifier{sched: sched, width: width, height: height}
	n.group = NewGroup("toast")
	n.group.ZIndex = layerControls
	n.group.Alpha = 0
	n.group.Visible = false
	n.panel = NewRect("toast-panel", 0, 0, SolidPaint(Color{0, 0, 0, 0.7}))
	n.img = ebiten.NewImage(toastMaxColumns*debugGlyphW, debugGlyphH)
	n.label = NewImage("toast-label", n.img)
	n.label.SetPosition(toastPadX, toastPadY)
	n.group.AddChild(n.panel)
	n.group.AddChild(n.label)
	parent.AddChild(n.group)
	return n
}

// Show displays text, fading in, holding for two seconds and fading out.
// Showing again restarts the hold.
func (n *Notifier) Show(text string) {
	if len(text) > toastMaxColumns {
		text = text[:toastMaxColumns]
	}
	n.text = text
	n.img.Clear()
	ebitenutil.DebugPrint(n.img, text)
	n.panel.SetSize(float64(len(text)*debugGlyphW)+2*toastPadX, debugGlyphH+2*toastPadY)
	n.layout()

	n.group.Visible = true
	n.fade = TweenAlpha(n.group, 1, toastFade, ease.Linear)
	if n.hide != 0 {
		n.sched.Cancel(n.hide)
	}
	n.hide = n.sched.After(toastHold, func() {
		n.hide = 0
		n.fade = TweenAlpha(n.group, 0, toastFade, ease.Linear)
		n.fade.OnComplete = func() { n.group.Visible = false }
	})
}

// Tick advances the fade.
func (n *Notifier) Tick(dt time.Duration) {
	if n.fade != nil {
		n.fade.Update(float32(dt.Seconds()))
		if n.fade.Done {
			n.fade = nil
		}
	}
}

// Text returns the last text shown.
func (n *Notifier) Text() string {
	return n.text
}

// Visible reports whether the toast is on screen.
func (n *Notifier) Visible() bool {
	return n.group.Visible
}

// Resize re-centers the toast for a new viewport.
func (n *Notifier) Resize(width, height float64) {
	n.width, n.height = width, height
	n.layout()
}

func (n *Notifier) layout() {
	n.group.SetPosition((n.width-n.panel.Width)/2, n.height-toastBottom-n.panel.Height)
}
