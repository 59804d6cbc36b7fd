package tidepool

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously. Create one via
// the convenience constructors (TweenAlpha, TweenPosition, TweenScale,
// TweenColor, TweenValue) and call Update(dt) each frame. When the group
// targets a node it marks the node dirty after every write, and it stops
// immediately once that node is disposed.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	dur    float32
	Done   bool

	// OnComplete, when set, runs once on the Update that finishes the group.
	OnComplete func()
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.Done && g.OnComplete != nil {
		fn := g.OnComplete
		g.OnComplete = nil
		fn()
	}
}

// Finish jumps every field to its end value and marks the group done. The
// completion callback is not run.
func (g *TweenGroup) Finish() {
	if g.Done {
		return
	}
	g.Done = true
	g.OnComplete = nil
	if g.target != nil && g.target.IsDisposed() {
		return
	}
	for i := 0; i < g.count; i++ {
		val, _ := g.tweens[i].Set(g.dur)
		*g.fields[i] = float64(val)
	}
	if g.target != nil {
		g.target.MarkDirty()
	}
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, dur: duration}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, dur: duration}
	g.tweens[0] = gween.New(float32(node.ScaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.ScaleY), float32(toSY), duration, fn)
	g.fields[0] = &node.ScaleX
	g.fields[1] = &node.ScaleY
	return g
}

// TweenColor animates the node's solid fill color. Gradient fills are left
// untouched; the tween writes to Fill.Color only.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: node, dur: duration}
	c := &node.Fill.Color
	g.tweens[0] = gween.New(float32(c.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(c.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(c.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(c.A), float32(to.A), duration, fn)
	g.fields[0] = &c.R
	g.fields[1] = &c.G
	g.fields[2] = &c.B
	g.fields[3] = &c.A
	return g
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node, dur: duration}
	g.tweens[0] = gween.New(float32(node.Alpha), float32(to), duration, fn)
	g.fields[0] = &node.Alpha
	return g
}

// TweenValue animates an arbitrary float64 that is not a node field.
func TweenValue(v *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, dur: duration}
	g.tweens[0] = gween.New(float32(*v), float32(to), duration, fn)
	g.fields[0] = v
	return g
}
