package tidepool

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	doubleClickWindow   = 0.3 // seconds between the two clicks
	doubleClickDistance = 8.0 // pixels between the two clicks
)

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// --- Pointer state ---

type pointerState struct {
	down    bool
	lastX   float64
	lastY   float64
	moved   bool // lastX/lastY hold a real position
	hitNode *Node
	button  MouseButton
}

type clickRecord struct {
	node *Node
	x, y float64
	at   float64
	set  bool
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type clickHandler struct {
	id uint32
	fn func(ClickContext)
}

type handlerRegistry struct {
	pointerMove []pointerHandler
	click       []clickHandler
	doubleClick []clickHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerMove:
		h.reg.pointerMove = removePointerHandler(h.reg.pointerMove, h.id)
	case EventClick:
		h.reg.click = removeClickHandler(h.reg.click, h.id)
	case EventDoubleClick:
		h.reg.doubleClick = removeClickHandler(h.reg.doubleClick, h.id)
	}
}

func removePointerHandler(s []pointerHandler, id uint32) []pointerHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeClickHandler(s []clickHandler, id uint32) []clickHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = clickHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Scene-level event registration ---

// OnPointerMove registers a scene-level callback for pointer move events.
// It fires for every move, whether or not a node is under the pointer.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerMove = append(s.handlers.pointerMove, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerMove}
}

// OnClick registers a scene-level callback for click events.
func (s *Scene) OnClick(fn func(ClickContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventClick}
}

// OnDoubleClick registers a scene-level callback for double-click events.
func (s *Scene) OnDoubleClick(fn func(ClickContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.doubleClick = append(s.handlers.doubleClick, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDoubleClick}
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the node's own geometry. Groups with no
// HitShape are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	return shapeContainsLocal(n, lx, ly)
}

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending interactable nodes to buf. Skips Visible=false or
// Interactable=false subtrees.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}
	if n.HitShape != nil || n.Type != NodeTypeGroup {
		buf = append(buf, n)
	}
	for _, child := range sortedChildList(n) {
		buf = collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (x, y).
// Returns nil if nothing is hit.
func (s *Scene) hitTest(x, y float64) *Node {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.hitBuf = collectInteractable(s.root, s.hitBuf[:0])

	// Reverse painter order: topmost visual node first.
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		if singular(n.worldTransform) {
			continue
		}
		lx, ly := n.WorldToLocal(x, y)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// processHardwareInput reads the mouse, or the first active touch when the
// mouse is idle, and feeds the pointer state machine.
func (s *Scene) processHardwareInput() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}

	if !pressed {
		if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
			tx, ty := ebiten.TouchPosition(ids[0])
			x, y = float64(tx), float64(ty)
			pressed, button = true, MouseButtonLeft
		}
	}

	s.processPointer(x, y, pressed, button)
}

// processPointer runs the pointer state machine: moves fire pointer-move,
// a press then release over the same node fires click, and a second click
// close in time and space fires double-click.
func (s *Scene) processPointer(x, y float64, pressed bool, button MouseButton) {
	ps := &s.pointer

	if !ps.moved || x != ps.lastX || y != ps.lastY {
		ps.lastX, ps.lastY = x, y
		ps.moved = true
		s.firePointerMove(s.hitTest(x, y), x, y, button)
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.hitNode = s.hitTest(x, y)
	case !pressed && ps.down:
		target := s.hitTest(x, y)
		if ps.hitNode != nil && ps.hitNode == target {
			s.fireClick(target, x, y, ps.button)
		}
		ps.down = false
		ps.hitNode = nil
	}
}

// --- Event dispatch ---

func (s *Scene) firePointerMove(node *Node, x, y float64, button MouseButton) {
	ctx := PointerContext{Node: node, GlobalX: x, GlobalY: y, Button: button}
	if node != nil {
		ctx.LocalX, ctx.LocalY = node.WorldToLocal(x, y)
		ctx.UserData = node.UserData
	}
	for _, h := range s.handlers.pointerMove {
		h.fn(ctx)
	}
	if node != nil && node.OnPointerMove != nil {
		node.OnPointerMove(ctx)
	}
}

func (s *Scene) fireClick(node *Node, x, y float64, button MouseButton) {
	lx, ly := node.WorldToLocal(x, y)
	ctx := ClickContext{
		Node: node, UserData: node.UserData,
		GlobalX: x, GlobalY: y, LocalX: lx, LocalY: ly,
		Button: button,
	}
	for _, h := range s.handlers.click {
		h.fn(ctx)
	}
	if node.OnClick != nil {
		node.OnClick(ctx)
	}

	lc := &s.lastClick
	if lc.set && lc.node == node && s.elapsed-lc.at <= doubleClickWindow &&
		math.Hypot(x-lc.x, y-lc.y) <= doubleClickDistance {
		lc.set = false
		for _, h := range s.handlers.doubleClick {
			h.fn(ctx)
		}
		if node.OnDoubleClick != nil {
			node.OnDoubleClick(ctx)
		}
		return
	}
	*lc = clickRecord{node: node, x: x, y: y, at: s.elapsed, set: true}
}
