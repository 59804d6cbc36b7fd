package tidepool

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions. After warmup, Acquire/Release are zero-alloc.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// Drain deallocates every pooled image. Called when the viewport changes
// size so stale large targets do not linger.
func (p *renderTexturePool) Drain() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Subtree bounds ---

// subtreeWorldBounds computes the world-space bounds of n and all its
// descendants given n's world transform. Clip subtrees are not included
// because a clip only ever removes coverage.
func subtreeWorldBounds(n *Node, world [6]float64) (Rect, bool) {
	var r Rect
	first := true
	subtreeBoundsWalk(n, world, &r, &first)
	return r, !first
}

func subtreeBoundsWalk(n *Node, m [6]float64, bounds *Rect, first *bool) {
	if !n.Visible {
		return
	}
	var aabb Rect
	hasAABB := false
	switch n.Type {
	case NodeTypeParticles:
		if n.Emitter != nil && n.Emitter.alive > 0 {
			aabb = worldAABB(m, n.Emitter.localBounds())
			hasAABB = true
		}
	case NodeTypeGroup:
	default:
		lb := localBounds(n)
		if lb.Width > 0 || lb.Height > 0 {
			aabb = worldAABB(m, lb)
			hasAABB = true
		}
	}
	if hasAABB {
		if *first {
			*bounds = aabb
			*first = false
		} else {
			*bounds = rectUnion(*bounds, aabb)
		}
	}
	for _, child := range n.children {
		subtreeBoundsWalk(child, multiplyAffine(m, computeLocalTransform(child)), bounds, first)
	}
}

// --- Subtree rendering ---

// renderSubtree renders n (with transform m) and its descendants into target.
// It temporarily swaps the scene's command buffer to avoid disturbing the
// main render pass.
func renderSubtree(s *Scene, n *Node, target *ebiten.Image, m [6]float64) {
	savedCmds := s.commands
	s.commands = s.offscreenCmds[:0]

	// Base alpha is 1; the composite command applies the node's world alpha.
	emitNodeCommand(s, n, m, 1.0)
	for _, child := range sortedChildList(n) {
		renderSubtreeWalk(s, child, m, 1.0)
	}

	s.submitCommands(target)

	s.offscreenCmds = s.commands[:0]
	s.commands = savedCmds
}

// renderSubtreeWalk traverses a node subtree, emitting commands into the
// current s.commands buffer using explicit transforms.
func renderSubtreeWalk(s *Scene, n *Node, parent [6]float64, parentAlpha float64) {
	if !n.Visible {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(n))
	alpha := parentAlpha * n.Alpha

	if n.clip != nil || len(n.Filters) > 0 {
		s.renderSpecial(n, m, alpha)
		return
	}
	emitNodeCommand(s, n, m, alpha)
	for _, child := range sortedChildList(n) {
		renderSubtreeWalk(s, child, m, alpha)
	}
}

// renderClip renders the clip subtree of a node into target as opaque
// coverage. m is the clipped node's transform into target space.
func renderClip(s *Scene, c *Node, target *ebiten.Image, m [6]float64) {
	savedCmds := s.commands
	s.commands = s.offscreenCmds[:0]
	clipWalk(s, c, m)
	s.submitCommands(target)
	s.offscreenCmds = s.commands[:0]
	s.commands = savedCmds
}

func clipWalk(s *Scene, c *Node, parent [6]float64) {
	if !c.Visible {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(c))
	if c.Type != NodeTypeGroup {
		saved := c.Fill
		c.Fill = Paint{Color: ColorWhite}
		emitNodeCommand(s, c, m, 1.0)
		c.Fill = saved
	}
	for _, child := range c.children {
		clipWalk(s, child, m)
	}
}

// renderSpecial renders a clipped or filtered node (transform m, alpha a in
// the current target's space) to an offscreen image and emits a single
// image command compositing it back.
// Order: bounds → render subtree → apply clip → apply filters → emit.
func (s *Scene) renderSpecial(n *Node, m [6]float64, alpha float64) {
	bounds, ok := subtreeWorldBounds(n, m)
	if !ok {
		return
	}
	pad := float64(filterChainPadding(n.Filters))
	bounds.X -= pad
	bounds.Y -= pad
	bounds.Width += 2 * pad
	bounds.Height += 2 * pad

	// Keep offscreen targets no larger than the visible viewport plus padding.
	if s.width > 0 && s.height > 0 {
		view := Rect{X: -pad, Y: -pad, Width: float64(s.width) + 2*pad, Height: float64(s.height) + 2*pad}
		bounds = rectIntersect(bounds, view)
	}
	bounds.X = math.Floor(bounds.X)
	bounds.Y = math.Floor(bounds.Y)
	w := int(math.Ceil(bounds.Width)) + 1
	h := int(math.Ceil(bounds.Height)) + 1
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	offset := [6]float64{1, 0, 0, 1, -bounds.X, -bounds.Y}
	local := multiplyAffine(offset, m)

	rt := s.rtPool.Acquire(w, h)
	renderSubtree(s, n, rt, local)
	result := rt

	if n.clip != nil {
		clipRT := s.rtPool.Acquire(w, h)
		renderClip(s, n.clip, clipRT, local)

		var op ebiten.DrawImageOptions
		op.Blend = BlendMask.EbitenBlend()
		result.DrawImage(clipRT, &op)

		s.rtPool.Release(clipRT)
	}

	if len(n.Filters) > 0 {
		filtered := applyFilters(n.Filters, result, &s.rtPool)
		if filtered != result {
			s.rtPool.Release(result)
			result = filtered
		}
	}

	// Released after the frame's commands are submitted.
	s.rtDeferred = append(s.rtDeferred, result)

	s.commands = append(s.commands, RenderCommand{
		Type:      CommandImage,
		Transform: affine32([6]float64{1, 0, 0, 1, bounds.X, bounds.Y}),
		Color:     color32{1, 1, 1, float32(alpha)},
		BlendMode: n.BlendMode,
		image:     result,
	})
}
