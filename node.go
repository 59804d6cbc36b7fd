package tidepool

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// HitShape is used for custom hit testing regions.
type HitShape interface {
	Contains(x, y float64) bool
}

// PointerContext carries pointer event data.
type PointerContext struct {
	Node     *Node
	UserData any
	GlobalX  float64
	GlobalY  float64
	LocalX   float64
	LocalY   float64
	Button   MouseButton
}

// ClickContext carries click and double-click event data.
type ClickContext struct {
	Node     *Node
	UserData any
	GlobalX  float64
	GlobalY  float64
	LocalX   float64
	LocalY   float64
	Button   MouseButton
}

// --- ID counter ---

// nodeIDCounter is a plain counter; nodes are only created on one goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Computed during traversal
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	ZIndex int

	UserData any

	// Geometry. Width/Height apply to rects and images, Radius to circles,
	// Path to path nodes.
	Width, Height float64
	Radius        float64
	Path          *Path
	FillMode      FillMode

	// Fill is the paint used for rect, circle and path nodes. Image and
	// particle nodes use only its Color as a tint.
	Fill      Paint
	BlendMode BlendMode
	Image     *ebiten.Image

	// Particle fields (NodeTypeParticles)
	Emitter *ParticleEmitter

	HitShape HitShape
	Filters  []Filter

	// Clip node; not part of the tree, transforms are relative to this node.
	clip *Node

	// Per-node callbacks (nil by default; zero cost when unused)
	OnUpdate      func(dt float64)
	OnPointerMove func(PointerContext)
	OnClick       func(ClickContext)
	OnDoubleClick func(ClickContext)

	// Tessellation cache
	verts            []ebiten.Vertex
	inds             []uint16
	transformedVerts []ebiten.Vertex
	meshKey          meshKey
	fillPath         *vector.Path

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
	if n.Fill.Gradient == nil && n.Fill.Color == (Color{}) {
		n.Fill.Color = ColorWhite
	}
}

// NewGroup creates a group node with no visual representation.
func NewGroup(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup}
	nodeDefaults(n)
	return n
}

// NewRect creates a rectangle node spanning local (0,0) to (w,h).
func NewRect(name string, w, h float64, fill Paint) *Node {
	n := &Node{Name: name, Type: NodeTypeRect, Width: w, Height: h, Fill: fill}
	nodeDefaults(n)
	return n
}

// NewCircle creates a circle node centered on its local origin.
func NewCircle(name string, radius float64, fill Paint) *Node {
	n := &Node{Name: name, Type: NodeTypeCircle, Radius: radius, Fill: fill}
	nodeDefaults(n)
	return n
}

// NewPathNode creates a node that fills the given path. A nil path is
// replaced by an empty one.
func NewPathNode(name string, p *Path, fill Paint) *Node {
	if p == nil {
		p = &Path{}
	}
	n := &Node{Name: name, Type: NodeTypePath, Path: p, Fill: fill}
	nodeDefaults(n)
	return n
}

// NewImage creates a node that draws img at its local origin.
func NewImage(name string, img *ebiten.Image) *Node {
	n := &Node{Name: name, Type: NodeTypeImage, Image: img}
	if img != nil {
		b := img.Bounds()
		n.Width, n.Height = float64(b.Dx()), float64(b.Dy())
	}
	nodeDefaults(n)
	return n
}

// NewParticles creates a particle emitter node with a preallocated pool.
func NewParticles(name string, cfg EmitterConfig) *Node {
	n := &Node{
		Name:      name,
		Type:      NodeTypeParticles,
		BlendMode: cfg.BlendMode,
		Emitter:   newParticleEmitter(cfg),
	}
	nodeDefaults(n)
	return n
}

// SetSize sets Width and Height.
func (n *Node) SetSize(w, h float64) {
	n.Width = w
	n.Height = h
}

// SetFill replaces the node's paint.
func (n *Node) SetFill(p Paint) {
	n.Fill = p
}

// SetFillColor replaces the node's paint with a solid color.
func (n *Node) SetFillColor(c Color) {
	n.Fill = Paint{Color: c}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("tidepool: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("tidepool: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("tidepool: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("tidepool: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("tidepool: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("tidepool: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		markSubtreeDirty(child)
	}
	n.children = n.children[:0]
	n.childrenSorted = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants and its clip node.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	if n.clip != nil && !n.clip.disposed {
		n.clip.dispose()
	}
	n.clip = nil
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.HitShape = nil
	n.Filters = nil
	n.Path = nil
	n.Image = nil
	n.Emitter = nil
	n.Fill = Paint{}
	n.verts = nil
	n.inds = nil
	n.transformedVerts = nil
	n.fillPath = nil
	n.UserData = nil
	n.OnUpdate = nil
	n.OnPointerMove = nil
	n.OnClick = nil
	n.OnDoubleClick = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// countSubtree returns the number of live nodes in n's subtree, including
// clip subtrees referenced along the way.
func countSubtree(n *Node) int {
	count := 1
	if n.clip != nil {
		count += countSubtree(n.clip)
	}
	for _, child := range n.children {
		count += countSubtree(child)
	}
	return count
}

// sortedChildList returns the ZIndex-sorted traversal order for a node.
func sortedChildList(n *Node) []*Node {
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		return n.sortedChildren
	}
	return n.children
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}
