package tidepool

// SetClip sets a clip node for this node. The union of the clip subtree's
// filled shapes determines which parts of this node are visible. The clip
// node is NOT part of the scene tree; its transforms are relative to the
// clipped node. It is disposed together with the clipped node.
func (n *Node) SetClip(clip *Node) {
	n.clip = clip
}

// ClearClip removes the clip from this node without disposing it.
func (n *Node) ClearClip() {
	n.clip = nil
}

// Clip returns the current clip node, or nil if no clip is set.
func (n *Node) Clip() *Node {
	return n.clip
}

// clipContains reports whether the clip subtree rooted at c covers the point
// (x, y). parent is the clipped node's transform into the space (x, y) is
// expressed in.
func clipContains(c *Node, parent [6]float64, x, y float64) bool {
	if !c.Visible {
		return false
	}
	m := multiplyAffine(parent, computeLocalTransform(c))
	if c.Type != NodeTypeGroup && !singular(m) {
		lx, ly := transformPoint(invertAffine(m), x, y)
		if shapeContainsLocal(c, lx, ly) {
			return true
		}
	}
	for _, child := range c.children {
		if clipContains(child, m, x, y) {
			return true
		}
	}
	return false
}
