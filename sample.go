package tidepool

// SampleAt composites the scene at screen point (x, y) on the CPU and
// returns the straight-alpha result over ClearColor. Shape paints, node
// alpha, visibility and clips are honoured; images, particles and filters
// are not sampled. Used by the terminal renderer and by tests that cannot
// read GPU pixels.
func (s *Scene) SampleAt(x, y float64) Color {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	out := s.ClearColor
	sampleWalk(s.root, x, y, 1.0, &out)
	return out
}

func sampleWalk(n *Node, x, y, parentAlpha float64, out *Color) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Alpha
	if alpha <= 0 {
		return
	}
	if n.clip != nil && !clipContains(n.clip, n.worldTransform, x, y) {
		return
	}
	switch n.Type {
	case NodeTypeRect, NodeTypeCircle, NodeTypePath:
		if !singular(n.worldTransform) {
			lx, ly := transformPoint(invertAffine(n.worldTransform), x, y)
			if shapeContainsLocal(n, lx, ly) {
				c := n.Fill.At(lx, ly, localBounds(n))
				c.A *= alpha
				*out = c.over(*out)
			}
		}
	}
	for _, child := range sortedChildList(n) {
		sampleWalk(child, x, y, alpha, out)
	}
}
