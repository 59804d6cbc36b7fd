package tidepool

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandMesh     CommandType = iota // solid-fill DrawTriangles on the white pixel
	CommandGradient                    // DrawTrianglesShader with the gradient shader
	CommandImage                       // DrawImage
	CommandParticle                    // one quad per alive particle
	CommandPath                        // vector.FillPath with the nonzero rule
)

// color32 is a compact RGBA color using float32, for render commands only.
type color32 struct {
	R, G, B, A float32
}

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type      CommandType
	Transform [6]float32
	Color     color32
	BlendMode BlendMode

	// Mesh fields (slice headers, not copies of vertex data).
	verts []ebiten.Vertex
	inds  []uint16

	// fillRule is FillRuleNonZero for path fans, FillRuleFillAll otherwise.
	fillRule ebiten.FillRule

	// Gradient fields.
	gradient *Gradient
	bbox     Rect
	alpha    float64

	path *vector.Path

	image   *ebiten.Image
	emitter *ParticleEmitter
}

// affine32 converts a [6]float64 affine matrix to [6]float32.
func affine32(m [6]float64) [6]float32 {
	return [6]float32{float32(m[0]), float32(m[1]), float32(m[2]), float32(m[3]), float32(m[4]), float32(m[5])}
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible nodes in painter order.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	if !n.Visible {
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	// Clipped or filtered nodes render their subtree offscreen and emit a
	// single image command.
	if n.clip != nil || len(n.Filters) > 0 {
		s.renderSpecial(n, n.worldTransform, n.worldAlpha)
		return
	}

	emitNodeCommand(s, n, n.worldTransform, n.worldAlpha)

	for _, child := range sortedChildList(n) {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// emitNodeCommand emits a render command for a single node at the given transform.
func emitNodeCommand(s *Scene, n *Node, transform [6]float64, alpha float64) {
	if alpha <= 0 {
		return
	}
	switch n.Type {
	case NodeTypeRect, NodeTypeCircle, NodeTypePath:
		ensureMesh(n)
		if len(n.verts) == 0 || len(n.inds) == 0 {
			return
		}
		nonZero := n.Type == NodeTypePath && n.FillMode == FillNonZero
		if g := n.Fill.Gradient; g != nil {
			dst := ensureTransformedVerts(n)
			transformVertices(n.verts, dst, transform, ColorWhite, true)
			cmd := RenderCommand{
				Type:      CommandGradient,
				BlendMode: n.BlendMode,
				verts:     dst,
				inds:      n.inds,
				gradient:  g,
				bbox:      localBounds(n),
				alpha:     alpha,
			}
			if nonZero {
				cmd.fillRule = ebiten.FillRuleNonZero
			}
			s.commands = append(s.commands, cmd)
			return
		}
		c := n.Fill.Color
		c.A *= alpha
		if nonZero {
			if n.fillPath == nil {
				n.fillPath = &vector.Path{}
			}
			worldVectorPath(n.fillPath, n.Path, transform)
			s.commands = append(s.commands, RenderCommand{
				Type:      CommandPath,
				Color:     color32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)},
				BlendMode: n.BlendMode,
				fillRule:  ebiten.FillRuleNonZero,
				path:      n.fillPath,
			})
			return
		}
		dst := ensureTransformedVerts(n)
		transformVertices(n.verts, dst, transform, c, false)
		s.commands = append(s.commands, RenderCommand{
			Type:      CommandMesh,
			BlendMode: n.BlendMode,
			verts:     dst,
			inds:      n.inds,
		})
	case NodeTypeImage:
		if n.Image == nil {
			return
		}
		c := n.Fill.Color
		s.commands = append(s.commands, RenderCommand{
			Type:      CommandImage,
			Transform: affine32(transform),
			Color:     color32{float32(c.R), float32(c.G), float32(c.B), float32(c.A * alpha)},
			BlendMode: n.BlendMode,
			image:     n.Image,
		})
	case NodeTypeParticles:
		if n.Emitter == nil || n.Emitter.alive == 0 {
			return
		}
		c := n.Fill.Color
		s.commands = append(s.commands, RenderCommand{
			Type:      CommandParticle,
			Transform: affine32(transform),
			Color:     color32{float32(c.R), float32(c.G), float32(c.B), float32(c.A * alpha)},
			BlendMode: n.BlendMode,
			emitter:   n.Emitter,
		})
	}
}

// --- Submission ---

// submitCommands draws the current command list to target in order.
func (s *Scene) submitCommands(target *ebiten.Image) {
	if len(s.commands) == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	for i := range s.commands {
		cmd := &s.commands[i]
		switch cmd.Type {
		case CommandMesh:
			var triOp ebiten.DrawTrianglesOptions
			triOp.Blend = cmd.BlendMode.EbitenBlend()
			target.DrawTriangles(cmd.verts, cmd.inds, ensureWhitePixel(), &triOp)
		case CommandGradient:
			s.submitGradient(target, cmd)
		case CommandImage:
			submitImage(target, cmd, &op)
		case CommandParticle:
			submitParticles(target, cmd, &op)
		case CommandPath:
			submitPath(target, cmd)
		}
	}
}

func (s *Scene) submitGradient(target *ebiten.Image, cmd *RenderCommand) {
	if s.gradientUniforms == nil {
		s.gradientUniforms = make(map[string]any, 10)
	}
	gradientUniforms(s.gradientUniforms, cmd.gradient, cmd.bbox, cmd.alpha)
	var op ebiten.DrawTrianglesShaderOptions
	op.Uniforms = s.gradientUniforms
	op.Blend = cmd.BlendMode.EbitenBlend()
	op.FillRule = cmd.fillRule
	target.DrawTrianglesShader(cmd.verts, cmd.inds, ensureGradientShader(), &op)
}

// submitPath fills a world-space path. vector.FillPath stencils the outline
// offscreen before compositing, so translucent fills blend once per pixel.
func submitPath(target *ebiten.Image, cmd *RenderCommand) {
	var op vector.DrawPathOptions
	a := cmd.Color.A
	op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)
	op.Blend = cmd.BlendMode.EbitenBlend()
	vector.FillPath(target, cmd.path, &vector.FillOptions{FillRule: vector.FillRuleNonZero}, &op)
}

func submitImage(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.GeoM.Concat(commandGeoM(cmd))
	op.ColorScale.Reset()
	a := cmd.Color.A
	op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)
	op.Blend = cmd.BlendMode.EbitenBlend()
	op.Filter = ebiten.FilterLinear
	target.DrawImage(cmd.image, op)
}

// submitParticles draws all alive particles for a CommandParticle command as
// white-pixel quads scaled to each particle's size.
func submitParticles(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	e := cmd.emitter
	img := ensureWhitePixel()
	base := commandGeoM(cmd)
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		size := float64(p.scale) * e.config.Size
		op.GeoM.Reset()
		op.GeoM.Translate(-0.5, -0.5)
		op.GeoM.Scale(size, size)
		op.GeoM.Translate(p.x, p.y)
		op.GeoM.Concat(base)

		cr := p.colorR * cmd.Color.R
		cg := p.colorG * cmd.Color.G
		cb := p.colorB * cmd.Color.B
		ca := p.alpha * cmd.Color.A
		op.ColorScale.Reset()
		op.ColorScale.Scale(cr*ca, cg*ca, cb*ca, ca)
		op.Blend = cmd.BlendMode.EbitenBlend()
		target.DrawImage(img, op)
	}
}

// commandGeoM converts a command's transform into an ebiten.GeoM.
func commandGeoM(cmd *RenderCommand) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, float64(cmd.Transform[0]))
	m.SetElement(1, 0, float64(cmd.Transform[1]))
	m.SetElement(0, 1, float64(cmd.Transform[2]))
	m.SetElement(1, 1, float64(cmd.Transform[3]))
	m.SetElement(0, 2, float64(cmd.Transform[4]))
	m.SetElement(1, 2, float64(cmd.Transform[5]))
	return m
}
