package tidepool

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultCommandCap = 256

// Scene is the top-level object that owns the node tree, the viewport size,
// input state, and render buffers.
type Scene struct {
	root  *Node
	debug bool

	// ClearColor fills the screen before each Draw. A zero alpha leaves the
	// screen untouched.
	ClearColor Color

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	width, height  int
	elapsed        float64
	updateFunc     func() error
	resizeHandlers []func(w, h int)

	// Render state
	commands         []RenderCommand
	offscreenCmds    []RenderCommand
	rtPool           renderTexturePool
	rtDeferred       []*ebiten.Image
	gradientUniforms map[string]any

	// Input state
	handlers  handlerRegistry
	pointer   pointerState
	lastClick clickRecord
	hitBuf    []*Node

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewScene creates a new scene with a pre-created root group.
func NewScene() *Scene {
	root := NewGroup("root")
	root.Interactable = true
	return &Scene{
		root:          root,
		ScreenshotDir: "screenshots",
		commands:      make([]RenderCommand, 0, defaultCommandCap),
	}
}

// Root returns the scene's root group node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetUpdateFunc sets a function called once per Step after the scene's own
// update work. A returned error stops Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// OnResize registers a callback fired whenever the viewport size changes.
func (s *Scene) OnResize(fn func(w, h int)) {
	s.resizeHandlers = append(s.resizeHandlers, fn)
}

// Resize sets the viewport size. Handlers run only when the size changes.
func (s *Scene) Resize(w, h int) {
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h
	s.rtPool.Drain()
	for _, fn := range s.resizeHandlers {
		fn(w, h)
	}
}

// Size returns the current viewport size.
func (s *Scene) Size() (w, h int) {
	return s.width, s.height
}

// Elapsed returns the simulated time in seconds accumulated by Step.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// Update reads hardware input and advances the scene by one tick. It is the
// ebiten.Game Update entry point used by Run.
func (s *Scene) Update() error {
	if len(s.injectQueue) == 0 && s.testRunner == nil {
		s.processHardwareInput()
	}
	return s.Step(1.0 / float64(ebiten.TPS()))
}

// Step advances the scene by dt seconds without touching hardware input:
// scripted steps run, one injected event is consumed, transforms refresh,
// node OnUpdate callbacks and particles advance, then the update function
// runs.
func (s *Scene) Step(dt float64) error {
	s.elapsed += dt
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()

	updateWorldTransform(s.root, identityTransform, 1.0, false)
	updateNodes(s.root, dt)
	updateParticles(s.root, dt)

	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// updateNodes runs OnUpdate callbacks depth-first. The child slice is
// snapshotted per node so callbacks may restructure the tree.
func updateNodes(n *Node, dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	if len(n.children) == 0 {
		return
	}
	kids := append([]*Node(nil), n.children...)
	for _, child := range kids {
		if !child.disposed {
			updateNodes(child, dt)
		}
	}
}

// Draw traverses the scene tree, emits render commands and submits them to
// the screen image.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.commands = s.commands[:0]

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.traverse(s.root, identityTransform, 1.0, false)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		stats.offscreen = len(s.rtDeferred)
		t0 = time.Now()
	}

	s.submitCommands(screen)

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.drawCallCount = countDrawCalls(s.commands)
		stats.nodeCount = s.CountNodes()
		s.debugLog(stats)
	}

	// Release pooled textures composited during this frame.
	for _, img := range s.rtDeferred {
		s.rtPool.Release(img)
	}
	s.rtDeferred = s.rtDeferred[:0]

	s.flushScreenshots(screen)
}

// Layout implements ebiten.Game and keeps the viewport in sync with the window.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// CountNodes returns the number of live nodes reachable from the root,
// including clip subtrees. Components that clean up after themselves leave
// this number unchanged across their lifetime.
func (s *Scene) CountNodes() int {
	return countSubtree(s.root)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and
// per-frame timing stats are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool
