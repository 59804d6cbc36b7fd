package tidepool

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"time"
)

// ErrMissingNode is returned (wrapped) when a required part of the scene is
// absent at startup.
var ErrMissingNode = errors.New("tidepool: missing required node")

// ErrReload is returned by Boot when the user chose to reload after a fatal
// error.
var ErrReload = errors.New("tidepool: reload requested")

// Z order of the top-level layers.
const (
	layerBackground = 0
	layerTransition = 1
	layerWaves      = 2
	layerFish       = 3
	layerControls   = 5
	layerLoader     = 10
)

// Config configures an App.
type Config struct {
	// Width and Height are used when the scene has no size yet.
	Width, Height int

	Waves      int
	WavePoints int
	Fish       int
	Loader     LoaderConfig

	// Sound enables the transition and loading chimes.
	Sound bool

	// Seed makes every random choice reproducible. Zero picks a random seed.
	Seed uint64

	// RetryDelay is the wait before the single startup retry.
	RetryDelay time.Duration

	// Logger receives diagnostics. Nil logs to stderr.
	Logger *log.Logger
	// Reporter is told about fatal startup errors by Boot. Nil logs them.
	Reporter ErrorReporter
}

// DefaultConfig returns the stock configuration: four wave layers sampled at
// twelve points, twelve fish and the default loader timing.
func DefaultConfig() Config {
	return Config{
		Width:      960,
		Height:     640,
		Waves:      4,
		WavePoints: 12,
		Fish:       12,
		Loader:     DefaultLoaderConfig(),
		RetryDelay: time.Second,
	}
}

// NewLogger returns the stderr logger used when Config.Logger is nil.
func NewLogger() *log.Logger {
	return log.New(os.Stderr, "[tidepool] ", log.LstdFlags)
}

// App is the application context. It owns every component and the
// channels between them; components never reach each other except through
// it or the Bus.
type App struct {
	cfg   Config
	scene *Scene
	log   *log.Logger
	rng   *rand.Rand

	bus   *Bus
	sched *Scheduler

	group   *Node
	content *Node
	canvas  *HitRect
	tlayer  *Node

	background *Background
	transition *TransitionEngine
	waves      *WaveField
	fish       *FishSwarm
	loader     *LoaderSequencer
	control    *Control
	notifier   *Notifier
	chimes     *Chimes

	halted map[string]bool

	width, height float64
}

// NewApp builds every component into scene and starts the loading
// sequence. Waves and fish that fail to build are logged and retried when
// loading completes.
func NewApp(scene *Scene, cfg Config) (*App, error) {
	if scene == nil || scene.Root() == nil {
		return nil, fmt.Errorf("%w: scene", ErrMissingNode)
	}
	if cfg.Logger == nil {
		cfg.Logger = NewLogger()
	}
	w, h := scene.Size()
	if w <= 0 || h <= 0 {
		w, h = cfg.Width, cfg.Height
		scene.Resize(w, h)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	a := &App{
		cfg:    cfg,
		scene:  scene,
		log:    cfg.Logger,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bus:    NewBus(),
		sched:  NewScheduler(),
		halted: make(map[string]bool),
		width:  float64(w),
		height: float64(h),
	}
	a.chimes = NewChimes(cfg.Sound, a.log)

	a.group = NewGroup("tidepool")
	attached := false
	defer func() {
		if !attached && !a.group.IsDisposed() {
			a.group.Dispose()
		}
	}()
	a.group.Interactable = true
	a.group.OnUpdate = func(dt float64) {
		a.Tick(time.Duration(dt * float64(time.Second)))
	}

	a.content = NewGroup("main-content")
	a.content.Interactable = true
	a.canvas = &HitRect{Width: a.width, Height: a.height}
	a.content.HitShape = a.canvas
	a.group.AddChild(a.content)

	a.background = NewBackground(a.content, a.bus, a.width, a.height)
	a.bus.SubscribePointer(a.background)

	a.tlayer = NewGroup("transitions")
	a.tlayer.ZIndex = layerTransition
	a.content.AddChild(a.tlayer)
	a.transition = NewTransitionEngine(a.tlayer, a.background, a.sched, a.rng, a.width, a.height)
	a.transition.OnStart = func(p GradientPreset, e TransitionEffect) {
		a.notifier.Show(fmt.Sprintf("%s - %s effect", p.Name, e))
		a.chimes.Transition(e)
	}

	a.control = NewControl(a.content, a.ChangeGradient, a.width, a.height)
	a.bus.SubscribePalette(a.control)
	a.notifier = NewNotifier(a.content, a.sched, a.width, a.height)

	a.background.Apply(a.transition.Current())

	a.ensureWaves()
	a.ensureFish()

	a.bus.SubscribeLoad(LoadFunc(a.onLoadingComplete))

	if err := a.verify(); err != nil {
		a.group.Dispose()
		return nil, err
	}

	loader, err := NewLoaderSequencer(a.group, a.content, a.sched, a.bus, cfg.Loader, a.rng, a.width, a.height)
	a.loader = loader
	if err != nil {
		a.log.Printf("loading screen unavailable: %v", err)
	} else {
		loader.Start()
	}

	// The scene is untouched until the detached group is complete.
	scene.Root().AddChild(a.group)
	scene.OnPointerMove(func(ctx PointerContext) {
		a.PointerMoved(ctx.GlobalX, ctx.GlobalY)
	})
	scene.OnDoubleClick(func(ctx ClickContext) {
		if ctx.Node == a.control.Button() {
			return
		}
		a.RegenerateWaves()
	})
	scene.OnResize(func(w, h int) {
		a.Resize(float64(w), float64(h))
	})
	attached = true
	return a, nil
}

// verify checks that every required node made it into the tree.
func (a *App) verify() error {
	var missing []string
	for _, req := range []struct {
		name string
		node *Node
	}{
		{"background-gradient", a.background.rect},
		{"main-content", a.content},
		{"transitions", a.tlayer},
		{"change-gradient", a.control.button},
	} {
		if req.node == nil || req.node.IsDisposed() {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingNode, strings.Join(missing, ", "))
	}
	return nil
}

// Boot is NewApp with the startup error policy: a failure that looks like
// a nil reference is retried once after RetryDelay, and a remaining error
// is handed to the reporter. ErrReload is returned when the user asked to
// reload.
func Boot(scene *Scene, cfg Config) (*App, error) {
	if cfg.Logger == nil {
		cfg.Logger = NewLogger()
	}
	app, err := newAppRecovered(scene, cfg)
	if err != nil && nilReference(err) {
		cfg.Logger.Printf("attempting to recover from initialization error: %v", err)
		time.Sleep(cfg.RetryDelay)
		app, err = newAppRecovered(scene, cfg)
	}
	if err == nil {
		return app, nil
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: cfg.Logger}
	}
	if reporter.ReportFatal(err) {
		return nil, fmt.Errorf("%w: %w", ErrReload, err)
	}
	return nil, err
}

func newAppRecovered(scene *Scene, cfg Config) (app *App, err error) {
	defer func() {
		if r := recover(); r != nil {
			app, err = nil, fmt.Errorf("initialization: %v", r)
		}
	}()
	return NewApp(scene, cfg)
}

// nilReference reports whether err looks like a nil dereference.
func nilReference(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nil pointer") || strings.Contains(msg, "nil map")
}

// ensureWaves builds the wave field if it does not exist yet.
func (a *App) ensureWaves() {
	if a.waves != nil {
		return
	}
	err := a.safeStep("waves init", func() {
		a.waves = NewWaveField(a.content, a.cfg.Waves, a.cfg.WavePoints, a.rng, a.width, a.height)
	})
	if err != nil {
		a.waves = nil
		return
	}
	a.bus.SubscribePointer(a.waves)
	if a.fish != nil {
		a.fish.SetWaves(a.waves)
	}
}

// ensureFish builds the swarm if it does not exist yet.
func (a *App) ensureFish() {
	if a.fish != nil {
		return
	}
	var waves WaveSource
	if a.waves != nil {
		waves = a.waves
	}
	err := a.safeStep("fish init", func() {
		a.fish = NewFishSwarm(a.content, waves, a.bus.Palette(), a.cfg.Fish, a.rng, a.width, a.height)
	})
	if err != nil {
		a.fish = nil
		return
	}
	a.bus.SubscribePalette(a.fish)
	a.bus.SubscribePointer(a.fish)
}

func (a *App) onLoadingComplete() {
	a.ensureWaves()
	a.ensureFish()
	a.control.Activate()
	a.chimes.Loaded()
	a.log.Printf("loading complete")
}

// safeStep runs fn, turning a panic into a logged error.
func (a *App) safeStep(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
			a.log.Printf("%v", err)
		}
	}()
	fn()
	return nil
}

// loop runs one tick of a named animation. A failing animation is halted
// for good; its siblings keep running.
func (a *App) loop(name string, fn func()) {
	if a.halted[name] {
		return
	}
	if err := a.safeStep(name, fn); err != nil {
		a.halted[name] = true
		a.log.Printf("%s animation halted", name)
	}
}

// Tick advances every component by dt: scheduler, loader, background,
// waves, fish, transition, then the toast.
func (a *App) Tick(dt time.Duration) {
	if err := a.safeStep("scheduler", func() { a.sched.Advance(dt) }); err != nil {
		a.fallbackLoader(err)
	}
	if a.loader != nil {
		if err := a.safeStep("loader", func() { a.loader.Tick(dt) }); err != nil {
			a.fallbackLoader(err)
		}
	}
	a.loop("background", a.background.Tick)
	if a.waves != nil {
		a.loop("waves", a.waves.Tick)
	}
	if a.fish != nil {
		a.loop("fish", a.fish.Tick)
	}
	if err := a.safeStep("transition", func() { a.transition.Tick(dt) }); err != nil {
		a.safeStep("transition cleanup", a.transition.Finish)
	}
	a.loop("toast", func() { a.notifier.Tick(dt) })
}

// fallbackLoader degrades the loading screen after a failure while it is
// still up.
func (a *App) fallbackLoader(err error) {
	if a.loader != nil && !a.loader.Done() {
		a.loader.Fallback(fmt.Errorf("%w: %w", ErrLoaderFailed, err))
	}
}

// PointerMoved reports a pointer position in viewport pixels.
func (a *App) PointerMoved(x, y float64) {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	a.bus.PublishPointer(x/a.width, y/a.height)
}

// ChangeGradient advances to the next preset with the next effect.
func (a *App) ChangeGradient() {
	a.safeStep("change gradient", a.transition.RequestChange)
}

// RegenerateWaves rebuilds the wave layers.
func (a *App) RegenerateWaves() {
	if a.waves != nil {
		a.loop("waves", a.waves.Regenerate)
	}
}

// Resize lays every component out for a new viewport. Waves are
// regenerated; a transition in flight keeps its geometry.
func (a *App) Resize(width, height float64) {
	a.width, a.height = width, height
	a.canvas.Width, a.canvas.Height = width, height
	a.background.Resize(width, height)
	a.transition.Resize(width, height)
	if a.waves != nil {
		a.loop("waves", func() { a.waves.Resize(width, height) })
	}
	if a.fish != nil {
		a.fish.Resize(width, height)
	}
	a.control.Resize(width, height)
	a.notifier.Resize(width, height)
	if a.loader != nil {
		a.loader.Resize(width, height)
	}
}

// Halted reports whether the named animation loop was stopped by a failure.
func (a *App) Halted(name string) bool {
	return a.halted[name]
}

// Close releases audio.
func (a *App) Close() {
	a.chimes.Close()
}

// Accessors.

func (a *App) Bus() *Bus { return a.bus }
func (a *App) Scheduler() *Scheduler { return a.sched }
func (a *App) Background() *Background { return a.background }
func (a *App) Transition() *TransitionEngine { return a.transition }
func (a *App) Waves() *WaveField { return a.waves }
func (a *App) Fish() *FishSwarm { return a.fish }
func (a *App) Loader() *LoaderSequencer { return a.loader }
func (a *App) Control() *Control { return a.control }
func (a *App) Notifier() *Notifier { return a.notifier }
func (a *App) Content() *Node { return a.content }
