// Package tidepool renders an animated, interactive gradient background for
// [Ebitengine]: layered sine waves, swimming fish, seven gradient
// transition effects and a particle loading screen, all drawn through a
// small retained-mode vector scene graph.
//
// # Quick start
//
// The simplest way to get started is [Run] together with [Boot], which
// builds every component into a scene and opens a window:
//
//	scene := tidepool.NewScene()
//	app, err := tidepool.Boot(scene, tidepool.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer app.Close()
//	tidepool.Run(scene, tidepool.RunConfig{Title: "tidepool", Width: 960, Height: 640})
//
// # Scene graph
//
// Every visual element is a [Node] created with a typed constructor:
// [NewGroup], [NewRect], [NewCircle], [NewPathNode], [NewImage] and
// [NewParticles]. Nodes form a tree rooted at [Scene.Root]; children
// inherit their parent's transform and alpha and are drawn in ZIndex order.
//
// Shapes are filled with a [Paint]: a solid [Color] or a linear or radial
// [Gradient]. Any node can be clipped by another node tree set with
// [Node.SetClip]; the clip's transforms are relative to the clipped node.
// [Filter] values such as [BlurFilter] and [GlowFilter] post-process a
// node offscreen.
//
// [Scene.SampleAt] composites a single point on the CPU, which is what the
// terminal renderer in term/ and most tests use instead of reading GPU
// pixels.
//
// # Animation
//
// Time-driven behaviour is split between per-frame ticks, driven by
// [App.Tick], and timers on a [Scheduler], a single-threaded virtual clock.
// Nothing runs on another goroutine.
//
//   - [TransitionEngine] runs one session at a time; a new request finishes
//     the active session first, so temporary nodes never accumulate.
//   - [WaveField] retraces its layers every tick from [SamplePath].
//   - [FishSwarm] swims, wobbles, follows the nearest wave and flees the
//     pointer.
//   - [LoaderSequencer] plays the loading screen, then publishes loading
//     completion on the [Bus], falling back immediately if anything fails.
//
// Components talk through the [Bus]: palette changes, pointer moves and the
// loading-complete signal.
//
// # Testing
//
// Scenes can be driven without a window: call [Scene.Step] with a fixed
// delta, inject input with [Scene.InjectMove] and [Scene.InjectClick], or
// load a JSON script with [LoadTestScript].
//
// [Ebitengine]: https://ebitengine.org
package tidepool
