package tidepool

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS adds an FPS/TPS readout on top of the scene.
	ShowFPS bool
	// Resizable lets the user resize the window; the scene follows via Layout.
	Resizable bool
}

// Run opens a window and drives scene as the ebiten.Game until the window
// closes or the update function returns an error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 640
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	scene.Resize(cfg.Width, cfg.Height)
	if cfg.ShowFPS {
		scene.Root().AddChild(NewFPSWidget())
	}
	return ebiten.RunGame(scene)
}
