package tidepool

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewFPSWidget creates an image node that displays the current FPS and TPS,
// redrawn about every half second. Give it a high ZIndex to keep it on top.
func NewFPSWidget() *Node {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	img := ebiten.NewImage(100, 32)

	node := NewImage("fps_widget", img)
	node.ZIndex = 1 << 20

	var lastUpdate float64

	node.OnUpdate = func(dt float64) {
		lastUpdate += dt
		if lastUpdate < 0.5 {
			return
		}
		lastUpdate = 0

		img.Clear()
		img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}

	return node
}
