// Package term draws a tidepool scene into a terminal with tcell.
//
// Each terminal cell shows two vertically stacked scene samples using the
// upper half block: the foreground carries the top sample and the background
// the bottom one. Samples come from [tidepool.Scene.SampleAt], so no GPU is
// needed and the renderer works over SSH.
package term

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/tidepool"
)

const halfBlock = '▀'

// Canvas is the part of tcell.Screen the renderer draws into.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// Renderer maps terminal cells onto scene coordinates.
type Renderer struct {
	Scene *tidepool.Scene
	// CellWidth and CellHeight are the scene size covered by one cell.
	CellWidth  float64
	CellHeight float64
}

// New returns a renderer for scene where each cell covers cellW x cellH
// scene pixels.
func New(scene *tidepool.Scene, cellW, cellH float64) *Renderer {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	return &Renderer{Scene: scene, CellWidth: cellW, CellHeight: cellH}
}

// SceneSize returns the scene dimensions that fill a cols x rows terminal.
func (r *Renderer) SceneSize(cols, rows int) (int, int) {
	return int(float64(cols) * r.CellWidth), int(float64(rows) * r.CellHeight)
}

// CellToScene returns the scene point at the center of a cell.
func (r *Renderer) CellToScene(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * r.CellWidth, (float64(row) + 0.5) * r.CellHeight
}

// Draw samples the scene for every cell of c.
func (r *Renderer) Draw(c Canvas) {
	cols, rows := c.Size()
	for row := 0; row < rows; row++ {
		top := (float64(row) + 0.25) * r.CellHeight
		bottom := (float64(row) + 0.75) * r.CellHeight
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5) * r.CellWidth
			st := Style(r.Scene.SampleAt(x, top), r.Scene.SampleAt(x, bottom))
			c.SetContent(col, row, halfBlock, nil, st)
		}
	}
}

// Style returns the half-block style for a pair of samples.
func Style(top, bottom tidepool.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(ToColor(top)).Background(ToColor(bottom))
}

// ToColor converts c to a terminal color, compositing any transparency over
// black.
func ToColor(c tidepool.Color) tcell.Color {
	a := clamp01(c.A)
	return tcell.NewRGBColor(channel(c.R*a), channel(c.G*a), channel(c.B*a))
}

func channel(v float64) int32 {
	return int32(clamp01(v)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Run drives the scene in screen until Escape, Ctrl-C or q is pressed.
// Mouse motion and clicks become injected scene input; resizes resize the
// scene. step advances the scene by one frame.
func Run(screen tcell.Screen, r *Renderer, frame time.Duration, step func(dt time.Duration) error) error {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	screen.EnableMouse()
	screen.HideCursor()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	r.resize(screen)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var held bool
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			case *tcell.EventResize:
				r.resize(screen)
				screen.Sync()
			case *tcell.EventMouse:
				col, row := ev.Position()
				x, y := r.CellToScene(col, row)
				down := ev.Buttons()&tcell.Button1 != 0
				switch {
				case down && !held:
					r.Scene.InjectPress(x, y)
				case !down && held:
					r.Scene.InjectRelease(x, y)
				default:
					r.Scene.InjectMove(x, y)
				}
				held = down
			}
		case <-ticker.C:
			if err := step(frame); err != nil {
				return err
			}
			r.Draw(screen)
			screen.Show()
		}
	}
}

func (r *Renderer) resize(c Canvas) {
	w, h := r.SceneSize(c.Size())
	r.Scene.Resize(w, h)
}
