package tidepool

// ControlStyle is the color set for on-screen controls drawn over the
// background gradient.
type ControlStyle struct {
	Background Color
	Text       Color
	Glow       Color
	// Light is true for the bright control used over dark gradients.
	Light bool
}

var (
	lightControl = ControlStyle{
		Background: Color{1, 1, 1, 0.85},
		Text:       Color{0, 0, 0, 1},
		Glow:       Color{1, 1, 1, 0.7},
		Light:      true,
	}
	darkControl = ControlStyle{
		Background: Color{0, 0, 0, 0.75},
		Text:       Color{1, 1, 1, 1},
		Glow:       Color{0, 0, 0, 0.7},
	}
)

// ContrastFor picks a control style that stands out against a gradient made
// of colors: a light control when the average brightness is below 0.5,
// a dark one otherwise.
func ContrastFor(colors []RGB) ControlStyle {
	if AverageBrightness(colors) < 0.5 {
		return lightControl
	}
	return darkControl
}
