package tidepool

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrBadColor is returned (wrapped) when a color string cannot be parsed.
var ErrBadColor = errors.New("tidepool: bad color")

// RGB is an opaque 8-bit color as used by gradient presets and palettes.
type RGB struct {
	R, G, B uint8
}

// ParseColor parses "#rrggbb", "#rgb", "rgb(r, g, b)" or "rgba(r, g, b, a)".
// The alpha of an rgba() color is discarded; use ParseColorAlpha to keep it.
func ParseColor(s string) (RGB, error) {
	c, _, err := ParseColorAlpha(s)
	return c, err
}

// ParseColorAlpha is ParseColor that also returns the alpha component
// (1 for forms without one).
func ParseColorAlpha(s string) (RGB, float64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, 0, fmt.Errorf("%w %q: %v", ErrBadColor, s, err)
		}
		r, g, b := c.Clamped().RGB255()
		return RGB{r, g, b}, 1, nil
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[5:len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[4:len(s)-1], 3)
	}
	return RGB{}, 0, fmt.Errorf("%w %q", ErrBadColor, s)
}

func parseFunctional(src, body string, want int) (RGB, float64, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return RGB{}, 0, fmt.Errorf("%w %q: want %d components, got %d", ErrBadColor, src, want, len(parts))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return RGB{}, 0, fmt.Errorf("%w %q: component %d out of range", ErrBadColor, src, i)
		}
		ch[i] = uint8(v)
	}
	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return RGB{}, 0, fmt.Errorf("%w %q: bad alpha", ErrBadColor, src)
		}
		alpha = a
	}
	return RGB{ch[0], ch[1], ch[2]}, alpha, nil
}

// MustParseColor is like ParseColor but panics on error. Intended for
// package-level literals.
func MustParseColor(s string) RGB {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Color converts to a scene Color with the given alpha.
func (c RGB) Color(alpha float64) Color {
	return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, alpha}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Brightness returns the perceived brightness of c in [0, 1] using the
// 0.299/0.587/0.114 luma weights.
func Brightness(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// AverageBrightness is the mean Brightness of colors. An empty list is
// treated as mid grey (0.5).
func AverageBrightness(colors []RGB) float64 {
	if len(colors) == 0 {
		return 0.5
	}
	var total float64
	for _, c := range colors {
		total += Brightness(c)
	}
	return total / float64(len(colors))
}

// EnhanceSaturation pushes the middle channel of c (the one that is neither
// the maximum nor the minimum) away from 128 by amount*(255-(max-min)).
// Grey colors and colors without a distinct middle channel are returned
// unchanged.
func EnhanceSaturation(c RGB, amount float64) RGB {
	ch := [3]uint8{c.R, c.G, c.B}
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	if hi == lo {
		return c
	}
	inc := amount * float64(255-(int(hi)-int(lo)))
	for i, v := range ch {
		if v == hi || v == lo {
			continue
		}
		f := float64(v)
		if v > 128 {
			f += inc
		} else {
			f -= inc
		}
		ch[i] = uint8(math.Round(math.Max(0, math.Min(255, f))))
	}
	return RGB{ch[0], ch[1], ch[2]}
}

// ShiftHue rotates the HSL hue of c by amount turns (1 = a full rotation).
// Saturation and lightness are kept.
func ShiftHue(c RGB, amount float64) RGB {
	h, s, l := c.colorful().Hsl()
	h = math.Mod(h+amount*360, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return RGB{r, g, b}
}
