package tidepool

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const chimeSampleRate = beep.SampleRate(44100)

// chimeScale is a major pentatonic run, one note per transition effect.
var chimeScale = [effectCount]float64{523.25, 587.33, 659.25, 783.99, 880.00, 1046.50, 1174.66}

// chimeFrequency returns the note played when effect starts.
func chimeFrequency(effect TransitionEffect) float64 {
	if effect < effectCount {
		return chimeScale[effect]
	}
	return chimeScale[0]
}

// Chimes plays short procedural tones for transitions and loading
// completion. A Chimes whose speaker failed to open is silent.
type Chimes struct {
	enabled bool
	logger  *log.Logger
}

// NewChimes opens the speaker when enabled is true. Audio failures are
// logged and leave the chimes silent.
func NewChimes(enabled bool, logger *log.Logger) *Chimes {
	if logger == nil {
		logger = log.Default()
	}
	c := &Chimes{logger: logger}
	if !enabled {
		return c
	}
	if err := speaker.Init(chimeSampleRate, chimeSampleRate.N(time.Second/10)); err != nil {
		logger.Printf("audio disabled: %v", err)
		return c
	}
	c.enabled = true
	return c
}

// Enabled reports whether tones are actually played.
func (c *Chimes) Enabled() bool {
	return c.enabled
}

// Transition plays the note for effect.
func (c *Chimes) Transition(effect TransitionEffect) {
	c.play(150*time.Millisecond, chimeFrequency(effect))
}

// Loaded plays a short rising arpeggio.
func (c *Chimes) Loaded() {
	c.play(120*time.Millisecond, chimeScale[0], chimeScale[3], chimeScale[5])
}

func (c *Chimes) play(each time.Duration, freqs ...float64) {
	if !c.enabled {
		return
	}
	notes := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := generators.SineTone(chimeSampleRate, f)
		if err != nil {
			c.logger.Printf("chime %.0fHz: %v", f, err)
			continue
		}
		notes = append(notes, beep.Take(chimeSampleRate.N(each), tone))
	}
	if len(notes) == 0 {
		return
	}
	speaker.Play(&effects.Volume{Streamer: beep.Seq(notes...), Base: 2, Volume: -3})
}

// Close stops playback and releases the speaker.
func (c *Chimes) Close() {
	if c.enabled {
		speaker.Close()
		c.enabled = false
	}
}
