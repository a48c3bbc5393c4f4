package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// chime plays short tones. A missing audio device leaves it silent.
type chime struct {
	enabled bool
}

func newChime(enabled bool) (*chime, error) {
	if !enabled {
		return &chime{}, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &chime{}, err
	}
	return &chime{enabled: true}, nil
}

// play sounds a tone of freq Hz.
func (c *chime) play(freq float64, d time.Duration) {
	if !c.enabled {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

func (c *chime) close() {
	if c.enabled {
		speaker.Close()
	}
}
