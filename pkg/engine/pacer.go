// pkg/engine/pacer.go
package engine

import (
	"sync"
	"time"

	"github.com/opd-ai/go-flightsim/pkg/config"
)

// TimeProvider supplies wall-clock time to the simulation.
type TimeProvider interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock is a TimeProvider that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Pacer turns wall-clock time into tick lengths.
//
// In lossy mode every call that sees at least MinTickPeriod of elapsed time
// runs one tick of exactly that length, and shorter gaps are skipped. In
// fixed mode elapsed time is banked and paid out in whole fixed steps, at
// most MaxSubsteps per call.
type Pacer struct {
	mode        string
	step        float64
	minPeriod   float64
	maxSubsteps int

	last        time.Time
	started     bool
	accumulator float64
	steps       []float64
}

// NewPacer creates a pacer for the given settings. step is the fixed tick
// length in seconds.
func NewPacer(cfg config.PacingConfig, step float64) *Pacer {
	maxSubsteps := cfg.MaxSubsteps
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}
	return &Pacer{
		mode:        cfg.Mode,
		step:        step,
		minPeriod:   cfg.MinTickPeriod,
		maxSubsteps: maxSubsteps,
	}
}

// Mode returns the pacing mode.
func (p *Pacer) Mode() string {
	return p.mode
}

// Reset forgets banked time and restarts measuring from now.
func (p *Pacer) Reset(now time.Time) {
	p.last = now
	p.started = true
	p.accumulator = 0
}

// Advance returns the tick lengths to run for the time elapsed since the
// previous call, the seconds of backlog discarded by the substep cap, and
// whether the call was skipped entirely. The returned slice is reused by
// the next call.
func (p *Pacer) Advance(now time.Time) (steps []float64, dropped float64, skipped bool) {
	p.steps = p.steps[:0]
	if !p.started {
		p.Reset(now)
		return p.steps, 0, false
	}

	elapsed := now.Sub(p.last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if p.mode == config.PacingLossy {
		if elapsed < p.minPeriod {
			return p.steps, 0, true
		}
		p.last = now
		return append(p.steps, elapsed), 0, false
	}

	p.last = now
	if p.step <= 0 {
		return p.steps, 0, true
	}
	p.accumulator += elapsed
	for p.accumulator >= p.step {
		if len(p.steps) == p.maxSubsteps {
			// Behind by more than the cap; the backlog is dropped.
			dropped = p.accumulator
			p.accumulator = 0
			break
		}
		p.steps = append(p.steps, p.step)
		p.accumulator -= p.step
	}
	return p.steps, dropped, len(p.steps) == 0
}
