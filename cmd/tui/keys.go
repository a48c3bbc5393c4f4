package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-flightsim/pkg/input"
)

// holdFor is how long a key counts as held after its last press.
// Terminals report repeats, never releases.
const holdFor = 150 * time.Millisecond

// runeKeys maps typed characters to flight keys. Shift cannot be seen on
// its own in a terminal, so descent is on x.
var runeKeys = map[rune]input.Key{
	'w': input.KeyW,
	's': input.KeyS,
	'a': input.KeyA,
	'd': input.KeyD,
	' ': input.KeySpace,
	'x': input.KeyShift,
	'i': input.KeyI,
	'k': input.KeyK,
	'j': input.KeyJ,
	'l': input.KeyL,
	'e': input.KeyE,
	'q': input.KeyQ,
	'm': input.KeyM,
}

// keyHold turns key presses into held keys with a timeout.
type keyHold struct {
	controller *input.Controller
	until      map[input.Key]time.Time
}

func newKeyHold(controller *input.Controller) *keyHold {
	return &keyHold{controller: controller, until: make(map[input.Key]time.Time)}
}

// press marks the key for ev as held. It reports whether ev was a flight key.
func (h *keyHold) press(ev *tcell.EventKey, now time.Time) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	key, ok := runeKeys[ev.Rune()]
	if !ok {
		return false
	}
	h.controller.KeyDown(key)
	h.until[key] = now.Add(holdFor)
	return true
}

// expire releases keys whose hold ran out.
func (h *keyHold) expire(now time.Time) {
	for key, until := range h.until {
		if !now.Before(until) {
			h.controller.KeyUp(key)
			delete(h.until, key)
		}
	}
}
