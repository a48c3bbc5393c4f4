package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/input"
)

func newTestHold(t *testing.T) (*keyHold, *input.Controller) {
	t.Helper()
	controller, err := input.NewController(config.DefaultConfig().Input, 1)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return newKeyHold(controller), controller
}

func TestKeyHold_Press(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		key  input.Key
		ok   bool
	}{
		{"forward", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), input.KeyW, true},
		{"descend", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), input.KeyShift, true},
		{"climb", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), input.KeySpace, true},
		{"unbound rune", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), 0, false},
		{"special key", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hold, controller := newTestHold(t)
			if got := hold.press(tt.ev, time.Unix(0, 0)); got != tt.ok {
				t.Fatalf("press() = %v, want %v", got, tt.ok)
			}
			if tt.ok && !controller.Held(tt.key) {
				t.Errorf("%v should be held", tt.key)
			}
		})
	}
}

func TestKeyHold_Expire(t *testing.T) {
	hold, controller := newTestHold(t)
	start := time.Unix(100, 0)

	hold.press(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), start)
	hold.expire(start.Add(holdFor / 2))
	if !controller.Held(input.KeyW) {
		t.Fatal("W released too early")
	}

	// A repeat extends the hold.
	hold.press(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), start.Add(holdFor/2))
	hold.expire(start.Add(holdFor))
	if !controller.Held(input.KeyW) {
		t.Fatal("repeat should extend the hold")
	}

	hold.expire(start.Add(2 * holdFor))
	if controller.Held(input.KeyW) {
		t.Error("W should be released after the hold")
	}
	if len(hold.until) != 0 {
		t.Errorf("expired keys should be forgotten, got %v", hold.until)
	}
}

func TestRuneKeys_Distinct(t *testing.T) {
	seen := make(map[input.Key]rune)
	for r, key := range runeKeys {
		if prev, ok := seen[key]; ok {
			t.Errorf("%v bound to both %q and %q", key, prev, r)
		}
		seen[key] = r
	}
	if len(seen) != 13 {
		t.Errorf("expected every flight key bound, got %d", len(seen))
	}
}
