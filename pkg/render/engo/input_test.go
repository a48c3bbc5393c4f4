// pkg/render/engo/input_test.go
package engo

import (
	"testing"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/input"
)

func newTestController(t *testing.T) *input.Controller {
	t.Helper()
	c, err := input.NewController(config.DefaultConfig().Input, 1)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestKeyBindings_CoverEveryKey(t *testing.T) {
	for _, name := range []string{"W", "S", "A", "D", "Space", "Shift", "I", "K", "J", "L", "E", "Q", "M"} {
		key, err := input.ParseKey(name)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", name, err)
		}
		if _, ok := keyBindings[key]; !ok {
			t.Errorf("No engo binding for %s", name)
		}
	}
}

func TestInputSystem_Poll(t *testing.T) {
	controller := newTestController(t)
	is := NewInputSystem(controller)

	pressed := map[string]bool{"W": true, "Space": true}
	is.poll(func(name string) bool { return pressed[name] })

	if !controller.Held(input.KeyW) || !controller.Held(input.KeySpace) {
		t.Error("Expected W and Space held")
	}
	if controller.Held(input.KeyS) {
		t.Error("S should not be held")
	}

	pressed = map[string]bool{"S": true}
	is.poll(func(name string) bool { return pressed[name] })
	if controller.Held(input.KeyW) {
		t.Error("W should be released")
	}
	if !controller.Held(input.KeyS) {
		t.Error("Expected S held")
	}
}

func TestInputSystem_ToggleMode(t *testing.T) {
	controller := newTestController(t)
	is := NewInputSystem(controller)

	is.ToggleMode()
	if controller.Mode() != input.ModeVelocity {
		t.Errorf("Expected velocity mode, got %v", controller.Mode())
	}
	is.ToggleMode()
	if controller.Mode() != input.ModeWaypoint {
		t.Errorf("Expected waypoint mode, got %v", controller.Mode())
	}
}
