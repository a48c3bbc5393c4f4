// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-flightsim/pkg/input"
)

// Button names registered with engo.
const (
	buttonToggleMode = "toggleMode"
	buttonZoomIn     = "zoomIn"
	buttonZoomOut    = "zoomOut"
	buttonResetZoom  = "resetZoom"
)

// keyBindings maps every flight key to its engo key.
var keyBindings = map[input.Key]engo.Key{
	input.KeyW:     engo.KeyW,
	input.KeyS:     engo.KeyS,
	input.KeyA:     engo.KeyA,
	input.KeyD:     engo.KeyD,
	input.KeySpace: engo.KeySpace,
	input.KeyShift: engo.KeyLeftShift,
	input.KeyI:     engo.KeyI,
	input.KeyK:     engo.KeyK,
	input.KeyJ:     engo.KeyJ,
	input.KeyL:     engo.KeyL,
	input.KeyE:     engo.KeyE,
	input.KeyQ:     engo.KeyQ,
	input.KeyM:     engo.KeyM,
}

// InputSystem copies engo's keyboard state into a flight controller
type InputSystem struct {
	controller *input.Controller
}

// NewInputSystem creates a new input system
func NewInputSystem(controller *input.Controller) *InputSystem {
	return &InputSystem{controller: controller}
}

// Add satisfies the ecs.System interface
func (is *InputSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls the registered buttons
func (is *InputSystem) Update(dt float32) {
	is.poll(func(name string) bool {
		return engo.Input.Button(name).Down()
	})
	if engo.Input.Button(buttonToggleMode).JustPressed() {
		is.ToggleMode()
	}
}

// poll syncs the held-key set with down, which reports a button by name.
func (is *InputSystem) poll(down func(name string) bool) {
	for key := range keyBindings {
		if down(key.String()) {
			is.controller.KeyDown(key)
		} else {
			is.controller.KeyUp(key)
		}
	}
}

// ToggleMode switches between waypoint and velocity control
func (is *InputSystem) ToggleMode() {
	if is.controller.Mode() == input.ModeWaypoint {
		is.controller.SetMode(input.ModeVelocity)
	} else {
		is.controller.SetMode(input.ModeWaypoint)
	}
}

// SetupInputBindings registers the flight and camera buttons
func SetupInputBindings() {
	for key, engoKey := range keyBindings {
		engo.Input.RegisterButton(key.String(), engoKey)
	}
	engo.Input.RegisterButton(buttonToggleMode, engo.KeyTab)
	engo.Input.RegisterButton(buttonZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(buttonZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(buttonResetZoom, engo.KeyR)
}
