// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/entity"
	"github.com/opd-ai/go-flightsim/pkg/flight"
	"github.com/opd-ai/go-flightsim/pkg/validation"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Physics backends
const (
	BackendEuler   = "euler"
	BackendFeather = "feather"
)

// Pacing modes
const (
	PacingFixed = "fixed"
	PacingLossy = "lossy"
)

// Input modes
const (
	InputWaypoint = "waypoint"
	InputVelocity = "velocity"
)

// SimulationConfig contains configuration for a simulation run
type SimulationConfig struct {
	// TickRate is the fixed step rate in Hz.
	TickRate   float64          `json:"tickRate"`
	Backend    string           `json:"backend"`
	Pacing     PacingConfig     `json:"pacing"`
	Navigation NavigationConfig `json:"navigation"`
	Controller ControllerConfig `json:"controller"`
	Input      InputConfig      `json:"input"`
	Ships      []ShipConfig     `json:"ships"`
	Bodies     []BodyConfig     `json:"bodies"`
}

// PacingConfig controls how wall-clock time is turned into ticks
type PacingConfig struct {
	Mode string `json:"mode"`
	// MinTickPeriod is the lossy gate in seconds.
	MinTickPeriod float64 `json:"minTickPeriod"`
	// MaxSubsteps caps the ticks a fixed-mode update may run.
	MaxSubsteps int `json:"maxSubsteps"`
}

// NavigationConfig contains navigation defaults
type NavigationConfig struct {
	Capability       string  `json:"capability"`
	ArrivalThreshold float64 `json:"arrivalThreshold"`
}

// ControllerConfig contains the PID gains shared by every ship
type ControllerConfig struct {
	Linear               flight.Gains `json:"linear"`
	Angular              flight.Gains `json:"angular"`
	LinearIntegralLimit  float64      `json:"linearIntegralLimit"`
	AngularIntegralLimit float64      `json:"angularIntegralLimit"`
}

// InputConfig contains keyboard mapping parameters
type InputConfig struct {
	Mode string `json:"mode"`
	// Step is the waypoint offset per tick while a key is held.
	Step float64 `json:"step"`
	// RotateStep is the target rotation in radians per tick.
	RotateStep   float64 `json:"rotateStep"`
	LinearSpeed  float64 `json:"linearSpeed"`
	AngularSpeed float64 `json:"angularSpeed"`
}

// ShipConfig describes a ship spawned at startup
type ShipConfig struct {
	Name      string           `json:"name"`
	Class     entity.ShipClass `json:"class"`
	Position  mgl64.Vec3       `json:"position"`
	Target    *mgl64.Vec3      `json:"target,omitempty"`
	Waypoints []mgl64.Vec3     `json:"waypoints,omitempty"`
	// Player marks the ship driven by keyboard input.
	Player bool `json:"player,omitempty"`
}

// BodyConfig describes static scenery
type BodyConfig struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Position mgl64.Vec3 `json:"position"`
	Radius   float64    `json:"radius"`
}

// FixedStep returns the tick length in seconds.
func (c *SimulationConfig) FixedStep() float64 {
	if c.TickRate <= 0 {
		return 0
	}
	return 1 / c.TickRate
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimulationConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default simulation configuration: one Albatross
// at the origin and a planet in the distance.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		TickRate: 60,
		Backend:  BackendEuler,
		Pacing: PacingConfig{
			Mode:          PacingFixed,
			MinTickPeriod: 1.0 / 70,
			MaxSubsteps:   5,
		},
		Navigation: NavigationConfig{
			Capability:       flight.CapabilityEllipsoid,
			ArrivalThreshold: 2,
		},
		Controller: ControllerConfig{
			Linear:  flight.Gains{Kp: 1, Ki: 0, Kd: 0.1},
			Angular: flight.Gains{Kp: 2, Ki: 0, Kd: 0.5},
		},
		Input: InputConfig{
			Mode:         InputWaypoint,
			Step:         0.2,
			RotateStep:   0.01,
			LinearSpeed:  20,
			AngularSpeed: 0.5,
		},
		Ships: []ShipConfig{
			{
				Name:   "Albatross",
				Class:  entity.Albatross,
				Player: true,
			},
		},
		Bodies: []BodyConfig{
			{
				Name:     "Tethys",
				Type:     "Rocky",
				Position: mgl64.Vec3{500, 500, 500},
				Radius:   500,
			},
		},
	}
}

// Validate reports every problem in the configuration at once.
func (c *SimulationConfig) Validate() error {
	var v validation.Collector

	v.Check(validation.ValidatePositive("tickRate", c.TickRate))
	v.Check(validation.ValidateOneOf("backend", c.Backend, BackendEuler, BackendFeather))

	v.Check(validation.ValidateOneOf("pacing.mode", c.Pacing.Mode, PacingFixed, PacingLossy))
	v.Check(validation.ValidatePositive("pacing.minTickPeriod", c.Pacing.MinTickPeriod))
	if c.Pacing.MaxSubsteps < 1 {
		v.Check(fmt.Errorf("pacing.maxSubsteps must be at least 1, got %d", c.Pacing.MaxSubsteps))
	}

	v.Check(validation.ValidateOneOf("navigation.capability", c.Navigation.Capability,
		flight.CapabilityEllipsoid, flight.CapabilityBox))
	v.Check(validation.ValidateNonNegative("navigation.arrivalThreshold", c.Navigation.ArrivalThreshold))

	g := c.Controller
	v.Check(validation.ValidateGains("controller.linear", g.Linear.Kp, g.Linear.Ki, g.Linear.Kd))
	v.Check(validation.ValidateGains("controller.angular", g.Angular.Kp, g.Angular.Ki, g.Angular.Kd))
	v.Check(validation.ValidateNonNegative("controller.linearIntegralLimit", g.LinearIntegralLimit))
	v.Check(validation.ValidateNonNegative("controller.angularIntegralLimit", g.AngularIntegralLimit))

	v.Check(validation.ValidateOneOf("input.mode", c.Input.Mode, InputWaypoint, InputVelocity))
	v.Check(validation.ValidateNonNegative("input.step", c.Input.Step))
	v.Check(validation.ValidateNonNegative("input.rotateStep", c.Input.RotateStep))
	v.Check(validation.ValidateNonNegative("input.linearSpeed", c.Input.LinearSpeed))
	v.Check(validation.ValidateNonNegative("input.angularSpeed", c.Input.AngularSpeed))

	players := 0
	for i, s := range c.Ships {
		field := fmt.Sprintf("ships[%d]", i)
		if _, err := validation.ValidateShipName(s.Name); err != nil {
			v.Check(fmt.Errorf("%s: %w", field, err))
		}
		v.Check(validation.ValidateVec3(field+".position", s.Position))
		if s.Target != nil {
			v.Check(validation.ValidateVec3(field+".target", *s.Target))
		}
		for j, wp := range s.Waypoints {
			v.Check(validation.ValidateVec3(fmt.Sprintf("%s.waypoints[%d]", field, j), wp))
		}
		if s.Player {
			players++
		}
	}
	if players > 1 {
		v.Check(fmt.Errorf("at most one player ship allowed, got %d", players))
	}

	for i, b := range c.Bodies {
		field := fmt.Sprintf("bodies[%d]", i)
		v.Check(validation.ValidateVec3(field+".position", b.Position))
		v.Check(validation.ValidatePositive(field+".radius", b.Radius))
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
