// pkg/input/controller.go
package input

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/engine"
	"github.com/opd-ai/go-flightsim/pkg/flight"
)

// ErrUnknownKey is returned by ParseKey for names that are not bound.
var ErrUnknownKey = errors.New("unknown key")

// ErrUnknownMode is returned for an input mode that is not supported.
var ErrUnknownMode = errors.New("unknown input mode")

// Key is a bound flight key.
type Key int

const (
	KeyW Key = iota
	KeyS
	KeyA
	KeyD
	KeySpace
	KeyShift
	KeyI
	KeyK
	KeyJ
	KeyL
	KeyE
	KeyQ
	KeyM
	keyCount
)

var keyNames = [keyCount]string{"W", "S", "A", "D", "Space", "Shift", "I", "K", "J", "L", "E", "Q", "M"}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey looks a key up by name, ignoring case.
func ParseKey(name string) (Key, error) {
	for i, n := range keyNames {
		if strings.EqualFold(n, name) {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Mode selects what held keys drive.
type Mode int

const (
	// ModeWaypoint nudges the active navigation target.
	ModeWaypoint Mode = iota
	// ModeVelocity commands velocities directly and suspends navigation.
	ModeVelocity
)

func (m Mode) String() string {
	if m == ModeVelocity {
		return config.InputVelocity
	}
	return config.InputWaypoint
}

// ParseMode maps a config input mode to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", config.InputWaypoint:
		return ModeWaypoint, nil
	case config.InputVelocity:
		return ModeVelocity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Pilot is the part of the simulation the controller drives.
// *engine.Simulation satisfies it.
type Pilot interface {
	Ship(e ark.Entity) (engine.ShipState, bool)
	NavigationTarget(e ark.Entity) (flight.NavigationTarget, bool)
	SetNavigationTarget(e ark.Entity, target flight.NavigationTarget) error
	SetTargetVelocity(e ark.Entity, v flight.TargetVelocity) error
	ReleaseManualControl(e ark.Entity) error
}

var _ Pilot = (*engine.Simulation)(nil)

// axis pairs a positive and a negative key along one local axis.
type axis struct {
	plus, minus Key
}

// Translation keys per local axis X, Y, Z.
var translation = [3]axis{
	{plus: KeyA, minus: KeyD},
	{plus: KeySpace, minus: KeyShift},
	{plus: KeyW, minus: KeyS},
}

// Rotation keys per local axis X, Y, Z.
var rotation = [3]axis{
	{plus: KeyI, minus: KeyK},
	{plus: KeyJ, minus: KeyL},
	{plus: KeyE, minus: KeyQ},
}

var unitAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Controller tracks held keys and turns them into flight commands once
// per tick. Key events may arrive from another goroutine.
type Controller struct {
	mu        sync.Mutex
	held      [keyCount]bool
	mode      Mode
	manual    bool // the last Apply wrote a velocity setpoint
	step      float64
	rotate    float64
	linear    float64
	angular   float64
	threshold float64
}

// NewController creates a controller from the input settings. threshold
// is the arrival radius used when a key press creates a new target.
func NewController(cfg config.InputConfig, threshold float64) (*Controller, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if err := flight.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Controller{
		mode:      mode,
		step:      cfg.Step,
		rotate:    cfg.RotateStep,
		linear:    cfg.LinearSpeed,
		angular:   cfg.AngularSpeed,
		threshold: threshold,
	}, nil
}

// KeyDown marks a key as held.
func (c *Controller) KeyDown(k Key) {
	c.set(k, true)
}

// KeyUp releases a key.
func (c *Controller) KeyUp(k Key) {
	c.set(k, false)
}

func (c *Controller) set(k Key, down bool) {
	if k < 0 || k >= keyCount {
		return
	}
	c.mu.Lock()
	c.held[k] = down
	c.mu.Unlock()
}

// Held reports whether a key is down.
func (c *Controller) Held(k Key) bool {
	if k < 0 || k >= keyCount {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[k]
}

// ReleaseAll clears the held-key set, e.g. when the window loses focus.
func (c *Controller) ReleaseAll() {
	c.mu.Lock()
	c.held = [keyCount]bool{}
	c.mu.Unlock()
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches between waypoint and velocity control.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

// intent sums the held keys along each axis of a pair set.
func (c *Controller) intent(held *[keyCount]bool, pairs [3]axis) mgl64.Vec3 {
	var v mgl64.Vec3
	for i, p := range pairs {
		if held[p.plus] {
			v[i]++
		}
		if held[p.minus] {
			v[i]--
		}
	}
	return v
}

// Apply pushes the held keys into the simulation for ship e. Call it once
// per tick before stepping.
func (c *Controller) Apply(p Pilot, e ark.Entity) error {
	c.mu.Lock()
	held := c.held
	mode := c.mode
	c.mu.Unlock()

	ship, ok := p.Ship(e)
	if !ok {
		return fmt.Errorf("%w: %v", engine.ErrNotAShip, e)
	}

	if mode == ModeVelocity {
		local := c.intent(&held, translation).Mul(c.linear)
		spin := c.intent(&held, rotation).Mul(c.angular)
		if err := p.SetTargetVelocity(e, flight.TargetVelocity{
			Linear:  ship.Orientation.Rotate(local),
			Angular: ship.Orientation.Rotate(spin),
		}); err != nil {
			return err
		}
		c.setManual(true)
		return nil
	}

	if c.isManual() {
		if err := p.ReleaseManualControl(e); err != nil {
			return err
		}
		c.setManual(false)
	}
	return c.applyWaypoint(p, e, ship, &held)
}

func (c *Controller) setManual(v bool) {
	c.mu.Lock()
	c.manual = v
	c.mu.Unlock()
}

func (c *Controller) isManual() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manual
}

func (c *Controller) applyWaypoint(p Pilot, e ark.Entity, ship engine.ShipState, held *[keyCount]bool) error {
	move := c.intent(held, translation)
	turn := c.intent(held, rotation)
	reset := held[KeyM]
	if move == (mgl64.Vec3{}) && turn == (mgl64.Vec3{}) && !reset {
		return nil
	}

	target, ok := p.NavigationTarget(e)
	if !ok {
		target = flight.NavigationTarget{Position: ship.Position, ArrivalThreshold: c.threshold}
	}
	target.Position = target.Position.Add(move.Mul(c.step))

	if turn != (mgl64.Vec3{}) {
		q := mgl64.QuatIdent()
		if target.Orientation != nil {
			q = *target.Orientation
		}
		for i, n := range turn {
			if n != 0 {
				delta := mgl64.QuatRotate(n*c.rotate, unitAxes[i])
				q = q.Mul(delta).Normalize()
			}
		}
		target.Orientation = &q
	}
	if reset {
		ident := mgl64.QuatIdent()
		target.Orientation = &ident
	}

	return p.SetNavigationTarget(e, target)
}
