// pkg/flight/controller.go
package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinDeltaTime is the smallest time step the controller will act on.
// Anything shorter would blow up the derivative term.
const MinDeltaTime = 1e-9

// Gains are the proportional, integral and derivative coefficients of a PID loop.
type Gains struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
}

// PID is one three-axis control loop together with its persistent state.
type PID struct {
	Gains Gains
	// IntegralLimit clamps the integral per axis to ±IntegralLimit.
	// Zero disables the clamp.
	IntegralLimit float64

	Integral  mgl64.Vec3
	PrevError mgl64.Vec3
}

// Step advances the loop by dt and returns the control output.
// Callers must ensure dt >= MinDeltaTime.
func (p *PID) Step(target, current mgl64.Vec3, dt float64) mgl64.Vec3 {
	err := target.Sub(current)

	p.Integral = p.Integral.Add(err.Mul(dt))
	if p.IntegralLimit > 0 {
		for i := 0; i < 3; i++ {
			p.Integral[i] = math.Max(-p.IntegralLimit, math.Min(p.IntegralLimit, p.Integral[i]))
		}
	}

	derivative := err.Sub(p.PrevError).Mul(1 / dt)
	p.PrevError = err

	return err.Mul(p.Gains.Kp).
		Add(p.Integral.Mul(p.Gains.Ki)).
		Add(derivative.Mul(p.Gains.Kd))
}

// Reset clears the accumulated state, keeping the gains.
func (p *PID) Reset() {
	p.Integral = mgl64.Vec3{}
	p.PrevError = mgl64.Vec3{}
}

// AccelerationCommand is the acceleration the controller asks the
// allocator for, in world space.
type AccelerationCommand struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// FlightController owns the linear and angular PID loops of a single ship.
// It is never shared between entities.
type FlightController struct {
	Linear  PID
	Angular PID
}

// NewFlightController creates a controller with zeroed state.
func NewFlightController(linear, angular Gains) FlightController {
	return FlightController{
		Linear:  PID{Gains: linear},
		Angular: PID{Gains: angular},
	}
}

// Update runs both loops and writes the result into cmd. When dt is below
// MinDeltaTime nothing changes and false is returned.
func (c *FlightController) Update(target TargetVelocity, linear, angular mgl64.Vec3, dt float64, cmd *AccelerationCommand) bool {
	if !(dt >= MinDeltaTime) {
		return false
	}
	cmd.Linear = c.Linear.Step(target.Linear, linear, dt)
	cmd.Angular = c.Angular.Step(target.Angular, angular, dt)
	return true
}

// Reset clears both loops.
func (c *FlightController) Reset() {
	c.Linear.Reset()
	c.Angular.Reset()
}
