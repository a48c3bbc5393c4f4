// pkg/flight/thruster.go
package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/physics"
)

// Allocation is what the thrusters actually produced for one command,
// in the local frame.
type Allocation struct {
	Force     mgl64.Vec3
	Torque    mgl64.Vec3
	Saturated bool
}

// AllocateThrust converts an acceleration command into force and torque,
// clamps each local axis to the thruster limits and adds the world-space
// result to forces.
func AllocateThrust(orientation mgl64.Quat, mass physics.MassProperties, inertia physics.InertiaProperties,
	cmd AccelerationCommand, limits ThrusterLimits, forces *physics.Forces) Allocation {
	inv := orientation.Inverse()

	desiredForce := inv.Rotate(cmd.Linear.Mul(mass.Mass))
	force := physics.ClampVec3(desiredForce, limits.MaxForce)

	// τ = I·α uses the local tensor, not its inverse.
	desiredTorque := inertia.Tensor.Mul3x1(inv.Rotate(cmd.Angular))
	torque := physics.ClampVec3(desiredTorque, limits.MaxTorque)

	forces.Add(orientation.Rotate(force), orientation.Rotate(torque))

	return Allocation{
		Force:     force,
		Torque:    torque,
		Saturated: force != desiredForce || torque != desiredTorque,
	}
}

// ManualControl marks a ship whose TargetVelocity is driven directly by
// input instead of by navigation.
type ManualControl struct{}
