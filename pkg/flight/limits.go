// Package flight implements the closed-loop flight-control pipeline:
// navigation turns waypoints into velocity setpoints, a PID controller turns
// velocity error into acceleration, and the thruster allocator clamps that
// acceleration to what the hull can physically produce.
package flight

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/physics"
)

// ErrInvalidLimits is returned when a thrust or torque limit is not positive.
var ErrInvalidLimits = errors.New("thruster limits must be positive on every axis")

// ThrusterLimits are the per-axis force and torque limits in the local frame.
//
// Navigation treats MaxForce as the semi-axes of an ellipsoid, while the
// allocator clamps each axis independently (a box). The two agree on the
// principal axes only.
type ThrusterLimits struct {
	MaxForce  mgl64.Vec3
	MaxTorque mgl64.Vec3
}

// NewThrusterLimits validates that every component is finite and positive.
func NewThrusterLimits(maxForce, maxTorque mgl64.Vec3) (ThrusterLimits, error) {
	if !physics.AllPositive(maxForce) {
		return ThrusterLimits{}, fmt.Errorf("%w: max force %v", ErrInvalidLimits, maxForce)
	}
	if !physics.AllPositive(maxTorque) {
		return ThrusterLimits{}, fmt.Errorf("%w: max torque %v", ErrInvalidLimits, maxTorque)
	}
	return ThrusterLimits{MaxForce: maxForce, MaxTorque: maxTorque}, nil
}

// MaxAccelerationInDirection returns the largest acceleration the thrusters
// can sustain along the world-space direction d.
//
// The direction is rotated into the local frame and intersected with the
// ellipsoid (x/Fx)² + (y/Fy)² + (z/Fz)² = 1. A zero direction yields 0.
func MaxAccelerationInDirection(d mgl64.Vec3, orientation mgl64.Quat, limits ThrusterLimits, mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	local := orientation.Inverse().Rotate(d)
	scaled := physics.DivElem(local, limits.MaxForce)
	n := scaled.Len()
	if n < physics.Epsilon || math.IsNaN(n) {
		return 0
	}
	return local.Mul(1/n).Len() / mass
}

// BoxMaxAccelerationInDirection is the box-shaped counterpart of
// MaxAccelerationInDirection: the ray is scaled until its first local
// component hits its limit, which is exactly what the allocator can deliver
// without clipping the direction.
func BoxMaxAccelerationInDirection(d mgl64.Vec3, orientation mgl64.Quat, limits ThrusterLimits, mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	local := orientation.Inverse().Rotate(d)
	ratio := 0.0
	for i := 0; i < 3; i++ {
		ratio = math.Max(ratio, math.Abs(local[i])/limits.MaxForce[i])
	}
	if ratio < physics.Epsilon || math.IsNaN(ratio) {
		return 0
	}
	return local.Mul(1/ratio).Len() / mass
}

// CapabilityFunc computes the sustainable acceleration along a direction.
type CapabilityFunc func(d mgl64.Vec3, orientation mgl64.Quat, limits ThrusterLimits, mass float64) float64

// Capability returns the capability model registered under name:
// "ellipsoid" (or empty) or "box".
func Capability(name string) (CapabilityFunc, error) {
	switch name {
	case "", CapabilityEllipsoid:
		return MaxAccelerationInDirection, nil
	case CapabilityBox:
		return BoxMaxAccelerationInDirection, nil
	default:
		return nil, fmt.Errorf("unknown capability model %q", name)
	}
}

// Capability model names.
const (
	CapabilityEllipsoid = "ellipsoid"
	CapabilityBox       = "box"
)
