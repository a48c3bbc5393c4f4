// pkg/flight/navigation.go
package flight

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/physics"
)

// ErrInvalidThreshold is returned for a negative or non-finite arrival radius.
var ErrInvalidThreshold = errors.New("arrival threshold must be a finite non-negative number")

// NavigationTarget is the waypoint a ship is flying to.
type NavigationTarget struct {
	Position mgl64.Vec3
	// Orientation is optional; nil leaves attitude uncontrolled.
	Orientation      *mgl64.Quat
	ArrivalThreshold float64
}

// NewNavigationTarget validates the arrival threshold.
func NewNavigationTarget(position mgl64.Vec3, threshold float64) (NavigationTarget, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return NavigationTarget{}, err
	}
	return NavigationTarget{Position: position, ArrivalThreshold: threshold}, nil
}

// ValidateThreshold checks an arrival radius.
func ValidateThreshold(threshold float64) error {
	if !(threshold >= 0) || math.IsInf(threshold, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// WithOrientation returns a copy of the target that also requests an attitude.
func (t NavigationTarget) WithOrientation(q mgl64.Quat) NavigationTarget {
	q = physics.NormalizeQuat(q)
	t.Orientation = &q
	return t
}

// TargetVelocity is the velocity setpoint fed to the flight controller.
type TargetVelocity struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// NavigationQueue holds the waypoints to visit after the active target.
type NavigationQueue struct {
	Waypoints []NavigationTarget
}

// Push appends a waypoint.
func (q *NavigationQueue) Push(t NavigationTarget) {
	q.Waypoints = append(q.Waypoints, t)
}

// Pop removes and returns the next waypoint.
func (q *NavigationQueue) Pop() (NavigationTarget, bool) {
	if len(q.Waypoints) == 0 {
		return NavigationTarget{}, false
	}
	next := q.Waypoints[0]
	q.Waypoints = q.Waypoints[1:]
	return next, true
}

// Len returns the number of queued waypoints.
func (q *NavigationQueue) Len() int {
	return len(q.Waypoints)
}

// Clear drops every queued waypoint.
func (q *NavigationQueue) Clear() {
	q.Waypoints = nil
}

// Resolver turns navigation targets into velocity setpoints.
type Resolver struct {
	// Capability bounds the linear setpoint. Nil means
	// MaxAccelerationInDirection.
	Capability CapabilityFunc
}

// ResolveNavigation runs the default resolver.
func ResolveNavigation(tr physics.Transform, target NavigationTarget, limits ThrusterLimits,
	mass physics.MassProperties, inertia physics.InertiaProperties, out *TargetVelocity) bool {
	return Resolver{}.Resolve(tr, target, limits, mass, inertia, out)
}

// Resolve overwrites out with the setpoint that flies tr to target and reports
// whether the ship is inside the arrival radius.
//
// Speeds follow the braking law v = sqrt(2·a·d): the fastest speed from which
// full deceleration still stops at the target.
func (r Resolver) Resolve(tr physics.Transform, target NavigationTarget, limits ThrusterLimits,
	mass physics.MassProperties, inertia physics.InertiaProperties, out *TargetVelocity) bool {
	out.Angular = angularSetpoint(tr.Orientation, target.Orientation, limits, inertia)

	toTarget := target.Position.Sub(tr.Position)
	distance := toTarget.Len()
	if distance < target.ArrivalThreshold {
		out.Linear = mgl64.Vec3{}
		return true
	}

	direction, ok := physics.SafeNormalize(toTarget)
	if !ok {
		// Sitting exactly on a zero-radius target.
		out.Linear = mgl64.Vec3{}
		return true
	}

	capability := r.Capability
	if capability == nil {
		capability = MaxAccelerationInDirection
	}
	accel := capability(direction, tr.Orientation, limits, mass.Mass)
	out.Linear = direction.Mul(math.Sqrt(2 * accel * distance))
	return false
}

func angularSetpoint(current mgl64.Quat, target *mgl64.Quat, limits ThrusterLimits, inertia physics.InertiaProperties) mgl64.Vec3 {
	if target == nil {
		return mgl64.Vec3{}
	}
	e := target.Mul(current.Inverse())
	if e.W < 0 {
		e = physics.NegateQuat(e)
	}
	axis, angle := physics.AxisAngle(e)
	if angle < physics.Epsilon {
		return mgl64.Vec3{}
	}

	alpha := physics.MulElem(inertia.InverseDiagonal(), limits.MaxTorque)
	var w mgl64.Vec3
	for i := 0; i < 3; i++ {
		w[i] = axis[i] * math.Sqrt(2*alpha[i]*angle)
	}
	return w
}
