// pkg/physics/body.go
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidMass is returned when a mass is not a finite positive number.
	ErrInvalidMass = errors.New("mass must be a finite positive number")
	// ErrInvalidInertia is returned when an inertia tensor is not positive definite.
	ErrInvalidInertia = errors.New("inertia tensor must be positive definite")
	// ErrInvalidShape is returned for collider dimensions that are not positive.
	ErrInvalidShape = errors.New("shape dimensions must be positive")
)

// Transform is the pose of a body in world space.
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Scale       mgl64.Vec3
}

// NewTransform creates a transform at position with identity orientation and unit scale.
func NewTransform(position mgl64.Vec3) Transform {
	return Transform{
		Position:    position,
		Orientation: mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

// ModelMatrix returns the column-major model matrix: scale, then orientation,
// then translation.
func (t Transform) ModelMatrix() mgl64.Mat4 {
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Orientation.Mat4()).Mul4(scale)
}

// LocalToWorld rotates a local-frame vector into world space.
func (t Transform) LocalToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Rotate(v)
}

// WorldToLocal rotates a world-space vector into the local frame.
func (t Transform) WorldToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Inverse().Rotate(v)
}

// Forward is the world-space direction of the local +Z axis.
func (t Transform) Forward() mgl64.Vec3 {
	return t.LocalToWorld(AxisZ)
}

// MassProperties holds a body's mass and its cached inverse.
type MassProperties struct {
	Mass        float64
	InverseMass float64
}

// NewMassProperties validates mass and derives the inverse.
func NewMassProperties(mass float64) (MassProperties, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return MassProperties{}, fmt.Errorf("%w: got %v", ErrInvalidMass, mass)
	}
	return MassProperties{Mass: mass, InverseMass: 1 / mass}, nil
}

// InertiaProperties holds the local-frame inertia tensor and its inverse.
type InertiaProperties struct {
	Tensor        mgl64.Mat3
	InverseTensor mgl64.Mat3
}

// NewInertiaProperties builds a diagonal tensor from the principal moments.
func NewInertiaProperties(principal mgl64.Vec3) (InertiaProperties, error) {
	if !AllPositive(principal) {
		return InertiaProperties{}, fmt.Errorf("%w: principal moments %v", ErrInvalidInertia, principal)
	}
	inverse := mgl64.Vec3{1 / principal[0], 1 / principal[1], 1 / principal[2]}
	return InertiaProperties{
		Tensor:        mgl64.Diag3(principal),
		InverseTensor: mgl64.Diag3(inverse),
	}, nil
}

// BoxInertia returns the inertia of a solid box with full extents (x, y, z).
func BoxInertia(mass float64, extents mgl64.Vec3) (InertiaProperties, error) {
	if _, err := NewMassProperties(mass); err != nil {
		return InertiaProperties{}, err
	}
	if !AllPositive(extents) {
		return InertiaProperties{}, fmt.Errorf("%w: box extents %v", ErrInvalidShape, extents)
	}
	x2, y2, z2 := extents[0]*extents[0], extents[1]*extents[1], extents[2]*extents[2]
	k := mass / 12
	return NewInertiaProperties(mgl64.Vec3{k * (y2 + z2), k * (x2 + z2), k * (x2 + y2)})
}

// SphereInertia returns the inertia of a solid sphere.
func SphereInertia(mass, radius float64) (InertiaProperties, error) {
	if _, err := NewMassProperties(mass); err != nil {
		return InertiaProperties{}, err
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return InertiaProperties{}, fmt.Errorf("%w: sphere radius %v", ErrInvalidShape, radius)
	}
	i := 0.4 * mass * radius * radius
	return NewInertiaProperties(mgl64.Vec3{i, i, i})
}

// InverseDiagonal returns the diagonal of the inverse tensor.
func (i InertiaProperties) InverseDiagonal() mgl64.Vec3 {
	return i.InverseTensor.Diag()
}

// Velocity is the world-frame linear and angular velocity of a body.
type Velocity struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// Forces accumulates world-frame force and torque for the current tick.
type Forces struct {
	Linear mgl64.Vec3
	Torque mgl64.Vec3
}

// Add accumulates force and torque.
func (f *Forces) Add(force, torque mgl64.Vec3) {
	f.Linear = f.Linear.Add(force)
	f.Torque = f.Torque.Add(torque)
}

// Reset zeroes both accumulators.
func (f *Forces) Reset() {
	f.Linear = mgl64.Vec3{}
	f.Torque = mgl64.Vec3{}
}

// IsZero reports whether nothing has been accumulated.
func (f Forces) IsZero() bool {
	return f.Linear == (mgl64.Vec3{}) && f.Torque == (mgl64.Vec3{})
}
