// Package physics holds the rigid-body components and the math shared by the
// flight pipeline. Vectors, quaternions and matrices are mgl64 values.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector or rotation is treated as zero.
const Epsilon = 1e-12

// Local frame principal axes.
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// SafeNormalize returns v scaled to unit length and true, or the zero vector
// and false when v is too short (or not finite) to have a direction.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	length := v.Len()
	if length < Epsilon || math.IsNaN(length) || math.IsInf(length, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / length), true
}

// ClampVec3 clamps each component of v to [-limit[i], limit[i]].
func ClampVec3(v, limit mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range v {
		out[i] = math.Max(-limit[i], math.Min(limit[i], v[i]))
	}
	return out
}

// MulElem returns the component-wise product a ⊙ b.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivElem returns the component-wise quotient a ⊘ b.
func DivElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// AllPositive reports whether every component of v is finite and > 0.
func AllPositive(v mgl64.Vec3) bool {
	if !IsFinite(v) {
		return false
	}
	return v[0] > 0 && v[1] > 0 && v[2] > 0
}

// NegateQuat returns -q, which encodes the same rotation as q.
func NegateQuat(q mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
}

// NormalizeQuat returns q at unit length. Zero, NaN or infinite quaternions
// collapse to the identity so a bad value never propagates.
func NormalizeQuat(q mgl64.Quat) mgl64.Quat {
	length := q.Len()
	if length < Epsilon || math.IsNaN(length) || math.IsInf(length, 0) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W / length, V: q.V.Mul(1 / length)}
}

// AxisAngle decomposes a unit quaternion into a rotation axis and an angle in
// [0, 2π]. A rotation too small to define an axis returns the zero axis and 0.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	s := q.V.Len()
	if s < 1e-9 || math.IsNaN(s) {
		return mgl64.Vec3{}, 0
	}
	return q.V.Mul(1 / s), 2 * math.Atan2(s, q.W)
}

// RotationMatrix returns the 3×3 rotation matrix of the unit quaternion q.
func RotationMatrix(q mgl64.Quat) mgl64.Mat3 {
	return q.Mat4().Mat3()
}
