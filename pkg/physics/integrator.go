// pkg/physics/integrator.go
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Body groups the components an integrator reads and mutates for one entity.
// All pointers must be non-nil.
type Body struct {
	Transform *Transform
	Velocity  *Velocity
	Forces    *Forces
	Mass      *MassProperties
	Inertia   *InertiaProperties
}

// Integrator advances one body by one tick from its accumulated forces and
// clears the force buffer afterwards.
type Integrator interface {
	Integrate(body Body, dt float64)
}

// EulerIntegrator is the built-in semi-implicit Euler integrator.
type EulerIntegrator struct{}

// Integrate implements Integrator.
func (EulerIntegrator) Integrate(b Body, dt float64) {
	defer b.Forces.Reset()
	if dt <= 0 {
		return
	}

	// Linear: velocity first, then position with the new velocity.
	accel := b.Forces.Linear.Mul(b.Mass.InverseMass)
	b.Velocity.Linear = b.Velocity.Linear.Add(accel.Mul(dt))
	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Linear.Mul(dt))

	// Angular
	invInertia := WorldInverseInertia(b.Transform.Orientation, b.Inertia.InverseTensor)
	angularAccel := invInertia.Mul3x1(b.Forces.Torque)
	b.Velocity.Angular = b.Velocity.Angular.Add(angularAccel.Mul(dt))

	b.Transform.Orientation = IntegrateOrientation(b.Transform.Orientation, b.Velocity.Angular, dt)
}

// WorldInverseInertia rotates a local inverse inertia tensor into world space:
// R · I⁻¹ · Rᵀ.
func WorldInverseInertia(orientation mgl64.Quat, localInverse mgl64.Mat3) mgl64.Mat3 {
	r := RotationMatrix(orientation)
	return r.Mul3(localInverse).Mul3(r.Transpose())
}

// IntegrateOrientation applies one first-order step of q̇ = ½·ω·q and
// renormalizes the result.
func IntegrateOrientation(q mgl64.Quat, angular mgl64.Vec3, dt float64) mgl64.Quat {
	omega := mgl64.Quat{W: 0, V: angular}
	qDot := omega.Mul(q).Scale(0.5)
	return NormalizeQuat(q.Add(qDot.Scale(dt)))
}
