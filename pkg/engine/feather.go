// pkg/engine/feather.go
package engine

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/physics"
)

// BodyHandle links an entity to its rigid body in the feather engine.
// It is attached lazily on the first physics tick after spawn.
type BodyHandle struct {
	Body *actor.RigidBody
}

type pendingBody struct {
	entity ark.Entity
	body   *actor.RigidBody
}

// featherBackend steps bodies with the feather rigid body engine. The ark
// components stay the source of truth: every tick they are copied into the
// engine, stepped, and copied back.
type featherBackend struct {
	pending *ark.Filter5[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties]
	bodies  *ark.Filter6[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties, BodyHandle]
	hulls   *ark.Map[physics.BoxCollider]
	handles *ark.Map[BodyHandle]

	created  []pendingBody
	attached func(ark.Entity)
	count    int
}

func newFeatherBackend(world *ark.World, attached func(ark.Entity)) *featherBackend {
	return &featherBackend{
		pending: ark.NewFilter5[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties](world).
			Without(ark.C[BodyHandle]()),
		bodies:   ark.NewFilter6[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties, BodyHandle](world),
		hulls:    ark.NewMap[physics.BoxCollider](world),
		handles:  ark.NewMap[BodyHandle](world),
		attached: attached,
	}
}

func (b *featherBackend) Name() string { return config.BackendFeather }

// Bodies returns the number of attached rigid bodies.
func (b *featherBackend) Bodies() int { return b.count }

func (b *featherBackend) Step(dt float64) {
	b.attach()

	query := b.bodies.Query()
	for query.Next() {
		tr, vel, forces, mass, inertia, handle := query.Get()
		if dt > 0 {
			stepBody(handle.Body, tr, vel, forces, mass, inertia, dt)
		}
		forces.Reset()
	}
}

// attach creates engine bodies for entities that do not have one yet.
// The world is locked while the query runs, so handles are inserted after
// it closes.
func (b *featherBackend) attach() {
	b.created = b.created[:0]

	query := b.pending.Query()
	for query.Next() {
		e := query.Entity()
		tr, _, _, mass, inertia := query.Get()
		transform := actor.Transform{
			Position:        tr.Position,
			Rotation:        tr.Orientation,
			InverseRotation: tr.Orientation.Inverse(),
		}

		var body *actor.RigidBody
		if b.hulls.Has(e) {
			hull := b.hulls.Get(e)
			body = actor.NewRigidBody(transform, &actor.Box{HalfExtents: hull.HalfExtents()},
				actor.BodyTypeDynamic, hull.Density(mass.Mass))
		} else {
			// No hull: a sphere matching the smallest principal moment.
			moment := inertia.Tensor.Diag()
			radius := math.Sqrt(math.Min(moment[0], math.Min(moment[1], moment[2])) / (0.4 * mass.Mass))
			density := mass.Mass / (4.0 / 3.0 * math.Pi * radius * radius * radius)
			body = actor.NewRigidBody(transform, &actor.Sphere{Radius: radius}, actor.BodyTypeDynamic, density)
		}
		body.Material.LinearDamping = 0
		body.Material.AngularDamping = 0

		b.created = append(b.created, pendingBody{entity: e, body: body})
	}

	for _, p := range b.created {
		b.handles.Add(p.entity, &BodyHandle{Body: p.body})
		b.count++
		if b.attached != nil {
			b.attached(p.entity)
		}
	}
}

// stepBody applies the accumulated forces as a velocity change, advances
// the engine body without gravity and copies the result back.
func stepBody(rb *actor.RigidBody, tr *physics.Transform, vel *physics.Velocity, forces *physics.Forces,
	mass *physics.MassProperties, inertia *physics.InertiaProperties, dt float64) {
	rb.Transform.Position = tr.Position
	rb.Transform.Rotation = tr.Orientation
	rb.Transform.InverseRotation = tr.Orientation.Inverse()

	invInertia := physics.WorldInverseInertia(tr.Orientation, inertia.InverseTensor)
	rb.Velocity = vel.Linear.Add(forces.Linear.Mul(mass.InverseMass * dt))
	rb.AngularVelocity = vel.Angular.Add(invInertia.Mul3x1(forces.Torque).Mul(dt))

	rb.Integrate(dt, mgl64.Vec3{})

	tr.Position = rb.Transform.Position
	tr.Orientation = physics.NormalizeQuat(rb.Transform.Rotation)
	vel.Linear = rb.Velocity
	vel.Angular = rb.AngularVelocity
}

func (b *featherBackend) Forget(e ark.Entity) {
	if b.handles.Has(e) {
		b.count--
	}
}
