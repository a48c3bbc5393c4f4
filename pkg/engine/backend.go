// pkg/engine/backend.go
package engine

import (
	"errors"
	"fmt"

	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/physics"
)

// ErrUnknownBackend is returned for a physics backend name that is not registered.
var ErrUnknownBackend = errors.New("unknown physics backend")

// Backend advances every simulated body by one tick, consuming the Forces
// accumulated by the thruster stage and writing Transform and Velocity back.
type Backend interface {
	Name() string
	Step(dt float64)
	// Forget is called before an entity is removed from the world.
	Forget(e ark.Entity)
}

// newBackend creates the backend registered under name.
func newBackend(name string, world *ark.World, attached func(ark.Entity)) (Backend, error) {
	switch name {
	case "", config.BackendEuler:
		return newEulerBackend(world), nil
	case config.BackendFeather:
		return newFeatherBackend(world, attached), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// eulerBackend integrates bodies in place with physics.EulerIntegrator.
type eulerBackend struct {
	filter     *ark.Filter5[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties]
	integrator physics.Integrator
}

func newEulerBackend(world *ark.World) *eulerBackend {
	return &eulerBackend{
		filter:     ark.NewFilter5[physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties](world),
		integrator: physics.EulerIntegrator{},
	}
}

func (b *eulerBackend) Name() string { return config.BackendEuler }

func (b *eulerBackend) Step(dt float64) {
	query := b.filter.Query()
	for query.Next() {
		tr, vel, forces, mass, inertia := query.Get()
		b.integrator.Integrate(physics.Body{
			Transform: tr,
			Velocity:  vel,
			Forces:    forces,
			Mass:      mass,
			Inertia:   inertia,
		}, dt)
	}
}

func (b *eulerBackend) Forget(ark.Entity) {}
