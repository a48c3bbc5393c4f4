// pkg/engine/systems.go
package engine

import (
	"context"
	"strconv"

	"github.com/EngoEngine/ecs"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/entity"
	"github.com/opd-ai/go-flightsim/pkg/event"
	"github.com/opd-ai/go-flightsim/pkg/flight"
	"github.com/opd-ai/go-flightsim/pkg/logging"
	"github.com/opd-ai/go-flightsim/pkg/physics"
	"github.com/opd-ai/go-flightsim/pkg/validation"
)

// System priorities. The scheduler runs higher priorities first.
const (
	PriorityNavigation    = 100
	PriorityFlightControl = 90
	PriorityThruster      = 80
	PriorityPhysics       = 70
	PriorityWaypoint      = 60
)

// frame carries the full-precision tick length to every system; the
// scheduler only hands out float32.
type frame struct {
	dt   float64
	tick uint64
	ctx  context.Context
}

// navigationSystem resolves the active NavigationTarget of every ship that
// is not under manual control into a TargetVelocity.
type navigationSystem struct {
	filter   *ark.Filter6[physics.Transform, flight.NavigationTarget, flight.ThrusterLimits, physics.MassProperties, physics.InertiaProperties, flight.TargetVelocity]
	resolver flight.Resolver
}

func newNavigationSystem(world *ark.World, resolver flight.Resolver) *navigationSystem {
	return &navigationSystem{
		filter: ark.NewFilter6[physics.Transform, flight.NavigationTarget, flight.ThrusterLimits, physics.MassProperties, physics.InertiaProperties, flight.TargetVelocity](world).
			Without(ark.C[flight.ManualControl]()),
		resolver: resolver,
	}
}

func (s *navigationSystem) Priority() int { return PriorityNavigation }

func (s *navigationSystem) Update(float32) {
	query := s.filter.Query()
	for query.Next() {
		tr, target, limits, mass, inertia, out := query.Get()
		s.resolver.Resolve(*tr, *target, *limits, *mass, *inertia, out)
	}
}

func (s *navigationSystem) Remove(ecs.BasicEntity) {}

// flightControlSystem runs each ship's PID loops.
type flightControlSystem struct {
	filter *ark.Filter4[flight.TargetVelocity, physics.Velocity, flight.FlightController, flight.AccelerationCommand]
	frame  *frame
	logger *logging.Logger
}

func newFlightControlSystem(world *ark.World, f *frame, logger *logging.Logger) *flightControlSystem {
	return &flightControlSystem{
		filter: ark.NewFilter4[flight.TargetVelocity, physics.Velocity, flight.FlightController, flight.AccelerationCommand](world),
		frame:  f,
		logger: logger,
	}
}

func (s *flightControlSystem) Priority() int { return PriorityFlightControl }

func (s *flightControlSystem) Update(float32) {
	skipped := 0
	query := s.filter.Query()
	for query.Next() {
		target, vel, controller, cmd := query.Get()
		if !controller.Update(*target, vel.Linear, vel.Angular, s.frame.dt, cmd) {
			skipped++
		}
	}
	if skipped > 0 {
		s.logger.Debug(s.frame.ctx, "Controller update skipped",
			"tick", s.frame.tick,
			"dt", s.frame.dt,
			"ships", skipped,
		)
	}
}

func (s *flightControlSystem) Remove(ecs.BasicEntity) {}

// thrusterSystem turns acceleration commands into clamped force and torque.
type thrusterSystem struct {
	filter  *ark.Filter7[entity.Tag, physics.Transform, physics.MassProperties, physics.InertiaProperties, flight.AccelerationCommand, flight.ThrusterLimits, physics.Forces]
	frame   *frame
	logger  *logging.Logger
	limiter *validation.RateLimiter
}

func newThrusterSystem(world *ark.World, f *frame, logger *logging.Logger, limiter *validation.RateLimiter) *thrusterSystem {
	return &thrusterSystem{
		filter:  ark.NewFilter7[entity.Tag, physics.Transform, physics.MassProperties, physics.InertiaProperties, flight.AccelerationCommand, flight.ThrusterLimits, physics.Forces](world),
		frame:   f,
		logger:  logger,
		limiter: limiter,
	}
}

func (s *thrusterSystem) Priority() int { return PriorityThruster }

func (s *thrusterSystem) Update(float32) {
	query := s.filter.Query()
	for query.Next() {
		tag, tr, mass, inertia, cmd, limits, forces := query.Get()
		alloc := flight.AllocateThrust(tr.Orientation, *mass, *inertia, *cmd, *limits, forces)
		if alloc.Saturated && s.limiter.Allow(saturationKey(tag.Basic)) {
			s.logger.Debug(s.frame.ctx, "Thrusters saturated",
				"ship", tag.Name,
				"tick", s.frame.tick,
				"force", alloc.Force,
				"torque", alloc.Torque,
			)
		}
	}
}

func (s *thrusterSystem) Remove(basic ecs.BasicEntity) {
	s.limiter.Forget(saturationKey(basic))
}

func saturationKey(basic ecs.BasicEntity) string {
	return strconv.FormatUint(basic.ID(), 10)
}

// physicsSystem hands the tick to the configured backend.
type physicsSystem struct {
	backend Backend
	frame   *frame
}

func (s *physicsSystem) Priority() int { return PriorityPhysics }

func (s *physicsSystem) Update(float32) {
	s.backend.Step(s.frame.dt)
}

func (s *physicsSystem) Remove(ecs.BasicEntity) {}

// waypointSystem advances the navigation queue once a ship is inside the
// arrival radius of its active target. Ships under manual control keep
// their queue untouched.
type waypointSystem struct {
	filter  *ark.Filter3[entity.Tag, physics.Transform, flight.NavigationTarget]
	queues  *ark.Map[flight.NavigationQueue]
	emit    func(event.Event)
	source  interface{}
	arrived map[uint64]bool
}

func newWaypointSystem(world *ark.World, source interface{}, emit func(event.Event)) *waypointSystem {
	return &waypointSystem{
		filter: ark.NewFilter3[entity.Tag, physics.Transform, flight.NavigationTarget](world).
			Without(ark.C[flight.ManualControl]()),
		queues:  ark.NewMap[flight.NavigationQueue](world),
		emit:    emit,
		source:  source,
		arrived: make(map[uint64]bool),
	}
}

func (s *waypointSystem) Priority() int { return PriorityWaypoint }

func (s *waypointSystem) Update(float32) {
	query := s.filter.Query()
	for query.Next() {
		tag, tr, target := query.Get()
		id := tag.Basic.ID()
		if d := target.Position.Sub(tr.Position).Len(); d >= target.ArrivalThreshold && d > 0 {
			continue
		}

		e := query.Entity()
		if s.queues.Has(e) {
			queue := s.queues.Get(e)
			if next, ok := queue.Pop(); ok {
				reached := target.Position
				*target = next
				delete(s.arrived, id)
				s.emit(event.NewNavigationEvent(event.WaypointReached, s.source, id, reached, queue.Len()))
				continue
			}
		}

		if !s.arrived[id] {
			s.arrived[id] = true
			s.emit(event.NewNavigationEvent(event.TargetArrived, s.source, id, target.Position, 0))
		}
	}
}

// reset re-arms the arrival event after the target changed.
func (s *waypointSystem) reset(id uint64) {
	delete(s.arrived, id)
}

func (s *waypointSystem) Remove(basic ecs.BasicEntity) {
	delete(s.arrived, basic.ID())
}
