// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/entity"
	"github.com/opd-ai/go-flightsim/pkg/event"
	"github.com/opd-ai/go-flightsim/pkg/flight"
	"github.com/opd-ai/go-flightsim/pkg/logging"
	"github.com/opd-ai/go-flightsim/pkg/physics"
	"github.com/opd-ai/go-flightsim/pkg/render"
	"github.com/opd-ai/go-flightsim/pkg/validation"
)

var (
	// ErrNoSuchEntity is returned when an entity is not alive in the simulation.
	ErrNoSuchEntity = errors.New("no such entity")
	// ErrNotAShip is returned when a ship operation targets scenery.
	ErrNotAShip = errors.New("entity is not a ship")
)

// Saturation warnings are limited to a few per ship per window.
const (
	saturationWarnings = 3
	saturationWindow   = 5 * time.Second
)

// Simulation owns the entity store and runs the flight pipeline over it:
// navigation, flight control, thruster allocation and integration, in that
// order, once per tick.
type Simulation struct {
	Config     *config.SimulationConfig
	EventBus   *event.Bus
	EntityLock sync.RWMutex
	Running    bool
	StartTime  time.Time
	// ElapsedTime is simulated seconds, not wall-clock time.
	ElapsedTime float64

	currentTick atomic.Uint64

	world     ark.World
	scheduler ecs.World
	frame     *frame
	backend   Backend
	pacer     *Pacer
	clock     TimeProvider
	logger    *logging.Logger
	ctx       context.Context
	waypoints *waypointSystem

	lastUpdate time.Time
	pending    []event.Event
	ids        map[entity.ID]ark.Entity
	player     ark.Entity

	ships      *ark.Map12[entity.Tag, physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties, physics.BoxCollider, flight.ThrusterLimits, flight.TargetVelocity, flight.FlightController, flight.AccelerationCommand, entity.Renderable]
	bodies     *ark.Map3[entity.Tag, physics.Transform, entity.Renderable]
	tags       *ark.Map[entity.Tag]
	transforms *ark.Map[physics.Transform]
	velocities *ark.Map[physics.Velocity]
	setpoints  *ark.Map[flight.TargetVelocity]
	targets    *ark.Map[flight.NavigationTarget]
	queues     *ark.Map[flight.NavigationQueue]
	manual     *ark.Map[flight.ManualControl]
	limits     *ark.Map[flight.ThrusterLimits]

	shipFilter     *ark.Filter4[entity.Tag, physics.Transform, physics.Velocity, flight.TargetVelocity]
	drawableFilter *ark.Filter2[physics.Transform, entity.Renderable]
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default writes JSON to stdout.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

// WithEventBus shares an existing event bus.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) { s.EventBus = bus }
}

// WithTimeProvider replaces the wall clock used by Start and Run.
func WithTimeProvider(clock TimeProvider) Option {
	return func(s *Simulation) { s.clock = clock }
}

// WithRunID tags every log record with the given run ID.
func WithRunID(runID string) Option {
	return func(s *Simulation) { s.ctx = logging.WithRunID(context.Background(), runID) }
}

// NewSimulation creates a simulation from a validated configuration and
// spawns the ships and bodies it lists.
func NewSimulation(cfg *config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		Config: cfg,
		world:  ark.NewWorld(),
		frame:  &frame{},
		clock:  systemClock{},
		ids:    make(map[entity.ID]ark.Entity),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.EventBus == nil {
		s.EventBus = event.NewEventBus()
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	if s.ctx == nil {
		s.ctx = logging.WithRunID(context.Background(), "")
	}
	s.frame.ctx = s.ctx

	capability, err := flight.Capability(cfg.Navigation.Capability)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg.Backend, &s.world, s.bodyAttached)
	if err != nil {
		return nil, err
	}
	s.backend = backend
	s.pacer = NewPacer(cfg.Pacing, cfg.FixedStep())

	s.initMappers()
	s.initSystems(flight.Resolver{Capability: capability})

	if err := s.spawnConfigured(); err != nil {
		return nil, err
	}

	s.logger.Info(s.ctx, "Simulation created",
		"backend", s.backend.Name(),
		"pacing", s.pacer.Mode(),
		"tick_rate", cfg.TickRate,
		"ships", len(cfg.Ships),
		"bodies", len(cfg.Bodies),
	)
	return s, nil
}

func (s *Simulation) initMappers() {
	w := &s.world
	s.ships = ark.NewMap12[entity.Tag, physics.Transform, physics.Velocity, physics.Forces, physics.MassProperties, physics.InertiaProperties, physics.BoxCollider, flight.ThrusterLimits, flight.TargetVelocity, flight.FlightController, flight.AccelerationCommand, entity.Renderable](w)
	s.bodies = ark.NewMap3[entity.Tag, physics.Transform, entity.Renderable](w)
	s.tags = ark.NewMap[entity.Tag](w)
	s.transforms = ark.NewMap[physics.Transform](w)
	s.velocities = ark.NewMap[physics.Velocity](w)
	s.setpoints = ark.NewMap[flight.TargetVelocity](w)
	s.targets = ark.NewMap[flight.NavigationTarget](w)
	s.queues = ark.NewMap[flight.NavigationQueue](w)
	s.manual = ark.NewMap[flight.ManualControl](w)
	s.limits = ark.NewMap[flight.ThrusterLimits](w)

	s.shipFilter = ark.NewFilter4[entity.Tag, physics.Transform, physics.Velocity, flight.TargetVelocity](w)
	s.drawableFilter = ark.NewFilter2[physics.Transform, entity.Renderable](w)
}

func (s *Simulation) initSystems(resolver flight.Resolver) {
	w := &s.world
	limiter := validation.NewRateLimiter(saturationWarnings, saturationWindow)
	s.waypoints = newWaypointSystem(w, s, s.emit)

	s.scheduler.AddSystem(newNavigationSystem(w, resolver))
	s.scheduler.AddSystem(newFlightControlSystem(w, s.frame, s.logger))
	s.scheduler.AddSystem(newThrusterSystem(w, s.frame, s.logger, limiter))
	s.scheduler.AddSystem(&physicsSystem{backend: s.backend, frame: s.frame})
	s.scheduler.AddSystem(s.waypoints)
}

func (s *Simulation) spawnConfigured() error {
	for i, sc := range s.Config.Ships {
		e, err := s.SpawnShip(ShipSpecFromConfig(sc))
		if err != nil {
			return fmt.Errorf("ships[%d]: %w", i, err)
		}
		if sc.Player {
			s.player = e
		}
	}
	for i, bc := range s.Config.Bodies {
		spec := BodySpec{
			Name:     bc.Name,
			Type:     entity.PlanetTypeFromString(bc.Type),
			Position: bc.Position,
			Radius:   bc.Radius,
		}
		if _, err := s.SpawnBody(spec); err != nil {
			return fmt.Errorf("bodies[%d]: %w", i, err)
		}
	}
	return nil
}

// Start marks the simulation running and restarts tick pacing from now.
func (s *Simulation) Start() {
	s.EntityLock.Lock()
	now := s.clock.Now()
	s.Running = true
	s.StartTime = now
	s.lastUpdate = now
	s.pacer.Reset(now)
	s.emit(event.NewSimulationEvent(event.SimulationStarted, s, logging.GetRunID(s.ctx), s.Ticks()))
	s.EntityLock.Unlock()

	s.logger.Info(s.ctx, "Simulation started")
	s.publishPending()
}

// Stop marks the simulation stopped.
func (s *Simulation) Stop() {
	s.EntityLock.Lock()
	s.Running = false
	s.emit(event.NewSimulationEvent(event.SimulationStopped, s, logging.GetRunID(s.ctx), s.Ticks()))
	s.EntityLock.Unlock()

	s.logger.Info(s.ctx, "Simulation stopped",
		"ticks", s.Ticks(),
		"simulated_seconds", s.ElapsedTime,
	)
	s.publishPending()
}

// Run drives Update from the clock at the configured tick rate until ctx is
// cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	period := time.Duration(s.Config.FixedStep() * float64(time.Second))
	if s.pacer.Mode() == config.PacingLossy {
		period = time.Duration(s.Config.Pacing.MinTickPeriod * float64(time.Second))
	}
	if period <= 0 {
		return fmt.Errorf("invalid tick period %v", period)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.Start()
	defer s.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Update(s.clock.Now())
		}
	}
}

// Update runs as many ticks as the pacer grants for the time since the
// previous call. A TickSkipped event reports a call that ran no tick, or
// backlog the substep cap threw away; its Elapsed is the time not simulated.
func (s *Simulation) Update(now time.Time) {
	s.EntityLock.Lock()
	elapsed := now.Sub(s.lastUpdate)
	s.lastUpdate = now

	steps, dropped, skipped := s.pacer.Advance(now)
	for _, dt := range steps {
		s.step(dt)
	}
	switch {
	case skipped:
		s.emit(event.NewTickEvent(event.TickSkipped, s, s.Ticks(), elapsed))
	case dropped > 0:
		s.emit(event.NewTickEvent(event.TickSkipped, s, s.Ticks(),
			time.Duration(dropped*float64(time.Second))))
	}
	s.EntityLock.Unlock()

	s.publishPending()
}

// Step runs exactly one tick of length dt.
func (s *Simulation) Step(dt float64) {
	s.EntityLock.Lock()
	s.step(dt)
	s.EntityLock.Unlock()

	s.publishPending()
}

func (s *Simulation) step(dt float64) {
	s.frame.dt = dt
	s.frame.tick = s.Ticks()
	s.scheduler.Update(float32(dt))

	s.currentTick.Add(1)
	if dt > 0 {
		s.ElapsedTime += dt
	}
}

// Ticks returns the number of ticks run so far. It is safe to call from
// any goroutine.
func (s *Simulation) Ticks() uint64 {
	return s.currentTick.Load()
}

// Elapsed returns the simulated seconds under the entity lock.
func (s *Simulation) Elapsed() float64 {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.ElapsedTime
}

// RunID returns the run identifier attached to every log record.
func (s *Simulation) RunID() string {
	return logging.GetRunID(s.ctx)
}

// Backend returns the name of the active physics backend.
func (s *Simulation) Backend() string {
	return s.backend.Name()
}

// Logger returns the simulation logger.
func (s *Simulation) Logger() *logging.Logger {
	return s.logger
}

func (s *Simulation) emit(e event.Event) {
	s.pending = append(s.pending, e)
}

// publishPending delivers queued events with the lock released, so handlers
// may call back into the simulation.
func (s *Simulation) publishPending() {
	s.EntityLock.Lock()
	events := s.pending
	s.pending = nil
	s.EntityLock.Unlock()

	for _, e := range events {
		s.EventBus.Publish(e)
	}
}

func (s *Simulation) bodyAttached(e ark.Entity) {
	tag := s.tags.Get(e)
	s.emit(event.NewBodyEvent(s, uint64(tag.ID()), s.backend.Name()))
	s.logger.Debug(s.ctx, "Rigid body attached",
		"ship", tag.Name,
		"backend", s.backend.Name(),
	)
}

// ShipSpec describes a ship to spawn. Zero-valued physical fields fall
// back to the stats of Class.
type ShipSpec struct {
	Name        string
	Class       entity.ShipClass
	Position    mgl64.Vec3
	Orientation mgl64.Quat

	Mass      float64
	Extents   mgl64.Vec3
	MaxForce  mgl64.Vec3
	MaxTorque mgl64.Vec3

	// ArrivalThreshold overrides the configured arrival radius when set.
	ArrivalThreshold *float64
	Target           *mgl64.Vec3
	Waypoints        []mgl64.Vec3
}

// ShipSpecFromConfig converts a configured ship into a spawn spec.
func ShipSpecFromConfig(sc config.ShipConfig) ShipSpec {
	return ShipSpec{
		Name:      sc.Name,
		Class:     sc.Class,
		Position:  sc.Position,
		Target:    sc.Target,
		Waypoints: sc.Waypoints,
	}
}

func (spec ShipSpec) stats() entity.ShipStats {
	stats := spec.Class.Stats()
	if spec.Mass != 0 {
		stats.Mass = spec.Mass
	}
	if spec.Extents != (mgl64.Vec3{}) {
		stats.Extents = spec.Extents
	}
	if spec.MaxForce != (mgl64.Vec3{}) {
		stats.MaxForce = spec.MaxForce
	}
	if spec.MaxTorque != (mgl64.Vec3{}) {
		stats.MaxTorque = spec.MaxTorque
	}
	return stats
}

// SpawnShip validates spec and creates a ship with every pipeline
// component in a single call.
func (s *Simulation) SpawnShip(spec ShipSpec) (ark.Entity, error) {
	name, err := validation.ValidateShipName(spec.Name)
	if err != nil {
		return ark.Entity{}, err
	}
	if err := validation.ValidateVec3("position", spec.Position); err != nil {
		return ark.Entity{}, err
	}

	stats := spec.stats()
	mass, err := physics.NewMassProperties(stats.Mass)
	if err != nil {
		return ark.Entity{}, err
	}
	hull, err := physics.NewBoxCollider(stats.Extents)
	if err != nil {
		return ark.Entity{}, err
	}
	inertia, err := hull.Inertia(mass.Mass)
	if err != nil {
		return ark.Entity{}, err
	}
	limits, err := flight.NewThrusterLimits(stats.MaxForce, stats.MaxTorque)
	if err != nil {
		return ark.Entity{}, err
	}

	threshold := s.Config.Navigation.ArrivalThreshold
	if spec.ArrivalThreshold != nil {
		threshold = *spec.ArrivalThreshold
	}
	if err := flight.ValidateThreshold(threshold); err != nil {
		return ark.Entity{}, err
	}

	var route []flight.NavigationTarget
	if spec.Target != nil {
		route = append(route, flight.NavigationTarget{Position: *spec.Target, ArrivalThreshold: threshold})
	}
	for _, wp := range spec.Waypoints {
		route = append(route, flight.NavigationTarget{Position: wp, ArrivalThreshold: threshold})
	}
	for i, t := range route {
		if err := validation.ValidateVec3(fmt.Sprintf("route[%d]", i), t.Position); err != nil {
			return ark.Entity{}, err
		}
	}

	tr := physics.NewTransform(spec.Position)
	if spec.Orientation != (mgl64.Quat{}) {
		tr.Orientation = physics.NormalizeQuat(spec.Orientation)
	}

	gains := s.Config.Controller
	controller := flight.NewFlightController(gains.Linear, gains.Angular)
	controller.Linear.IntegralLimit = gains.LinearIntegralLimit
	controller.Angular.IntegralLimit = gains.AngularIntegralLimit

	tag := entity.NewTag(name, entity.KindShip, spec.Class)
	renderable := entity.Renderable{Mesh: stats.Mesh, Color: stats.Color}

	s.EntityLock.Lock()
	e := s.ships.NewEntity(&tag, &tr, &physics.Velocity{}, &physics.Forces{}, &mass, &inertia, &hull, &limits,
		&flight.TargetVelocity{}, &controller, &flight.AccelerationCommand{}, &renderable)
	if len(route) > 0 {
		s.targets.Add(e, &route[0])
		s.queues.Add(e, &flight.NavigationQueue{Waypoints: route[1:]})
	}
	s.ids[tag.ID()] = e
	s.emit(event.NewShipEvent(event.ShipSpawned, s, uint64(tag.ID()), name, spec.Class.String()))
	s.EntityLock.Unlock()

	s.logger.Info(s.ctx, "Ship spawned",
		"ship", name,
		"id", tag.ID(),
		"class", spec.Class.String(),
		"mass", mass.Mass,
		"waypoints", len(route),
	)
	s.publishPending()
	return e, nil
}

// BodySpec describes static scenery.
type BodySpec struct {
	Name     string
	Type     entity.PlanetType
	Position mgl64.Vec3
	Radius   float64
}

// SpawnBody creates a planet. Bodies are drawn but never simulated.
func (s *Simulation) SpawnBody(spec BodySpec) (ark.Entity, error) {
	name, err := validation.ValidateShipName(spec.Name)
	if err != nil {
		return ark.Entity{}, err
	}
	if err := validation.ValidateVec3("position", spec.Position); err != nil {
		return ark.Entity{}, err
	}
	if err := validation.ValidatePositive("radius", spec.Radius); err != nil {
		return ark.Entity{}, err
	}

	planet := entity.NewPlanet(name, spec.Position, spec.Radius, spec.Type)
	tag := entity.NewTag(name, entity.KindBody, 0)
	tr := physics.NewTransform(planet.Position)
	tr.Scale = planet.Scale()
	renderable := planet.Renderable()

	s.EntityLock.Lock()
	e := s.bodies.NewEntity(&tag, &tr, &renderable)
	s.ids[tag.ID()] = e
	s.EntityLock.Unlock()

	s.logger.Debug(s.ctx, "Body spawned", "body", name, "radius", spec.Radius)
	return e, nil
}

// Player returns the configured player ship while it is alive.
func (s *Simulation) Player() (ark.Entity, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	if s.player.IsZero() || !s.world.Alive(s.player) {
		return ark.Entity{}, false
	}
	return s.player, true
}

// Lookup resolves a public ID to its entity.
func (s *Simulation) Lookup(id entity.ID) (ark.Entity, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	e, ok := s.ids[id]
	return e, ok
}

// requireShip must be called with the lock held.
func (s *Simulation) requireShip(e ark.Entity) error {
	if e.IsZero() || !s.world.Alive(e) {
		return fmt.Errorf("%w: %v", ErrNoSuchEntity, e)
	}
	if !s.limits.Has(e) {
		return fmt.Errorf("%w: %v", ErrNotAShip, e)
	}
	return nil
}

// SetNavigationTarget replaces the active target and hands the ship back to
// navigation if it was under manual control. Queued waypoints are kept.
func (s *Simulation) SetNavigationTarget(e ark.Entity, target flight.NavigationTarget) error {
	if err := flight.ValidateThreshold(target.ArrivalThreshold); err != nil {
		return err
	}
	if err := validation.ValidateVec3("target", target.Position); err != nil {
		return err
	}

	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if err := s.requireShip(e); err != nil {
		return err
	}

	if s.targets.Has(e) {
		*s.targets.Get(e) = target
	} else {
		s.targets.Add(e, &target)
	}
	if s.manual.Has(e) {
		s.manual.Remove(e)
	}
	s.waypoints.reset(s.tags.Get(e).Basic.ID())
	return nil
}

// QueueWaypoint appends a waypoint. A ship with no active target flies to
// it straight away.
func (s *Simulation) QueueWaypoint(e ark.Entity, target flight.NavigationTarget) error {
	if err := flight.ValidateThreshold(target.ArrivalThreshold); err != nil {
		return err
	}
	if err := validation.ValidateVec3("waypoint", target.Position); err != nil {
		return err
	}

	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if err := s.requireShip(e); err != nil {
		return err
	}

	if !s.targets.Has(e) {
		s.targets.Add(e, &target)
		s.waypoints.reset(s.tags.Get(e).Basic.ID())
		return nil
	}
	if !s.queues.Has(e) {
		s.queues.Add(e, &flight.NavigationQueue{})
	}
	s.queues.Get(e).Push(target)
	return nil
}

// ClearWaypoints drops the active target and every queued waypoint. The
// ship brakes to a stop.
func (s *Simulation) ClearWaypoints(e ark.Entity) error {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if err := s.requireShip(e); err != nil {
		return err
	}

	if s.queues.Has(e) {
		s.queues.Get(e).Clear()
	}
	if s.targets.Has(e) {
		s.targets.Remove(e)
	}
	*s.setpoints.Get(e) = flight.TargetVelocity{}
	return nil
}

// SetTargetVelocity drives the ship directly. Navigation is suspended for
// the ship until the next SetNavigationTarget or ReleaseManualControl.
func (s *Simulation) SetTargetVelocity(e ark.Entity, v flight.TargetVelocity) error {
	if err := validation.ValidateVec3("linear", v.Linear); err != nil {
		return err
	}
	if err := validation.ValidateVec3("angular", v.Angular); err != nil {
		return err
	}

	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if err := s.requireShip(e); err != nil {
		return err
	}

	if !s.manual.Has(e) {
		s.manual.Add(e, &flight.ManualControl{})
	}
	*s.setpoints.Get(e) = v
	return nil
}

// ReleaseManualControl hands the ship back to navigation. The manual
// setpoint is cleared, so a ship without a target brakes to a stop.
func (s *Simulation) ReleaseManualControl(e ark.Entity) error {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if err := s.requireShip(e); err != nil {
		return err
	}
	if !s.manual.Has(e) {
		return nil
	}
	s.manual.Remove(e)
	*s.setpoints.Get(e) = flight.TargetVelocity{}
	s.waypoints.reset(s.tags.Get(e).Basic.ID())
	return nil
}

// NavigationTarget returns the active target of a ship.
func (s *Simulation) NavigationTarget(e ark.Entity) (flight.NavigationTarget, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	if s.requireShip(e) != nil || !s.targets.Has(e) {
		return flight.NavigationTarget{}, false
	}
	return *s.targets.Get(e), true
}

// Despawn removes an entity. Backends and systems drop any per-entity state.
func (s *Simulation) Despawn(e ark.Entity) error {
	s.EntityLock.Lock()
	if e.IsZero() || !s.world.Alive(e) {
		s.EntityLock.Unlock()
		return fmt.Errorf("%w: %v", ErrNoSuchEntity, e)
	}

	tag := *s.tags.Get(e)
	s.backend.Forget(e)
	s.scheduler.RemoveEntity(tag.Basic)
	s.world.RemoveEntity(e)
	delete(s.ids, tag.ID())
	if tag.Kind == entity.KindShip {
		s.emit(event.NewShipEvent(event.ShipDespawned, s, uint64(tag.ID()), tag.Name, tag.Class.String()))
	}
	s.EntityLock.Unlock()

	s.logger.Info(s.ctx, "Entity despawned", "name", tag.Name, "kind", tag.Kind.String())
	s.publishPending()
	return nil
}

// ShipState is a read-only view of one ship.
type ShipState struct {
	ID              entity.ID
	Entity          ark.Entity
	Name            string
	Class           entity.ShipClass
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Setpoint        flight.TargetVelocity
	// Target is nil when the ship has no active target.
	Target    *mgl64.Vec3
	Distance  float64
	Waypoints int
	Manual    bool
}

// Snapshot returns the state of every ship ordered by ID.
func (s *Simulation) Snapshot() []ShipState {
	// Queries mutate the store's lock state, so readers serialize too.
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	var states []ShipState
	query := s.shipFilter.Query()
	for query.Next() {
		e := query.Entity()
		tag, tr, vel, setpoint := query.Get()
		states = append(states, s.shipState(e, tag, tr, vel, setpoint))
	}

	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// Ship returns the state of a single ship.
func (s *Simulation) Ship(e ark.Entity) (ShipState, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	if s.requireShip(e) != nil {
		return ShipState{}, false
	}
	return s.shipState(e, s.tags.Get(e), s.transforms.Get(e), s.velocities.Get(e), s.setpoints.Get(e)), true
}

func (s *Simulation) shipState(e ark.Entity, tag *entity.Tag, tr *physics.Transform, vel *physics.Velocity, setpoint *flight.TargetVelocity) ShipState {
	state := ShipState{
		ID:              tag.ID(),
		Entity:          e,
		Name:            tag.Name,
		Class:           tag.Class,
		Position:        tr.Position,
		Orientation:     tr.Orientation,
		LinearVelocity:  vel.Linear,
		AngularVelocity: vel.Angular,
		Setpoint:        *setpoint,
		Manual:          s.manual.Has(e),
	}
	if s.targets.Has(e) {
		target := s.targets.Get(e).Position
		state.Target = &target
		state.Distance = target.Sub(tr.Position).Len()
	}
	if s.queues.Has(e) {
		state.Waypoints = s.queues.Get(e).Len()
	}
	return state
}

// DrawInstances adds one instance per drawable entity to batcher.
func (s *Simulation) DrawInstances(batcher *render.Batcher) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	query := s.drawableFilter.Query()
	for query.Next() {
		tr, r := query.Get()
		batcher.Add(r.Mesh, render.Instance{Model: tr.ModelMatrix(), Color: r.Color})
	}
}
