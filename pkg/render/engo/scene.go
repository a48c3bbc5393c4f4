// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/engine"
	"github.com/opd-ai/go-flightsim/pkg/event"
	"github.com/opd-ai/go-flightsim/pkg/input"
	"github.com/opd-ai/go-flightsim/pkg/render"
)

// FlightScene shows a running simulation top-down and flies the player
// ship from the keyboard.
type FlightScene struct {
	sim        *engine.Simulation
	controller *input.Controller
	player     ark.Entity

	driver   *SimulationSystem
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem

	subscription *event.Subscription
}

// NewFlightScene creates a new flight scene
func NewFlightScene(sim *engine.Simulation, controller *input.Controller, player ark.Entity) *FlightScene {
	return &FlightScene{
		sim:        sim,
		controller: controller,
		player:     player,
	}
}

// Type returns the scene type (required by Engo)
func (scene *FlightScene) Type() string {
	return "FlightScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *FlightScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *FlightScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(color.Black)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	SetupInputBindings()
	scene.input = NewInputSystem(scene.controller)
	world.AddSystem(scene.input)

	scene.camera = NewCameraSystem()
	world.AddSystem(scene.camera)

	scene.renderer = NewEngoRenderer(renderSystem, scene.camera)
	scene.driver = NewSimulationSystem(scene.sim, scene.controller, scene.player, scene.renderer, scene.camera)
	world.AddSystem(scene.driver)

	scene.subscribeToEvents()
	scene.sim.Start()
}

// subscribeToEvents stops following the player once its ship is gone.
func (scene *FlightScene) subscribeToEvents() {
	state, ok := scene.sim.Ship(scene.player)
	if !ok {
		return
	}
	playerID := uint64(state.ID)
	scene.subscription = scene.sim.EventBus.Subscribe(event.ShipDespawned, func(e event.Event) {
		if ship, ok := e.(*event.ShipEvent); ok && ship.ShipID == playerID {
			scene.camera.ClearTarget()
		}
	})
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *FlightScene) Exit() {
	scene.sim.Stop()
	if scene.subscription != nil {
		scene.subscription.Cancel()
	}
	if scene.renderer != nil {
		scene.renderer.Release()
	}
}

// SimulationSystem advances the simulation once per frame and draws it.
type SimulationSystem struct {
	sim        *engine.Simulation
	controller *input.Controller
	player     ark.Entity
	renderer   render.Renderer
	camera     *CameraSystem
	batcher    *render.Batcher
	now        func() time.Time
}

// NewSimulationSystem creates the per-frame driver.
func NewSimulationSystem(sim *engine.Simulation, controller *input.Controller, player ark.Entity,
	renderer render.Renderer, camera *CameraSystem) *SimulationSystem {
	return &SimulationSystem{
		sim:        sim,
		controller: controller,
		player:     player,
		renderer:   renderer,
		camera:     camera,
		batcher:    render.NewBatcher(render.MaxInstances),
		now:        time.Now,
	}
}

// Add satisfies the ecs.System interface
func (ss *SimulationSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (ss *SimulationSystem) Remove(basic ecs.BasicEntity) {}

// Update applies input, advances the simulation on the wall clock and
// draws the frame.
func (ss *SimulationSystem) Update(dt float32) {
	ss.apply()
	ss.sim.Update(ss.now())
	ss.draw()
}

func (ss *SimulationSystem) apply() {
	if ss.controller == nil {
		return
	}
	if err := ss.controller.Apply(ss.sim, ss.player); err != nil {
		ss.sim.Logger().Debug(context.Background(), "Input not applied", "error", err)
	}
}

func (ss *SimulationSystem) draw() {
	if state, ok := ss.sim.Ship(ss.player); ok {
		ss.camera.SetTarget(mgl64.Vec2{state.Position.X(), state.Position.Z()})
	}

	ss.batcher.Reset()
	ss.sim.DrawInstances(ss.batcher)
	ss.batcher.Flush(ss.renderer)
}
