// cmd/tui/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/engine"
	"github.com/opd-ai/go-flightsim/pkg/entity"
	"github.com/opd-ai/go-flightsim/pkg/event"
	"github.com/opd-ai/go-flightsim/pkg/input"
	"github.com/opd-ai/go-flightsim/pkg/logging"
	"github.com/opd-ai/go-flightsim/pkg/render"
)

const (
	frameInterval       = 16 * time.Millisecond
	statusLines         = 2
	meshTarget          = render.MeshID("target")
	defaultCellsPerUnit = 4.0
)

var glyphs = map[render.MeshID]rune{
	entity.MeshAlbatross: 'A',
	entity.MeshShuttle:   'S',
	entity.MeshFreighter: 'F',
	entity.MeshPlanet:    'O',
	meshTarget:           '+',
}

type app struct {
	screen     tcell.Screen
	sim        *engine.Simulation
	controller *input.Controller
	hold       *keyHold
	player     ark.Entity
	term       *render.TerminalRenderer
	batcher    *render.Batcher
	sound      *chime
	logger     *logging.Logger
	ctx        context.Context
}

func main() {
	configPath := flag.String("config", "flightsim.json", "Path to configuration file")
	template := flag.String("template", "", "Scenario template to apply")
	logPath := flag.String("log", "", "Write logs to this file (default: discard)")
	sound := flag.Bool("sound", true, "Chime on waypoint arrival")
	flag.Parse()

	logger, closeLog, err := openLog(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	a, err := newApp(logger, *configPath, *template, *sound)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.cleanup()
	a.run()
}

func openLog(path string) (*logging.Logger, func(), error) {
	if path == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(os.Getenv("FLIGHTSIM_LOG_LEVEL"))
	return logging.NewLoggerWithWriter(f, level), func() { f.Close() }, nil
}

func newApp(logger *logging.Logger, configPath, template string, sound bool) (*app, error) {
	simConfig, err := config.LoadConfigWithTemplate(configPath, template)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		return nil, err
	}

	sim, err := engine.NewSimulation(simConfig, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	player, ok := sim.Player()
	if !ok {
		ships := sim.Snapshot()
		if len(ships) == 0 {
			return nil, fmt.Errorf("configuration has no ships to fly")
		}
		player = ships[0].Entity
	}

	controller, err := input.NewController(simConfig.Input, simConfig.Navigation.ArrivalThreshold)
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	a := &app{
		screen:     screen,
		sim:        sim,
		controller: controller,
		hold:       newKeyHold(controller),
		player:     player,
		batcher:    render.NewBatcher(render.MaxInstances),
		logger:     logger,
		ctx:        logging.WithRunID(context.Background(), sim.RunID()),
	}
	a.resize(1 / defaultCellsPerUnit)

	a.sound, err = newChime(sound)
	if err != nil {
		// Non-fatal, the simulation runs without sound
		logger.Warn(a.ctx, "Audio initialization failed", "error", err.Error())
	}
	a.subscribeToEvents()
	return a, nil
}

func (a *app) subscribeToEvents() {
	a.sim.EventBus.Subscribe(event.WaypointReached, func(event.Event) {
		a.sound.play(660, 60*time.Millisecond)
	})
	a.sim.EventBus.Subscribe(event.TargetArrived, func(event.Event) {
		a.sound.play(880, 120*time.Millisecond)
	})
}

// resize rebuilds the terminal renderer for the current screen size,
// keeping scale world units per cell.
func (a *app) resize(scale float64) {
	width, height := a.screen.Size()
	height -= statusLines
	if height < 1 {
		height = 1
	}
	a.term = render.NewTerminalRenderer(width, height, scale)
	a.term.SetOutput(io.Discard)
	for mesh, glyph := range glyphs {
		a.term.SetGlyph(mesh, glyph)
	}
}

func (a *app) handleInput(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			if a.controller.Mode() == input.ModeWaypoint {
				a.controller.SetMode(input.ModeVelocity)
			} else {
				a.controller.SetMode(input.ModeWaypoint)
			}
			return true
		}
		if a.hold.press(ev, now) {
			return true
		}
		switch ev.Rune() {
		case '+', '=':
			a.term.SetScale(a.term.Scale() / 1.25)
		case '-':
			a.term.SetScale(a.term.Scale() * 1.25)
		}
	case *tcell.EventResize:
		a.resize(a.term.Scale())
		a.screen.Sync()
	}
	return true
}

func (a *app) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	a.sim.Start()
	defer a.sim.Stop()

	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev, time.Now()) {
				return
			}
		case now := <-ticker.C:
			a.hold.expire(now)
			if err := a.controller.Apply(a.sim, a.player); err != nil {
				a.logger.Debug(a.ctx, "Input not applied", "error", err.Error())
			}
			a.sim.Update(now)
			a.draw()
		}
	}
}

func (a *app) draw() {
	state, alive := a.sim.Ship(a.player)
	if alive {
		a.term.SetCenter(mgl64.Vec2{state.Position.X(), state.Position.Z()})
	}

	a.batcher.Reset()
	a.sim.DrawInstances(a.batcher)
	a.batcher.Flush(a.term)
	if alive && state.Target != nil {
		t := *state.Target
		a.term.Submit(meshTarget, render.Instance{Model: mgl64.Translate3D(t.X(), t.Y(), t.Z())})
	}

	a.screen.Clear()
	for y, row := range a.term.Rows() {
		x := 0
		for _, r := range row {
			a.screen.SetContent(x, y, r, nil, glyphStyle(r))
			x++
		}
	}

	_, height := a.term.Size()
	a.drawText(0, height, tcell.StyleDefault.Reverse(true), a.statusLine(state, alive))
	a.drawText(0, height+1, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"wasd/space/x move  ijkl/eq rotate  m level  tab mode  +/- zoom  esc quit")
	a.screen.Show()
}

func (a *app) statusLine(state engine.ShipState, alive bool) string {
	if !alive {
		return fmt.Sprintf(" tick %d  ship lost", a.sim.Ticks())
	}
	line := fmt.Sprintf(" %s [%s]  tick %d  pos (%.1f, %.1f, %.1f)  speed %.2f",
		state.Name, a.controller.Mode(), a.sim.Ticks(),
		state.Position.X(), state.Position.Y(), state.Position.Z(), state.LinearVelocity.Len())
	if state.Target != nil {
		line += fmt.Sprintf("  dist %.1f", state.Distance)
	}
	if state.Waypoints > 0 {
		line += fmt.Sprintf("  queued %d", state.Waypoints)
	}
	return line
}

func (a *app) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func glyphStyle(r rune) tcell.Style {
	switch r {
	case 'A', 'S', 'F':
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case 'O':
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case '+':
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault
	}
}

func (a *app) cleanup() {
	a.sound.close()
	a.screen.Fini()
}
