// cmd/viewer/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/EngoEngine/engo"
	ark "github.com/mlange-42/ark/ecs"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/engine"
	"github.com/opd-ai/go-flightsim/pkg/input"
	"github.com/opd-ai/go-flightsim/pkg/logging"
	engorender "github.com/opd-ai/go-flightsim/pkg/render/engo"
)

var errNoShips = errors.New("configuration has no ships to fly")

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "flightsim.json", "Path to configuration file")
	template := flag.String("template", "", "Scenario template to apply")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	flag.Parse()

	simConfig, err := config.LoadConfigWithTemplate(*configPath, *template)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	sim, err := engine.NewSimulation(simConfig, engine.WithLogger(logger))
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	player, err := pickPlayer(sim)
	if err != nil {
		logger.Error(ctx, "No ship to control", err)
		os.Exit(1)
	}

	controller, err := input.NewController(simConfig.Input, simConfig.Navigation.ArrivalThreshold)
	if err != nil {
		logger.Error(ctx, "Failed to create input controller", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting viewer",
		"width", *width,
		"height", *height,
		"input_mode", controller.Mode().String(),
	)

	scene := engorender.NewFlightScene(sim, controller, player)
	engo.Run(engo.RunOptions{
		Title:      "Flight Sim",
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
		VSync:      true,
	}, scene)
}

// pickPlayer returns the configured player ship, or the first ship.
func pickPlayer(sim *engine.Simulation) (ark.Entity, error) {
	if e, ok := sim.Player(); ok {
		return e, nil
	}
	ships := sim.Snapshot()
	if len(ships) == 0 {
		return ark.Entity{}, errNoShips
	}
	return ships[0].Entity, nil
}
