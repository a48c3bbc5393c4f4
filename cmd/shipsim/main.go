// cmd/shipsim/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/engine"
	"github.com/opd-ai/go-flightsim/pkg/event"
	"github.com/opd-ai/go-flightsim/pkg/health"
	"github.com/opd-ai/go-flightsim/pkg/logging"
	"github.com/opd-ai/go-flightsim/pkg/network"
	"github.com/opd-ai/go-flightsim/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "", "Path to configuration file (default $FLIGHTSIM_CONFIG or flightsim.json)")
	template := flag.String("template", "", "Scenario template to apply")
	listTemplates := flag.Bool("templates", false, "List scenario templates and exit")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	if *listTemplates {
		templates := config.ListScenarioTemplates()
		names := make([]string, 0, len(templates))
		for name := range templates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-12s %s\n", name, templates[name])
		}
		return
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}
	if *configPath == "" {
		*configPath = envConfig.ConfigPath
	}
	if *configPath == "" {
		*configPath = "flightsim.json"
	}

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	simConfig, err := config.LoadConfigWithTemplate(*configPath, *template)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
			"template", *template,
		)
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
	ctx = logging.WithRunID(ctx, sim.RunID())
	subscribeToEvents(ctx, logger, sim)

	resources := resource.NewResourceManager(envConfig, logger, health.CurrentMemoryMB)
	if err := resources.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}

	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(envConfig.StallWindow, sim.Ticks))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(int64(envConfig.MaxMemoryMB), health.CurrentMemoryMB))
	healthChecker.AddCheck(resource.NewResourceHealthCheck(resources))
	healthChecker.SetInfo(func() health.SimulationInfo {
		return health.SimulationInfo{
			RunID:            sim.RunID(),
			Backend:          sim.Backend(),
			Ticks:            sim.Ticks(),
			SimulatedSeconds: sim.Elapsed(),
			Ships:            len(sim.Snapshot()),
		}
	})

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	healthServer := &http.Server{
		Addr:         envConfig.HealthAddr,
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	listener, err := network.NewService(envConfig, logger).Listen(ctx, envConfig.HealthAddr)
	if err != nil {
		logger.Error(ctx, "Failed to bind health check address", err,
			"address", envConfig.HealthAddr,
		)
		os.Exit(1)
	}

	if err := resources.StartGoroutine(ctx, "health-server", func(context.Context) {
		logger.Info(ctx, "Starting health check server",
			"address", listener.Addr().String(),
		)
		if err := healthServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}); err != nil {
		logger.Error(ctx, "Failed to start health check server", err)
		os.Exit(1)
	}

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	done := make(chan error, 1)
	if err := resources.StartGoroutine(runCtx, "simulation", func(ctx context.Context) {
		defer close(done)
		defer cancel()
		done <- sim.Run(ctx)
	}); err != nil {
		logger.Error(ctx, "Failed to start simulation loop", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Simulation running",
		"tick_rate", simConfig.TickRate,
		"backend", sim.Backend(),
		"pacing", simConfig.Pacing.Mode,
		"ships", len(simConfig.Ships),
		"max_ticks", envConfig.MaxTicks,
	)

	report := time.NewTicker(envConfig.ReportInterval)
	defer report.Stop()

loop:
	for {
		select {
		case <-runCtx.Done():
			break loop
		case <-report.C:
			if envConfig.LogSnapshots {
				reportSnapshot(ctx, logger, sim)
			}
			if envConfig.MaxTicks > 0 && sim.Ticks() >= envConfig.MaxTicks {
				logger.Info(ctx, "Tick limit reached", "ticks", sim.Ticks())
				cancel()
			}
		}
	}

	if err := <-done; err != nil {
		logger.Error(ctx, "Simulation stopped with error", err)
	}
	logger.Info(ctx, "Shutting down",
		"ticks", sim.Ticks(),
		"simulated_seconds", sim.Elapsed(),
	)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
	defer cancelShutdown()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Health check server shutdown failed", err)
	}
	if err := resources.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource manager shutdown failed", err)
	}
}

// subscribeToEvents logs navigation progress.
func subscribeToEvents(ctx context.Context, logger *logging.Logger, sim *engine.Simulation) {
	navigation := func(e event.Event) {
		nav, ok := e.(*event.NavigationEvent)
		if !ok {
			return
		}
		logger.Info(ctx, "Navigation progress",
			"event", string(nav.GetType()),
			"ship_id", nav.ShipID,
			"position", nav.Position,
			"remaining", nav.Remaining,
		)
	}
	sim.EventBus.Subscribe(event.WaypointReached, navigation)
	sim.EventBus.Subscribe(event.TargetArrived, navigation)

	sim.EventBus.Subscribe(event.TickSkipped, func(e event.Event) {
		if tick, ok := e.(*event.TickEvent); ok {
			logger.Debug(ctx, "Tick skipped", "tick", tick.Tick, "elapsed", tick.Elapsed)
		}
	})
}

func reportSnapshot(ctx context.Context, logger *logging.Logger, sim *engine.Simulation) {
	for _, ship := range sim.Snapshot() {
		args := []any{
			"ship", ship.Name,
			"tick", sim.Ticks(),
			"position", ship.Position,
			"speed", ship.LinearVelocity.Len(),
			"waypoints", ship.Waypoints,
		}
		if ship.Target != nil {
			args = append(args, "distance", ship.Distance)
		}
		logger.Info(ctx, "Ship state", args...)
	}
}
