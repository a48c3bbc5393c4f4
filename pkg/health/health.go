// Package health provides health check functionality for the headless
// simulation runner. It implements HTTP endpoints for liveness and readiness
// probes.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthCheck defines the interface for individual health checks.
// Each component can implement this interface to provide its health status.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// Status values reported by the checker.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusAlive     = "alive"
)

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Checks     map[string]ComponentHealth `json:"checks"`
	Simulation *SimulationInfo            `json:"simulation,omitempty"`
}

// SimulationInfo is the run summary attached to probe responses.
type SimulationInfo struct {
	RunID            string  `json:"run_id"`
	Backend          string  `json:"backend"`
	Ticks            uint64  `json:"ticks"`
	SimulatedSeconds float64 `json:"simulated_seconds"`
	Ships            int     `json:"ships"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	info   func() SimulationInfo
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// SetInfo installs the source of the run summary included in responses.
func (hc *HealthChecker) SetInfo(info func() SimulationInfo) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.info = info
}

func (hc *HealthChecker) simulationInfo() *SimulationInfo {
	hc.mu.RLock()
	info := hc.info
	hc.mu.RUnlock()
	if info == nil {
		return nil
	}
	summary := info()
	return &summary
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	checks := make(map[string]HealthCheck, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	status := HealthStatus{
		Status:     StatusHealthy,
		Checks:     make(map[string]ComponentHealth, len(checks)),
		Simulation: hc.simulationInfo(),
	}

	for name, check := range checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{Status: StatusHealthy}
		}
	}

	return status
}

// LivenessHandler answers 200 while the process can serve requests. It runs
// no checks.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": StatusAlive}
	if info := hc.simulationInfo(); info != nil {
		response["run_id"] = info.RunID
	}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler runs every check and answers 503 if any of them fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// SimulationHealthCheck implements HealthCheck for the tick loop.
// The simulation is healthy while its tick counter keeps moving.
type SimulationHealthCheck struct {
	stallWindow time.Duration
	ticks       func() uint64
	now         func() time.Time

	mu       sync.Mutex
	lastTick uint64
	lastMove time.Time
	observed bool
}

// NewSimulationHealthCheck creates a health check that fails once ticks()
// has not advanced for longer than stallWindow.
func NewSimulationHealthCheck(stallWindow time.Duration, ticks func() uint64) *SimulationHealthCheck {
	return NewSimulationHealthCheckWithClock(stallWindow, ticks, time.Now)
}

// NewSimulationHealthCheckWithClock is NewSimulationHealthCheck with an
// injected time source.
func NewSimulationHealthCheckWithClock(stallWindow time.Duration, ticks func() uint64, now func() time.Time) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		stallWindow: stallWindow,
		ticks:       ticks,
		now:         now,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the simulation has ticked within the stall window.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	tick := s.ticks()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.observed || tick != s.lastTick {
		s.observed = true
		s.lastTick = tick
		s.lastMove = now
		return nil
	}

	if stalled := now.Sub(s.lastMove); stalled > s.stallWindow {
		return fmt.Errorf("simulation stalled at tick %d for %v", tick, stalled.Round(time.Millisecond))
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// CurrentMemoryMB reports the heap currently allocated, in megabytes.
func CurrentMemoryMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
