// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvironmentConfig holds process-level settings for the headless runner.
// Everything here comes from FLIGHTSIM_* environment variables.
type EnvironmentConfig struct {
	ConfigPath      string
	HealthAddr      string
	MaxTicks        uint64
	StallWindow     time.Duration
	MaxMemoryMB     int
	ShutdownTimeout time.Duration
	ReportInterval  time.Duration
	LogSnapshots    bool

	// MaxGoroutines caps the runner's supervised background workers.
	MaxGoroutines         int
	ResourceCheckInterval time.Duration

	// Circuit breaker around binding the health listener.
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int
	ListenRetries                     int
	ListenRetryDelay                  time.Duration
}

// LoadConfigFromEnv reads the runner settings from the environment.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	config := &EnvironmentConfig{
		ConfigPath:      getEnvOrDefault("FLIGHTSIM_CONFIG", ""),
		HealthAddr:      getEnvOrDefault("FLIGHTSIM_HEALTH_ADDR", ":8080"),
		MaxTicks:        uint64(getEnvAsIntOrDefault("FLIGHTSIM_MAX_TICKS", 0)),
		StallWindow:     getEnvAsDurationOrDefault("FLIGHTSIM_STALL_WINDOW", 5*time.Second),
		MaxMemoryMB:     getEnvAsIntOrDefault("FLIGHTSIM_MAX_MEMORY_MB", 512),
		ShutdownTimeout: getEnvAsDurationOrDefault("FLIGHTSIM_SHUTDOWN_TIMEOUT", 10*time.Second),
		ReportInterval:  getEnvAsDurationOrDefault("FLIGHTSIM_REPORT_INTERVAL", time.Second),
		LogSnapshots:    getEnvAsBoolOrDefault("FLIGHTSIM_LOG_SNAPSHOTS", true),

		MaxGoroutines:         getEnvAsIntOrDefault("FLIGHTSIM_MAX_GOROUTINES", 16),
		ResourceCheckInterval: getEnvAsDurationOrDefault("FLIGHTSIM_RESOURCE_CHECK_INTERVAL", 10*time.Second),

		CircuitBreakerMaxRequests:         getEnvAsIntOrDefault("FLIGHTSIM_CB_MAX_REQUESTS", 1),
		CircuitBreakerInterval:            getEnvAsDurationOrDefault("FLIGHTSIM_CB_INTERVAL", time.Minute),
		CircuitBreakerTimeout:             getEnvAsDurationOrDefault("FLIGHTSIM_CB_TIMEOUT", 30*time.Second),
		CircuitBreakerMaxConsecutiveFails: getEnvAsIntOrDefault("FLIGHTSIM_CB_MAX_FAILS", 3),
		ListenRetries:                     getEnvAsIntOrDefault("FLIGHTSIM_LISTEN_RETRIES", 3),
		ListenRetryDelay:                  getEnvAsDurationOrDefault("FLIGHTSIM_LISTEN_RETRY_DELAY", time.Second),
	}

	if err := validateEnvironmentConfig(config); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	return config, nil
}

// validateEnvironmentConfig checks runner settings for sane ranges
func validateEnvironmentConfig(config *EnvironmentConfig) error {
	if config.StallWindow < 100*time.Millisecond {
		return fmt.Errorf("StallWindow must be at least 100ms, got %v", config.StallWindow)
	}
	if config.MaxMemoryMB < 16 || config.MaxMemoryMB > 65536 {
		return fmt.Errorf("MaxMemoryMB must be between 16 and 65536, got %d", config.MaxMemoryMB)
	}
	if config.ShutdownTimeout < time.Second {
		return fmt.Errorf("ShutdownTimeout must be at least 1s, got %v", config.ShutdownTimeout)
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("ReportInterval must be positive, got %v", config.ReportInterval)
	}
	if config.MaxGoroutines < 1 || config.MaxGoroutines > 1024 {
		return fmt.Errorf("MaxGoroutines must be between 1 and 1024, got %d", config.MaxGoroutines)
	}
	if config.ResourceCheckInterval < time.Second {
		return fmt.Errorf("ResourceCheckInterval must be at least 1s, got %v", config.ResourceCheckInterval)
	}
	if config.CircuitBreakerMaxRequests < 1 {
		return fmt.Errorf("CircuitBreakerMaxRequests must be at least 1, got %d", config.CircuitBreakerMaxRequests)
	}
	if config.CircuitBreakerTimeout <= 0 {
		return fmt.Errorf("CircuitBreakerTimeout must be positive, got %v", config.CircuitBreakerTimeout)
	}
	if config.CircuitBreakerMaxConsecutiveFails < 1 {
		return fmt.Errorf("CircuitBreakerMaxConsecutiveFails must be at least 1, got %d", config.CircuitBreakerMaxConsecutiveFails)
	}
	if config.ListenRetries < 1 {
		return fmt.Errorf("ListenRetries must be at least 1, got %d", config.ListenRetries)
	}
	if config.ListenRetryDelay < 0 {
		return fmt.Errorf("ListenRetryDelay must not be negative, got %v", config.ListenRetryDelay)
	}
	return nil
}

// ApplyEnvironmentOverrides applies FLIGHTSIM_* overrides to a simulation
// config. Unset variables leave the config untouched.
func ApplyEnvironmentOverrides(config *SimulationConfig) error {
	config.TickRate = getEnvAsFloatOrDefault("FLIGHTSIM_TICK_RATE", config.TickRate)
	config.Backend = strings.ToLower(getEnvOrDefault("FLIGHTSIM_BACKEND", config.Backend))

	config.Pacing.Mode = strings.ToLower(getEnvOrDefault("FLIGHTSIM_PACING_MODE", config.Pacing.Mode))
	config.Pacing.MaxSubsteps = getEnvAsIntOrDefault("FLIGHTSIM_MAX_SUBSTEPS", config.Pacing.MaxSubsteps)

	config.Navigation.Capability = strings.ToLower(getEnvOrDefault("FLIGHTSIM_NAV_CAPABILITY", config.Navigation.Capability))
	config.Navigation.ArrivalThreshold = getEnvAsFloatOrDefault("FLIGHTSIM_ARRIVAL_THRESHOLD", config.Navigation.ArrivalThreshold)

	c := &config.Controller
	c.Linear.Kp = getEnvAsFloatOrDefault("FLIGHTSIM_LINEAR_KP", c.Linear.Kp)
	c.Linear.Ki = getEnvAsFloatOrDefault("FLIGHTSIM_LINEAR_KI", c.Linear.Ki)
	c.Linear.Kd = getEnvAsFloatOrDefault("FLIGHTSIM_LINEAR_KD", c.Linear.Kd)
	c.Angular.Kp = getEnvAsFloatOrDefault("FLIGHTSIM_ANGULAR_KP", c.Angular.Kp)
	c.Angular.Ki = getEnvAsFloatOrDefault("FLIGHTSIM_ANGULAR_KI", c.Angular.Ki)
	c.Angular.Kd = getEnvAsFloatOrDefault("FLIGHTSIM_ANGULAR_KD", c.Angular.Kd)
	c.LinearIntegralLimit = getEnvAsFloatOrDefault("FLIGHTSIM_LINEAR_INTEGRAL_LIMIT", c.LinearIntegralLimit)
	c.AngularIntegralLimit = getEnvAsFloatOrDefault("FLIGHTSIM_ANGULAR_INTEGRAL_LIMIT", c.AngularIntegralLimit)

	config.Input.Mode = strings.ToLower(getEnvOrDefault("FLIGHTSIM_INPUT_MODE", config.Input.Mode))

	return config.Validate()
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault parses an integer variable, falling back on error
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault parses a boolean variable, falling back on error
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault parses a float variable, falling back on error
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault parses a duration variable, falling back on error
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
