// Package network guards the runner's network operations with a circuit
// breaker, so a port that cannot be bound fails fast instead of stalling
// startup.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/logging"
)

// Operation is a network operation that reports failure through its error.
type Operation func() error

// Service runs operations through a circuit breaker with bounded retries.
type Service struct {
	breaker   *gobreaker.CircuitBreaker
	logger    *logging.Logger
	retries   int
	baseDelay time.Duration
}

// NewService creates a Service configured from the runner settings.
func NewService(envConfig *config.EnvironmentConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogger()
	}

	settings := gobreaker.Settings{
		Name:        "flightsim-network",
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Service{
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    logger,
		retries:   envConfig.ListenRetries,
		baseDelay: envConfig.ListenRetryDelay,
	}
}

// Execute runs operation once through the breaker. An open breaker rejects
// the call without running it.
func (s *Service) Execute(ctx context.Context, operation Operation) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		s.logger.LogWithContext(ctx, slog.LevelDebug, "Circuit breaker execution failed",
			"error", err,
			"state", s.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// ExecuteWithRetry retries operation with a linearly growing delay until it
// succeeds, the breaker opens, the retries run out or ctx ends.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation Operation) error {
	retries := s.retries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		err := s.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if s.breaker.State() == gobreaker.StateOpen {
			s.logger.Warn(ctx, "Circuit breaker is open, skipping retries",
				"attempt", attempt+1,
				"max_retries", retries,
			)
			return err
		}

		if attempt == retries-1 {
			return fmt.Errorf("max retries (%d) exceeded: %w", retries, err)
		}

		delay := time.Duration(attempt+1) * s.baseDelay
		s.logger.Warn(ctx, "Operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", retries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("unexpected exit from retry loop")
}

// Listen binds a TCP listener on addr, retrying while the address is busy.
func (s *Service) Listen(ctx context.Context, addr string) (net.Listener, error) {
	var listener net.Listener
	err := s.ExecuteWithRetry(ctx, func() error {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		listener = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return listener, nil
}

// State returns the breaker state.
func (s *Service) State() gobreaker.State {
	return s.breaker.State()
}

// Counts returns the breaker's request counters for the current interval.
func (s *Service) Counts() gobreaker.Counts {
	return s.breaker.Counts()
}
