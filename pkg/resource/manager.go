// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/logging"
)

var (
	// ErrGoroutineLimit is returned when a worker would exceed MaxGoroutines.
	ErrGoroutineLimit = errors.New("goroutine limit exceeded")
	// ErrShuttingDown is returned by StartGoroutine after Shutdown began.
	ErrShuttingDown = errors.New("resource manager shutting down")
)

// ResourceManager supervises the runner's background workers. Each worker
// receives a context that is cancelled on Shutdown, and panics are recovered
// and counted instead of taking the process down.
type ResourceManager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration
	memory          func() int64

	goroutineCount int64
	memoryUsageMB  int64
	panics         int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	closed  bool
	logger  *logging.Logger

	lastMemoryCheck time.Time
}

// NewResourceManager creates a manager from the runner settings. memory
// reports the current heap in megabytes.
func NewResourceManager(cfg *config.EnvironmentConfig, logger *logging.Logger, memory func() int64) *ResourceManager {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = logging.NewLogger()
	}

	return &ResourceManager{
		maxMemoryMB:     int64(cfg.MaxMemoryMB),
		maxGoroutines:   int64(cfg.MaxGoroutines),
		shutdownTimeout: cfg.ShutdownTimeout,
		checkInterval:   cfg.ResourceCheckInterval,
		memory:          memory,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logger,
	}
}

// Start begins the periodic resource checks.
func (rm *ResourceManager) Start() error {
	rm.mu.Lock()
	if rm.running {
		rm.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	if rm.closed {
		rm.mu.Unlock()
		return ErrShuttingDown
	}
	rm.running = true
	rm.mu.Unlock()

	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "Resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"max_goroutines", rm.maxGoroutines,
		"check_interval", rm.checkInterval,
	)
	return nil
}

// StartGoroutine runs fn on a tracked goroutine. The context passed to fn is
// derived from ctx and is also cancelled when the manager shuts down.
func (rm *ResourceManager) StartGoroutine(ctx context.Context, name string, fn func(context.Context)) error {
	rm.mu.RLock()
	closed := rm.closed
	rm.mu.RUnlock()
	if closed {
		return fmt.Errorf("%w: %s", ErrShuttingDown, name)
	}

	if n := atomic.AddInt64(&rm.goroutineCount, 1); n > rm.maxGoroutines {
		atomic.AddInt64(&rm.goroutineCount, -1)
		rm.logger.Warn(ctx, "Goroutine limit exceeded",
			"current", n-1,
			"limit", rm.maxGoroutines,
			"name", name,
		)
		return fmt.Errorf("%w: %d/%d (%s)", ErrGoroutineLimit, n-1, rm.maxGoroutines, name)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(rm.ctx, cancel)

	go func() {
		defer atomic.AddInt64(&rm.goroutineCount, -1)
		defer stop()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				atomic.AddInt64(&rm.panics, 1)
				rm.logger.Error(ctx, "Goroutine panic",
					fmt.Errorf("panic: %v", r),
					"name", name,
				)
			}
		}()

		fn(workerCtx)
	}()

	return nil
}

// CheckMemoryUsage samples the heap and compares it against MaxMemoryMB.
func (rm *ResourceManager) CheckMemoryUsage() error {
	current := rm.memory()
	atomic.StoreInt64(&rm.memoryUsageMB, current)

	rm.mu.Lock()
	rm.lastMemoryCheck = time.Now()
	rm.mu.Unlock()

	if current > rm.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", current, rm.maxMemoryMB)
	}
	return nil
}

// GetGoroutineCount returns the number of running tracked goroutines.
func (rm *ResourceManager) GetGoroutineCount() int64 {
	return atomic.LoadInt64(&rm.goroutineCount)
}

// GetMemoryUsage returns the last sampled heap size in MB.
func (rm *ResourceManager) GetMemoryUsage() int64 {
	return atomic.LoadInt64(&rm.memoryUsageMB)
}

// GetPanicCount returns how many tracked goroutines have panicked.
func (rm *ResourceManager) GetPanicCount() int64 {
	return atomic.LoadInt64(&rm.panics)
}

// ResourceStats contains resource usage statistics.
type ResourceStats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	Panics          int64     `json:"panics"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// GetResourceStats returns current resource usage statistics.
func (rm *ResourceManager) GetResourceStats() ResourceStats {
	rm.mu.RLock()
	last := rm.lastMemoryCheck
	rm.mu.RUnlock()

	return ResourceStats{
		GoroutineCount:  rm.GetGoroutineCount(),
		MaxGoroutines:   rm.maxGoroutines,
		MemoryUsageMB:   rm.GetMemoryUsage(),
		MaxMemoryMB:     rm.maxMemoryMB,
		Panics:          rm.GetPanicCount(),
		LastMemoryCheck: last,
	}
}

// Shutdown cancels every tracked goroutine and waits for them to return,
// bounded by ShutdownTimeout and ctx.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	if rm.closed {
		rm.mu.Unlock()
		return nil
	}
	rm.closed = true
	running := rm.running
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "Shutting down resource manager")
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	if running {
		select {
		case <-rm.done:
		case <-shutdownCtx.Done():
			rm.logger.Warn(ctx, "Resource manager monitoring loop did not stop gracefully")
		}
	}

	return rm.waitForGoroutines(shutdownCtx)
}

func (rm *ResourceManager) waitForGoroutines(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := rm.GetGoroutineCount()
		if count == 0 {
			rm.logger.Debug(ctx, "All tracked goroutines finished")
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			remaining := rm.GetGoroutineCount()
			rm.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
		}
	}
}

func (rm *ResourceManager) monitoringLoop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.performResourceChecks()
		case <-rm.ctx.Done():
			return
		}
	}
}

func (rm *ResourceManager) performResourceChecks() {
	if err := rm.CheckMemoryUsage(); err != nil {
		rm.logger.Error(rm.ctx, "Memory limit exceeded", err,
			"current_mb", rm.GetMemoryUsage(),
			"limit_mb", rm.maxMemoryMB,
		)
	}

	rm.logger.Debug(rm.ctx, "Resource usage check",
		"goroutines", rm.GetGoroutineCount(),
		"max_goroutines", rm.maxGoroutines,
		"memory_mb", rm.GetMemoryUsage(),
		"panics", rm.GetPanicCount(),
	)
}
