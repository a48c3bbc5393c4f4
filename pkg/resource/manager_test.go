// pkg/resource/manager_test.go
package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opd-ai/go-flightsim/pkg/config"
	"github.com/opd-ai/go-flightsim/pkg/logging"
)

func testConfig(maxGoroutines int) *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxMemoryMB:           500,
		MaxGoroutines:         maxGoroutines,
		ShutdownTimeout:       2 * time.Second,
		ResourceCheckInterval: time.Second,
	}
}

func newTestManager(maxGoroutines int, memoryMB int64) *ResourceManager {
	return NewResourceManager(testConfig(maxGoroutines), logging.Discard(), func() int64 { return memoryMB })
}

func TestNewResourceManager(t *testing.T) {
	rm := newTestManager(100, 10)
	defer rm.Shutdown(context.Background())

	if rm.maxMemoryMB != 500 {
		t.Errorf("Expected MaxMemoryMB 500, got %d", rm.maxMemoryMB)
	}
	if rm.maxGoroutines != 100 {
		t.Errorf("Expected MaxGoroutines 100, got %d", rm.maxGoroutines)
	}
	if rm.shutdownTimeout != 2*time.Second {
		t.Errorf("Expected ShutdownTimeout 2s, got %v", rm.shutdownTimeout)
	}
	if rm.checkInterval != time.Second {
		t.Errorf("Expected CheckInterval 1s, got %v", rm.checkInterval)
	}
}

func TestResourceManager_StartGoroutine(t *testing.T) {
	rm := newTestManager(3, 10)
	defer rm.Shutdown(context.Background())

	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		err := rm.StartGoroutine(context.Background(), "worker", func(ctx context.Context) {
			defer wg.Done()
			<-release
		})
		if err != nil {
			t.Fatalf("StartGoroutine %d: %v", i, err)
		}
	}

	if got := rm.GetGoroutineCount(); got != 3 {
		t.Errorf("Expected 3 tracked goroutines, got %d", got)
	}

	err := rm.StartGoroutine(context.Background(), "overflow", func(context.Context) {})
	if !errors.Is(err, ErrGoroutineLimit) {
		t.Errorf("Expected ErrGoroutineLimit, got %v", err)
	}

	close(release)
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for rm.GetGoroutineCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := rm.GetGoroutineCount(); got != 0 {
		t.Errorf("Expected 0 tracked goroutines after completion, got %d", got)
	}
}

func TestResourceManager_StartGoroutinePanicRecovery(t *testing.T) {
	rm := newTestManager(5, 10)
	defer rm.Shutdown(context.Background())

	if err := rm.StartGoroutine(context.Background(), "panicky", func(context.Context) {
		panic("boom")
	}); err != nil {
		t.Fatalf("StartGoroutine: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for rm.GetPanicCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := rm.GetPanicCount(); got != 1 {
		t.Fatalf("Expected 1 recovered panic, got %d", got)
	}

	for rm.GetGoroutineCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := rm.GetGoroutineCount(); got != 0 {
		t.Errorf("Expected counter to drop after panic, got %d", got)
	}
}

func TestResourceManager_CheckMemoryUsage(t *testing.T) {
	tests := []struct {
		name    string
		usage   int64
		wantErr bool
	}{
		{"UnderLimit", 100, false},
		{"AtLimit", 500, false},
		{"OverLimit", 501, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newTestManager(5, tt.usage)
			defer rm.Shutdown(context.Background())

			err := rm.CheckMemoryUsage()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckMemoryUsage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := rm.GetMemoryUsage(); got != tt.usage {
				t.Errorf("Expected memory %d, got %d", tt.usage, got)
			}
		})
	}
}

func TestResourceManager_GetResourceStats(t *testing.T) {
	rm := newTestManager(8, 42)
	defer rm.Shutdown(context.Background())

	before := time.Now()
	if err := rm.CheckMemoryUsage(); err != nil {
		t.Fatalf("CheckMemoryUsage: %v", err)
	}

	stats := rm.GetResourceStats()
	if stats.MaxGoroutines != 8 {
		t.Errorf("Expected MaxGoroutines 8, got %d", stats.MaxGoroutines)
	}
	if stats.MaxMemoryMB != 500 {
		t.Errorf("Expected MaxMemoryMB 500, got %d", stats.MaxMemoryMB)
	}
	if stats.MemoryUsageMB != 42 {
		t.Errorf("Expected MemoryUsageMB 42, got %d", stats.MemoryUsageMB)
	}
	if stats.LastMemoryCheck.Before(before) {
		t.Errorf("LastMemoryCheck %v not updated", stats.LastMemoryCheck)
	}
}

func TestResourceManager_StartAndShutdown(t *testing.T) {
	rm := newTestManager(5, 10)

	if err := rm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rm.Start(); err == nil {
		t.Error("Expected error starting twice")
	}

	var cancelled atomic.Bool
	if err := rm.StartGoroutine(context.Background(), "loop", func(ctx context.Context) {
		<-ctx.Done()
		cancelled.Store(true)
	}); err != nil {
		t.Fatalf("StartGoroutine: %v", err)
	}

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !cancelled.Load() {
		t.Error("Expected worker context to be cancelled on shutdown")
	}
	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Second Shutdown should be a no-op, got %v", err)
	}

	err := rm.StartGoroutine(context.Background(), "late", func(context.Context) {})
	if !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Expected ErrShuttingDown, got %v", err)
	}
}

func TestResourceManager_ShutdownTimeout(t *testing.T) {
	cfg := testConfig(5)
	cfg.ShutdownTimeout = 50 * time.Millisecond
	rm := NewResourceManager(cfg, logging.Discard(), func() int64 { return 0 })

	release := make(chan struct{})
	defer close(release)
	if err := rm.StartGoroutine(context.Background(), "stubborn", func(context.Context) {
		<-release
	}); err != nil {
		t.Fatalf("StartGoroutine: %v", err)
	}

	start := time.Now()
	err := rm.Shutdown(context.Background())
	if err == nil {
		t.Fatal("Expected shutdown timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Shutdown took %v, expected about 50ms", elapsed)
	}
}

func TestResourceManager_ConcurrentGoroutineAccess(t *testing.T) {
	const limit = 10
	rm := newTestManager(limit, 10)
	defer rm.Shutdown(context.Background())

	release := make(chan struct{})
	var started, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rm.StartGoroutine(context.Background(), "concurrent", func(context.Context) {
				<-release
			})
			if err != nil {
				atomic.AddInt64(&rejected, 1)
				return
			}
			atomic.AddInt64(&started, 1)
		}()
	}
	wg.Wait()

	if started != limit {
		t.Errorf("Expected %d started, got %d", limit, started)
	}
	if rejected != 50-limit {
		t.Errorf("Expected %d rejected, got %d", 50-limit, rejected)
	}
	if got := rm.GetGoroutineCount(); got > limit {
		t.Errorf("Tracked goroutines %d exceed limit %d", got, limit)
	}
	close(release)
}
