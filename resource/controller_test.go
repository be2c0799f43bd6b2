package resource

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNilControllerEnforcesNothing(t *testing.T) {
	var c *Controller

	if err := c.AcquireMemory(context.Background(), 1<<30); err != nil {
		t.Fatalf("acquire memory: %v", err)
	}
	c.ReleaseMemory(1 << 30)
	if got := c.MemoryUsage(); got != 0 {
		t.Fatalf("memory usage = %d, want 0", got)
	}
	if err := c.AcquireIO(context.Background(), 1<<30); err != nil {
		t.Fatalf("acquire io: %v", err)
	}
}

func TestUnlimitedConfig(t *testing.T) {
	c := NewController(Config{})

	if err := c.AcquireMemory(context.Background(), 1<<20); err != nil {
		t.Fatalf("acquire memory: %v", err)
	}
	if got := c.MemoryUsage(); got != 1<<20 {
		t.Fatalf("memory usage = %d, want %d", got, 1<<20)
	}
	c.ReleaseMemory(1 << 20)
	if got := c.MemoryUsage(); got != 0 {
		t.Fatalf("memory usage = %d, want 0", got)
	}
}

func TestMemoryLimitBlocks(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	if err := c.AcquireMemory(context.Background(), 80); err != nil {
		t.Fatalf("acquire 80: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquireMemory(ctx, 80)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("over-limit acquire: err = %v, want deadline exceeded", err)
	}

	c.ReleaseMemory(80)
	if err := c.AcquireMemory(context.Background(), 80); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if got := c.MemoryUsage(); got != 80 {
		t.Fatalf("memory usage = %d, want 80", got)
	}
}

func TestZeroAcquireIsFree(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})

	if err := c.AcquireMemory(context.Background(), 0); err != nil {
		t.Fatalf("acquire 0: %v", err)
	}
	c.ReleaseMemory(0)
	if got := c.MemoryUsage(); got != 0 {
		t.Fatalf("memory usage = %d, want 0", got)
	}
}

func TestIOLimiter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// Within a single burst this must not block.
	start := time.Now()
	if err := c.AcquireIO(context.Background(), 1024); err != nil {
		t.Fatalf("acquire io: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("in-burst acquire took %v", elapsed)
	}
}
