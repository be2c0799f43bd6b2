// Package resource bounds the memory and IO a recording pipeline may consume.
//
// The container writer itself is single-threaded and allocation-light; what
// needs bounding is the stage in front of it — queued readings waiting for
// the writer goroutine — and the write IO behind it on hosts that record
// while doing other disk work.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MemoryLimitBytes is the hard limit for queued reading payloads.
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum flush throughput.
	IOLimitBytesPerSec int64
}

// Controller tracks and enforces the configured limits. A nil *Controller is
// valid and enforces nothing.
type Controller struct {
	memSem    *semaphore.Weighted // nil if unlimited
	memUsed   atomic.Int64
	ioLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	c := &Controller{}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes, blocking until the reservation fits under the
// limit or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)

	return nil
}

// ReleaseMemory returns a reservation.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO waits until the IO limit admits the given number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
