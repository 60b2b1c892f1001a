package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrConnectionLimitExceeded is returned when all connection slots are taken.
	ErrConnectionLimitExceeded = errors.New("connection limit exceeded")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for cached pages and values.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConnections is the maximum number of open client connections.
	// If 0, unlimited.
	MaxConnections int64

	// AcceptsPerSec limits the rate of accepted connections.
	// If 0, unlimited.
	AcceptsPerSec float64
}

// Controller manages process-wide resources (memory, connections).
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	connSem *semaphore.Weighted // nil if unlimited
	conns   atomic.Int64

	acceptLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxConnections > 0 {
		c.connSem = semaphore.NewWeighted(cfg.MaxConnections)
	}

	if cfg.AcceptsPerSec > 0 {
		burst := int(cfg.AcceptsPerSec)
		if burst < 1 {
			burst = 1
		}
		c.acceptLimiter = rate.NewLimiter(rate.Limit(cfg.AcceptsPerSec), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)

	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}

	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}

	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}

	return c.cfg.MemoryLimitBytes
}

// TryAcquireConnection reserves a connection slot without blocking.
// Returns ErrConnectionLimitExceeded if all slots are taken.
func (c *Controller) TryAcquireConnection() error {
	if c == nil {
		return nil
	}

	if c.connSem != nil && !c.connSem.TryAcquire(1) {
		return ErrConnectionLimitExceeded
	}

	c.conns.Add(1)

	return nil
}

// AcquireConnection reserves a connection slot, blocking until one is free
// or ctx is done.
func (c *Controller) AcquireConnection(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.connSem != nil {
		if err := c.connSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.conns.Add(1)

	return nil
}

// ReleaseConnection releases a connection slot.
func (c *Controller) ReleaseConnection() {
	if c == nil {
		return
	}

	if c.connSem != nil {
		c.connSem.Release(1)
	}

	c.conns.Add(-1)
}

// Connections returns the number of reserved connection slots.
func (c *Controller) Connections() int64 {
	if c == nil {
		return 0
	}

	return c.conns.Load()
}

// WaitAccept blocks until the accept rate allows one more connection.
func (c *Controller) WaitAccept(ctx context.Context) error {
	if c == nil || c.acceptLimiter == nil {
		return nil
	}

	return c.acceptLimiter.Wait(ctx)
}
