// Package resource implements the Controller for process-wide limits.
//
// The Controller manages three resource types:
//
//   - Memory: track and limit bytes held by page and value caches (non-blocking, fail-fast)
//   - Connections: limit the number of open client connections (semaphore)
//   - Accept rate: token bucket in front of the server's accept loop
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded if the
// limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // don't cache
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Connections
//
//	if err := rc.AcquireConnection(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseConnection()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
