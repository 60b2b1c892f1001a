package learner

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational events from a server.
// Implement this interface to integrate with monitoring systems; the server
// package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordRequest is called after each response is written. item and
	// operation are the request's names and code the response code name.
	RecordRequest(item, operation, code string, duration time.Duration)

	// RecordConnection is called with +1 when a connection is accepted and
	// -1 when it is closed.
	RecordConnection(delta int)

	// RecordProtocolError is called when a malformed frame drops a
	// connection.
	RecordProtocolError()

	// RecordQueueDepth reports the length of the named relay queue.
	RecordQueueDepth(queue string, depth int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRequest(string, string, string, time.Duration) {}
func (NoopMetricsCollector) RecordConnection(int)                                {}
func (NoopMetricsCollector) RecordProtocolError()                                {}
func (NoopMetricsCollector) RecordQueueDepth(string, int)                        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for tests and debugging without external dependencies.
type BasicMetricsCollector struct {
	Requests       atomic.Int64
	Errors         atomic.Int64
	TotalNanos     atomic.Int64
	Connections    atomic.Int64
	ProtocolErrors atomic.Int64

	mu     sync.Mutex
	codes  map[string]int64
	queues map[string]int
}

// RecordRequest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRequest(_, _, code string, duration time.Duration) {
	b.Requests.Add(1)
	b.TotalNanos.Add(duration.Nanoseconds())

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.codes == nil {
		b.codes = make(map[string]int64)
	}

	b.codes[code]++

	if code != "NO_ERROR" {
		b.Errors.Add(1)
	}
}

// RecordConnection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConnection(delta int) {
	b.Connections.Add(int64(delta))
}

// RecordProtocolError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProtocolError() {
	b.ProtocolErrors.Add(1)
}

// RecordQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueueDepth(queue string, depth int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queues == nil {
		b.queues = make(map[string]int)
	}

	b.queues[queue] = depth
}

// BasicMetricsStats is a point-in-time copy of a BasicMetricsCollector.
type BasicMetricsStats struct {
	Requests       int64
	Errors         int64
	Connections    int64
	ProtocolErrors int64
	AvgLatency     time.Duration
	Codes          map[string]int64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Requests:       b.Requests.Load(),
		Errors:         b.Errors.Load(),
		Connections:    b.Connections.Load(),
		ProtocolErrors: b.ProtocolErrors.Load(),
		Codes:          make(map[string]int64),
	}

	if s.Requests > 0 {
		s.AvgLatency = time.Duration(b.TotalNanos.Load() / s.Requests)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range b.codes {
		s.Codes[k] = v
	}

	return s
}

// QueueDepth returns the last reported length of the named queue.
func (b *BasicMetricsCollector) QueueDepth(queue string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.queues[queue]
}
