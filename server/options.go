package server

import (
	"time"

	"github.com/hupe1980/learner"
	"github.com/hupe1980/learner/blobstore"
	"github.com/hupe1980/learner/protocol"
)

// Options configures a Server.
type Options struct {
	// ReadThreads is the number of reader stages arming connections.
	ReadThreads int

	// ProcessThreads is the number of workers executing requests.
	ProcessThreads int

	// QueueDepth is the capacity of each relay queue.
	QueueDepth int

	// MaxFrameSize bounds the name and data segments of one request.
	MaxFrameSize int64

	// MaxConnections caps open client connections. 0 means unlimited.
	MaxConnections int64

	// AcceptRate caps accepted connections per second. 0 means unlimited.
	AcceptRate float64

	// Logger receives server events. Defaults to a discarding logger.
	Logger *learner.Logger

	// Metrics receives request and connection events.
	Metrics learner.MetricsCollector

	// Backup configures periodic database snapshots. Disabled when Target
	// is nil or Interval is zero.
	Backup BackupOptions
}

// BackupOptions configures periodic snapshots of the backing store.
type BackupOptions struct {
	Target   blobstore.Store
	Prefix   string
	Interval time.Duration
	// Keep is the number of snapshots retained under Prefix. 0 keeps all.
	Keep int
}

func (b BackupOptions) enabled() bool {
	return b.Target != nil && b.Interval > 0
}

// DefaultOptions mirrors the daemon defaults.
var DefaultOptions = Options{
	ReadThreads:    1,
	ProcessThreads: 8,
	QueueDepth:     1024,
	MaxFrameSize:   protocol.DefaultMaxFrameSize,
}

func (o *Options) normalize() {
	if o.ReadThreads <= 0 {
		o.ReadThreads = DefaultOptions.ReadThreads
	}

	if o.ProcessThreads <= 0 {
		o.ProcessThreads = DefaultOptions.ProcessThreads
	}

	if o.QueueDepth <= 0 {
		o.QueueDepth = DefaultOptions.QueueDepth
	}

	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = DefaultOptions.MaxFrameSize
	}

	if o.Logger == nil {
		o.Logger = learner.NoopLogger()
	}

	if o.Metrics == nil {
		o.Metrics = learner.NoopMetricsCollector{}
	}
}
