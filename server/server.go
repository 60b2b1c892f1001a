package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/learner"
	"github.com/hupe1980/learner/internal/resource"
	"github.com/hupe1980/learner/store"
)

const lockStripes = 64

var (
	// ErrNilStore is returned by New without a backing store.
	ErrNilStore = errors.New("server: nil store")

	// ErrServerStarted is returned when Serve is called more than once.
	ErrServerStarted = errors.New("server: already started")

	// ErrSnapshotUnsupported is returned when backups are configured for a
	// store that cannot snapshot itself.
	ErrSnapshotUnsupported = errors.New("server: store does not support snapshots")
)

// Server owns the request pipeline: an acceptor, ReadThreads readers and
// ProcessThreads workers joined by two bounded queues.
//
//	acceptor -> readQueue -> reader (arm) -> processQueue -> worker -+
//	                ^                                                |
//	                +------------------------------------------------+
//
// A connection is in exactly one place at a time: queued, armed by a
// reader, or held by a worker for one request.
type Server struct {
	store   store.Store
	opts    Options
	log     *learner.Logger
	metrics learner.MetricsCollector
	limits  *resource.Controller

	stripes [lockStripes]sync.Mutex

	readQueue    chan *conn
	processQueue chan *conn

	// watchers counts armed connections waiting for readability.
	watchers sync.WaitGroup

	mu      sync.Mutex
	conns   map[*conn]struct{}
	closing bool
	started bool
	cancel  context.CancelFunc
	addr    net.Addr

	ready chan struct{}
	done  chan struct{}
}

// New returns a server executing requests against st. The server does not
// own st; the caller closes it after Serve returns.
func New(st store.Store, optFns ...func(o *Options)) (*Server, error) {
	if st == nil {
		return nil, ErrNilStore
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.normalize()

	if opts.Backup.enabled() {
		if _, ok := snapshotterOf(st); !ok {
			return nil, ErrSnapshotUnsupported
		}
	}

	return &Server{
		store:   st,
		opts:    opts,
		log:     opts.Logger.WithComponent("server"),
		metrics: opts.Metrics,
		limits: resource.NewController(resource.Config{
			MaxConnections: opts.MaxConnections,
			AcceptsPerSec:  opts.AcceptRate,
		}),
		readQueue:    make(chan *conn, opts.QueueDepth),
		processQueue: make(chan *conn, opts.QueueDepth),
		conns:        make(map[*conn]struct{}),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Serve accepts connections on ln until ctx is cancelled or Shutdown is
// called, then closes ln and every open connection. Shutdown is a normal
// termination and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrServerStarted
	}

	s.started = true
	s.cancel = cancel
	s.addr = ln.Addr()
	s.mu.Unlock()

	defer close(s.done)

	close(s.ready)
	s.log.LogStartup(ctx, ln.Addr().String(), s.opts.ReadThreads, s.opts.ProcessThreads)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		err := ln.Close()
		s.closeAll(gctx)

		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("server: close listener: %w", err)
		}

		return nil
	})

	g.Go(func() error { return s.accept(gctx, ln) })

	for range s.opts.ReadThreads {
		g.Go(func() error { return s.read(gctx) })
	}

	for range s.opts.ProcessThreads {
		g.Go(func() error { return s.work(gctx) })
	}

	if s.opts.Backup.enabled() {
		g.Go(func() error { return s.backupLoop(gctx) })
	}

	err := g.Wait()
	s.watchers.Wait()

	if ctx.Err() != nil && err == nil {
		s.log.InfoContext(context.WithoutCancel(ctx), "server stopped")
	}

	return err
}

// Shutdown stops a running server and waits until Serve has returned or
// ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once Serve has started.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

// Connections returns the number of open client connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.conns)
}
