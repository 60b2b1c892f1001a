package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/hupe1980/learner/protocol"
)

const (
	queueRead    = "read"
	queueProcess = "process"
)

// conn is one client connection. br buffers the readiness probe so that
// the probed byte stays part of the next frame.
type conn struct {
	nc     net.Conn
	br     *bufio.Reader
	remote string
	once   sync.Once
}

// accept admits connections and hands them to the readers.
func (s *Server) accept(ctx context.Context, ln net.Listener) error {
	for {
		if err := s.limits.AcquireConnection(ctx); err != nil {
			return nil //nolint:nilerr // only fails once ctx is done
		}

		if err := s.limits.WaitAccept(ctx); err != nil {
			s.limits.ReleaseConnection()
			return nil //nolint:nilerr // only fails once ctx is done
		}

		nc, err := ln.Accept()
		if err != nil {
			s.limits.ReleaseConnection()

			if ctx.Err() != nil {
				return nil
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.WarnContext(ctx, "accept timeout", "error", err)
				time.Sleep(5 * time.Millisecond)

				continue
			}

			return fmt.Errorf("server: accept: %w", err)
		}

		c, ok := s.track(nc)
		if !ok {
			continue
		}

		s.metrics.RecordConnection(1)
		s.log.LogConnection(ctx, c.remote, true, nil)

		if !s.enqueue(ctx, s.readQueue, queueRead, c) {
			s.closeConn(ctx, c, nil)
			return nil
		}
	}
}

// read arms queued connections. Each armed connection gets a one-shot
// readiness watch on the runtime netpoller; a readable connection moves to
// the process queue, a closed one is dropped.
func (s *Server) read(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.readQueue:
			s.metrics.RecordQueueDepth(queueRead, len(s.readQueue))
			s.arm(ctx, c)
		}
	}
}

func (s *Server) arm(ctx context.Context, c *conn) {
	s.watchers.Add(1)

	go func() {
		defer s.watchers.Done()

		if _, err := c.br.Peek(1); err != nil {
			s.closeConn(ctx, c, dropReason(err))
			return
		}

		if !s.enqueue(ctx, s.processQueue, queueProcess, c) {
			s.closeConn(ctx, c, nil)
		}
	}()
}

// work executes one request per dequeued connection and requeues the
// connection for the next one.
func (s *Server) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.processQueue:
			s.metrics.RecordQueueDepth(queueProcess, len(s.processQueue))

			if !s.serveOne(ctx, c) {
				continue
			}

			if !s.enqueue(ctx, s.readQueue, queueRead, c) {
				s.closeConn(ctx, c, nil)
				return nil
			}
		}
	}
}

// serveOne reads exactly one request from c and writes its response. It
// reports whether c is still usable.
func (s *Server) serveOne(ctx context.Context, c *conn) bool {
	req, err := protocol.ReadRequest(c.br, s.opts.MaxFrameSize)
	if err != nil {
		if protocol.IsProtocolError(err) {
			s.metrics.RecordProtocolError()
		}

		s.closeConn(ctx, c, dropReason(err))

		return false
	}

	start := time.Now()
	res := s.Handle(req)
	elapsed := time.Since(start)

	s.metrics.RecordRequest(req.Item.String(), req.Operation.String(), res.Code.String(), elapsed)
	s.log.LogRequest(ctx, req, res.Code, elapsed, res.Code.Err())

	if err := protocol.WriteResponse(c.nc, res); err != nil {
		s.closeConn(ctx, c, err)
		return false
	}

	return true
}

func (s *Server) enqueue(ctx context.Context, q chan *conn, name string, c *conn) bool {
	select {
	case q <- c:
		s.metrics.RecordQueueDepth(name, len(q))
		return true
	case <-ctx.Done():
		return false
	}
}

// track registers nc. It reports false, after closing nc, once the server
// is shutting down.
func (s *Server) track(nc net.Conn) (*conn, bool) {
	c := &conn{
		nc:     nc,
		br:     bufio.NewReader(nc),
		remote: nc.RemoteAddr().String(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		_ = nc.Close()
		s.limits.ReleaseConnection()

		return nil, false
	}

	s.conns[c] = struct{}{}

	return c, true
}

// closeConn closes c once and releases its slot. err is the drop reason,
// nil for a clean close.
func (s *Server) closeConn(ctx context.Context, c *conn, err error) {
	c.once.Do(func() {
		_ = c.nc.Close()

		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()

		s.limits.ReleaseConnection()
		s.metrics.RecordConnection(-1)
		s.log.LogConnection(context.WithoutCancel(ctx), c.remote, false, err)
	})
}

// closeAll closes every tracked connection and refuses new ones.
func (s *Server) closeAll(ctx context.Context) {
	s.mu.Lock()
	s.closing = true

	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.closeConn(ctx, c, nil)
	}
}

// dropReason returns nil for the ways a peer or a shutdown ends a stream
// cleanly.
func dropReason(err error) error {
	if protocol.IsProtocolError(err) {
		return err
	}

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}
