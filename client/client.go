package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/learner"
	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/routing"
)

var (
	// ErrConnectionBroken is returned for requests routed to a connection
	// that failed earlier. The frame stream of such a connection can no
	// longer be trusted.
	ErrConnectionBroken = errors.New("client: connection broken")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("client: closed")
)

// Dialer opens server connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Client.
type Options struct {
	// Dialer opens server connections.
	Dialer Dialer

	// Logger receives connection events. Defaults to a discarding logger.
	Logger *learner.Logger

	// MaxFrameSize bounds the data segment of one response.
	MaxFrameSize int64

	// Port is appended to server addresses that carry none.
	Port int
}

// DefaultOptions are used by New.
var DefaultOptions = Options{
	Dialer:       &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second},
	MaxFrameSize: protocol.DefaultMaxFrameSize,
	Port:         protocol.DefaultPort,
}

// Client routes requests over a weighted pool of server connections.
// Every request goes to the server that owns its target, so one client
// sees a consistent partitioning as long as its pool is unchanged.
//
// A Client is safe for concurrent use. Each connection carries one request
// at a time.
type Client struct {
	opts Options
	log  *learner.Logger
	pool *routing.Pool[*serverConn]

	mu     sync.Mutex
	closed bool
}

// New returns a client with an empty pool.
func New(optFns ...func(o *Options)) *Client {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dialer == nil {
		opts.Dialer = DefaultOptions.Dialer
	}

	if opts.Logger == nil {
		opts.Logger = learner.NoopLogger()
	}

	if opts.MaxFrameSize <= 0 {
		opts.MaxFrameSize = DefaultOptions.MaxFrameSize
	}

	if opts.Port <= 0 {
		opts.Port = DefaultOptions.Port
	}

	return &Client{
		opts: opts,
		log:  opts.Logger.WithComponent("client"),
		pool: routing.NewPool[*serverConn](),
	}
}

// AddServer connects to host and adds the connection with the given
// weight. host may omit the port.
func (c *Client) AddServer(ctx context.Context, host string, weight int) error {
	if weight <= 0 {
		return routing.ErrInvalidWeight
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}

	addr := c.address(host)

	nc, err := c.opts.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", addr, err)
	}

	sc := &serverConn{addr: addr, nc: nc, br: bufio.NewReader(nc)}

	// Close walks the pool after setting closed, so the check and the add
	// must not interleave with it.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.Join(ErrClosed, nc.Close())
	}

	err = c.pool.Add(sc, weight)
	c.mu.Unlock()

	if err != nil {
		return errors.Join(err, nc.Close())
	}

	c.log.DebugContext(ctx, "server added", "address", addr, "weight", weight)

	return nil
}

func (c *Client) address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}

	return net.JoinHostPort(host, strconv.Itoa(c.opts.Port))
}

// Servers returns the number of distinct server connections.
func (c *Client) Servers() int {
	return len(c.pool.Members())
}

// Do sends req to the server owning it and returns the response. A non-OK
// response is returned together with its protocol.Code as the error.
// Requests that cannot be routed fail with both the routing error and its
// code.
func (c *Client) Do(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	sc, err := c.pool.ServerFor(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", routing.Code(err), err)
	}

	res, err := sc.do(ctx, req, c.opts.MaxFrameSize)
	if err != nil && errors.Is(err, ErrConnectionBroken) {
		c.log.WarnContext(ctx, "request failed", "address", sc.addr, "request", req.String(), "error", err)
	}

	return res, err
}

// Close closes every server connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	c.closed = true
	c.mu.Unlock()

	var errs []error

	for _, sc := range c.pool.Members() {
		if err := sc.close(); err != nil {
			errs = append(errs, fmt.Errorf("client: close %s: %w", sc.addr, err))
		}
	}

	return errors.Join(errs...)
}

// serverConn is one connection in the pool. mu serializes exchanges so
// that responses pair up with their requests.
type serverConn struct {
	addr string

	mu     sync.Mutex
	nc     net.Conn
	br     *bufio.Reader
	broken error
}

func (sc *serverConn) do(ctx context.Context, req *protocol.Request, maxFrame int64) (*protocol.Response, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.broken != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionBroken, sc.addr, sc.broken)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	if err := sc.nc.SetDeadline(deadline); err != nil {
		return nil, sc.fail(ctx, err)
	}

	// Cancellation interrupts a blocked exchange by expiring the deadline.
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(expired)
		_ = sc.nc.SetDeadline(time.Unix(1, 0))
	})

	defer func() {
		if !stop() {
			<-expired
		}
	}()

	if err := protocol.WriteRequest(sc.nc, req); err != nil {
		return nil, sc.fail(ctx, err)
	}

	res, err := protocol.ReadResponse(sc.br, maxFrame)
	if err != nil {
		return nil, sc.fail(ctx, err)
	}

	return res, res.Code.Err()
}

// fail marks the connection broken. The caller holds mu.
func (sc *serverConn) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}

	sc.broken = err
	_ = sc.nc.Close()

	return fmt.Errorf("%w: %s: %w", ErrConnectionBroken, sc.addr, err)
}

func (sc *serverConn) close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.broken != nil {
		sc.broken = ErrClosed
		return nil
	}

	sc.broken = ErrClosed

	return sc.nc.Close()
}
