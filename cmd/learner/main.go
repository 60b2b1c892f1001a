// Command learner is a command line client for learner servers.
//
//	learner -s 10.0.0.1 -s 10.0.0.2:3580 set walrus "hear me speak"
//	learner -s 10.0.0.1 -s 10.0.0.2:3580 get walrus
//	learner -s 10.0.0.1 cell set 1 4 7 0.5
//	learner -s 10.0.0.1 row 1 4
//
// The server list and its order must match across clients, since they
// determine which server owns each key.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/hupe1980/learner"
	"github.com/hupe1980/learner/client"
)

// GlobalOptions apply to every command.
type GlobalOptions struct {
	Servers []string      `short:"s" long:"server" description:"server address, optionally weighted as host:port=weight" default:"localhost"`
	Timeout time.Duration `short:"t" long:"timeout" description:"request timeout" default:"10s"`
	Verbose bool          `short:"v" long:"verbose" description:"log connection events"`
}

var (
	global GlobalOptions
	stdout io.Writer = os.Stdout
)

func main() {
	parser := flags.NewParser(&global, flags.Default)
	parser.ShortDescription = "learner client"

	mustAdd(parser, "set", "Store a value", "Store a key/value entry.", &setCommand{})
	mustAdd(parser, "get", "Print a value", "Print a key/value entry.", &getCommand{})
	mustAdd(parser, "delete", "Delete a value", "Delete a key/value entry.", &deleteCommand{})
	mustAdd(parser, "row", "Print a row", "Print the stored entries of a row vector.", &rowCommand{})
	mustAdd(parser, "cell", "Get or set a cell", "Get, set or delete one matrix cell.", &cellCommand{})

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		if ferr == nil {
			fmt.Fprintln(os.Stderr, "learner:", err)
		}

		os.Exit(1)
	}
}

func mustAdd(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

// connect builds a client over the global server list.
func connect(ctx context.Context) (*client.Client, error) {
	logger := learner.NoopLogger()
	if global.Verbose {
		logger = learner.NewTextLogger(os.Stderr, slog.LevelDebug)
	}

	c := client.New(func(o *client.Options) { o.Logger = logger })

	for _, s := range global.Servers {
		host, weight, err := parseServer(s)
		if err != nil {
			return nil, errors.Join(err, c.Close())
		}

		if err := c.AddServer(ctx, host, weight); err != nil {
			return nil, errors.Join(err, c.Close())
		}
	}

	return c, nil
}

// parseServer splits "host[:port][=weight]".
func parseServer(s string) (string, int, error) {
	host, w, ok := strings.Cut(s, "=")
	if !ok {
		return host, 1, nil
	}

	weight, err := strconv.Atoi(w)
	if err != nil || weight <= 0 {
		return "", 0, fmt.Errorf("learner: invalid weight in %q", s)
	}

	return host, weight, nil
}

// run connects, calls fn with a request context and closes the client.
func run(fn func(ctx context.Context, c *client.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), global.Timeout)
	defer cancel()

	c, err := connect(ctx)
	if err != nil {
		return err
	}

	return errors.Join(fn(ctx, c), c.Close())
}
