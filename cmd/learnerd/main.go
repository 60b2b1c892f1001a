// Command learnerd runs a learner storage server and offers maintenance
// commands for its database and backups.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/hupe1980/learner"
	"github.com/hupe1980/learner/config"
)

// GlobalOptions apply to every command.
type GlobalOptions struct {
	Config   string `short:"c" long:"config" description:"configuration file; the standard locations are searched when missing"`
	LogLevel string `long:"log-level" description:"debug, info, warn or error; overrides the configuration"`
}

var global GlobalOptions

func main() {
	parser := flags.NewParser(&global, flags.Default)
	parser.ShortDescription = "learner storage server"

	mustAdd(parser, "serve", "Run the server", "Serve requests until interrupted.", &serveCommand{})
	mustAdd(parser, "inspect", "Summarize a database", "Count the keys of a database by item type.", &inspectCommand{})
	mustAdd(parser, "restore", "Restore a backup", "Write a backup from a target into a database file.", &restoreCommand{})
	mustAdd(parser, "pages", "Describe a paged file", "Print the header of a paged file.", &pagesCommand{})

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		// go-flags already printed its own parse errors.
		if ferr == nil {
			fmt.Fprintln(os.Stderr, "learnerd:", err)
		}

		os.Exit(1)
	}
}

func mustAdd(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

// loadConfig reads the configuration. A missing file is not an error; the
// defaults apply.
func loadConfig(log *learner.Logger) (config.Config, error) {
	cfg, err := config.Load(global.Config)
	if errors.Is(err, config.ErrNotFound) {
		log.Warn("no configuration file found, using defaults")
		return cfg, nil
	}

	if err != nil {
		return cfg, err
	}

	log.Debug("configuration loaded", "path", cfg.Path)

	return cfg, nil
}

// newLogger builds the process logger from a level and a format of "text"
// or "json".
func newLogger(w io.Writer, level, format string) (*learner.Logger, error) {
	if global.LogLevel != "" {
		level = global.LogLevel
	}

	lvl, err := learner.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch format {
	case "", "text":
		return learner.NewTextLogger(w, lvl), nil
	case "json":
		return learner.NewJSONLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("learnerd: unknown log format %q", format)
	}
}

// bootstrapLogger is used until the configuration is known.
func bootstrapLogger() *learner.Logger {
	log, err := newLogger(os.Stderr, "info", "text")
	if err != nil {
		return learner.NewTextLogger(os.Stderr, slog.LevelInfo)
	}

	return log
}
