package learner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with learner-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel maps debug, info, note, warn and error to a slog level.
// "note" is an alias for info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info", "note":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "fatal":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("learner: unknown log level %q", s)
	}
}

// WithComponent tags every record with the pipeline stage or subsystem.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// WithRemote adds the peer address.
func (l *Logger) WithRemote(addr string) *Logger {
	return &Logger{
		Logger: l.Logger.With("remote", addr),
	}
}

// LogRequest logs a completed request. Failures that produced an error
// response are warnings; successful requests are debug records.
func (l *Logger) LogRequest(ctx context.Context, request fmt.Stringer, code fmt.Stringer, d time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "request failed",
			"request", request.String(),
			"code", code.String(),
			"duration", d,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "request completed",
			"request", request.String(),
			"duration", d,
		)
	}
}

// LogConnection logs a connection opening or closing. err is the reason a
// connection was dropped, nil for a clean close.
func (l *Logger) LogConnection(ctx context.Context, remote string, opened bool, err error) {
	switch {
	case opened:
		l.DebugContext(ctx, "connection accepted", "remote", remote)
	case err != nil:
		l.WarnContext(ctx, "connection dropped",
			"remote", remote,
			"error", err,
		)
	default:
		l.DebugContext(ctx, "connection closed", "remote", remote)
	}
}

// LogStartup logs the listening address and pipeline shape.
func (l *Logger) LogStartup(ctx context.Context, addr string, readers, workers int) {
	l.InfoContext(ctx, "server started",
		"address", addr,
		"read_threads", readers,
		"process_threads", workers,
	)
}

// LogBackup logs a database backup.
func (l *Logger) LogBackup(ctx context.Context, key string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup saved",
			"key", key,
			"bytes", size,
		)
	}
}
