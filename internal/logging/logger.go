// Package logging provides structured logging for boxsync using slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
)

var current atomic.Pointer[slog.Logger]

// Options selects the handler, its level and its destination.
type Options struct {
	// Level is the minimum level written. The CLI default is LevelWarn.
	Level slog.Level
	// Output is where records go; nil means stderr.
	Output io.Writer
	JSON   bool
	// AddSource annotates records with file:line, used by --debug.
	AddSource bool
}

// DefaultOptions keeps stderr quiet below warnings, since command output is
// printed directly to stdout.
func DefaultOptions() Options {
	return Options{Level: LevelWarn, Output: os.Stderr}
}

// New builds a text or JSON logger from opts.
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// Default returns the process logger, building one from DefaultOptions on
// first use.
func Default() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, New(DefaultOptions()))
	return current.Load()
}

// SetDefault replaces the process logger and slog's default with l.
func SetDefault(l *slog.Logger) {
	current.Store(l)
	slog.SetDefault(l)
}

func With(args ...any) *slog.Logger { return Default().With(args...) }

// WithContext prefers a logger stored in ctx over the process logger.
func WithContext(ctx context.Context) *slog.Logger {
	if l := FromContext(ctx); l != nil {
		return l
	}
	return Default()
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }

type loggerKey struct{}

// NewContext stores l in ctx for WithContext and FromContext.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by NewContext, or nil.
func FromContext(ctx context.Context) *slog.Logger {
	l, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return l
}

// Attribute keys shared by every package.
const (
	KeyHost      = "host"
	KeyPath      = "path"
	KeyTarget    = "target"
	KeyOperation = "operation"
	KeyCount     = "count"
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyRunID     = "run_id"
)

// Host returns a slog attribute identifying a remote host.
func Host(h string) slog.Attr {
	return slog.String(KeyHost, h)
}

// Path is a local or remote file path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Target returns a slog attribute describing a sync target.
func Target(t string) slog.Attr {
	return slog.String(KeyTarget, t)
}

// Operation names the step being logged.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// RunID returns a slog attribute correlating the lines of one sync run.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Err is empty for a nil error so it can be passed unconditionally.
func Err(err error) slog.Attr {
	if err != nil {
		return slog.Any(KeyError, err)
	}
	return slog.Attr{}
}

// Count is a number of items, such as hosts or archive entries.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Timer logs the elapsed time of an operation at debug level when the
// returned func is called. Use as: defer logging.Timer("sync")().
func Timer(op string) func() {
	start := time.Now()
	return func() {
		Debug("operation finished", Operation(op), slog.Duration(KeyDuration, time.Since(start)))
	}
}
