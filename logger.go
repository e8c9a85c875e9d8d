package veffgo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with writer-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithWriter tags every event with the writer name.
func (l *Logger) WithWriter(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("writer", name),
	}
}

// WithPrefix tags every event with the annotation tag prefix.
func (l *Logger) WithPrefix(prefix TagPrefix) *Logger {
	return &Logger{
		Logger: l.Logger.With("tag_prefix", string(prefix)),
	}
}

// LogBatch logs a write call.
func (l *Logger) LogBatch(ctx context.Context, rows, methods int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch write failed",
			"rows", rows,
			"methods", methods,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "batch written",
		"rows", rows,
		"methods", methods,
		"duration", d,
	)
}

// LogSkippedBatch logs a batch that carried records but no predictions.
func (l *Logger) LogSkippedBatch(ctx context.Context, rows int) {
	l.WarnContext(ctx, "batch without predictions skipped",
		"rows", rows,
	)
}

// LogSchemaLocked logs the schema captured from the first batch.
func (l *Logger) LogSchemaLocked(ctx context.Context, s *SchemaSnapshot) {
	l.InfoContext(ctx, "schema locked",
		"methods", s.Methods,
		"columns", s.Columns,
	)
}

// LogClose logs the release of an output artifact.
func (l *Logger) LogClose(ctx context.Context, rows int64, bytes uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"rows", rows,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "writer closed",
		"rows", rows,
		"size", humanize.Bytes(bytes),
	)
}
