package senfile

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with senfile-specific context.
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
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithStream adds a stream index field to the logger.
func (l *Logger) WithStream(index uint32) *Logger {
	return &Logger{Logger: l.Logger.With("stream", index)}
}

// LogFlush logs one chunk flush.
func (l *Logger) LogFlush(ctx context.Context, stream uint32, messages, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "chunk flush failed",
			"stream", stream,
			"messages", messages,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "chunk flushed",
			"stream", stream,
			"messages", messages,
			"bytes", bytes,
		)
	}
}

// LogClose logs the finalization of a container.
func (l *Logger) LogClose(ctx context.Context, path string, chunks, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "container close failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "container closed",
			"path", path,
			"chunks", chunks,
			"metadata_entries", entries,
		)
	}
}
