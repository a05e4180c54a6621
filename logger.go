package cubego

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with cubego-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogBuild logs a cube build.
func (l *Logger) LogBuild(ctx context.Context, rows, dimensions, measures int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"rows", rows,
			"dimensions", dimensions,
			"measures", measures,
			"duration", duration,
		)
	}
}

// LogQuery logs a point query.
func (l *Logger) LogQuery(ctx context.Context, measureName, fn string, matched uint64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"measure", measureName,
			"fn", fn,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"measure", measureName,
			"fn", fn,
			"matched", matched,
			"duration", duration,
		)
	}
}

// LogSave logs an artifact save.
func (l *Logger) LogSave(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "artifact saved",
			"filename", filename,
		)
	}
}

// LogLoad logs an artifact load.
func (l *Logger) LogLoad(ctx context.Context, filename string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "artifact loaded",
			"filename", filename,
			"rows", rows,
		)
	}
}
