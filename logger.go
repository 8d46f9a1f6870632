package curvego

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with curvego-specific helpers.
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
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// LogBuild logs a corpus build.
func (l *Logger) LogBuild(ctx context.Context, indexed, skipped int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"indexed", indexed,
			"skipped", skipped,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"indexed", indexed,
		"skipped", skipped,
		"took", took,
	)
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, pool, results, skipped int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"pool", pool,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"k", k,
		"pool", pool,
		"results", results,
		"skipped", skipped,
		"took", took,
	)
}
