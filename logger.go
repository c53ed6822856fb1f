package annoset

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with annoset-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithFormat adds a format field to the logger.
func (l *Logger) WithFormat(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("format", name),
	}
}

// WithItem adds item id and subset fields to the logger.
func (l *Logger) WithItem(id, subset string) *Logger {
	return &Logger{
		Logger: l.Logger.With("item", id, "subset", subset),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogImport logs an import. Warnings are reported at warn level.
func (l *Logger) LogImport(ctx context.Context, format string, items, warnings int, d time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "import failed",
			"format", format,
			"error", err,
		)
	case warnings > 0:
		l.WarnContext(ctx, "import completed with warnings",
			"format", format,
			"items", items,
			"warnings", warnings,
			"duration", d,
		)
	default:
		l.DebugContext(ctx, "import completed",
			"format", format,
			"items", items,
			"duration", d,
		)
	}
}

// LogExport logs an export.
func (l *Logger) LogExport(ctx context.Context, format string, items int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"format", format,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "export completed",
			"format", format,
			"items", items,
			"duration", d,
		)
	}
}

// LogMerge logs a merge. Conflicts are reported at warn level.
func (l *Logger) LogMerge(ctx context.Context, sources, items, conflicts int, d time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "merge failed",
			"sources", sources,
			"error", err,
		)
	case conflicts > 0:
		l.WarnContext(ctx, "merge completed with conflicts",
			"sources", sources,
			"items", items,
			"conflicts", conflicts,
			"duration", d,
		)
	default:
		l.DebugContext(ctx, "merge completed",
			"sources", sources,
			"items", items,
			"duration", d,
		)
	}
}

// LogTransform logs a transform run.
func (l *Logger) LogTransform(ctx context.Context, steps, items int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "transform failed",
			"steps", steps,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "transform completed",
			"steps", steps,
			"items", items,
			"duration", d,
		)
	}
}
