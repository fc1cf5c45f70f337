package cgbench

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with benchmark-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info level.
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

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSpace tags the logger with an execution space name.
func (l *Logger) WithSpace(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("space", name),
	}
}

// WithSize tags the logger with the problem edge length.
func (l *Logger) WithSize(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("n", n),
	}
}

// LogSolve logs the outcome of one CG run.
func (l *Logger) LogSolve(ctx context.Context, r Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cg solve failed",
			"space", r.Space,
			"iterations", r.Iterations,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cg solve completed",
			"space", r.Space,
			"iterations", r.Iterations,
			"seconds", r.Seconds,
			"residual", r.Residual,
		)
	}
}

// LogDot logs the outcome of one DOT benchmark run.
func (l *Logger) LogDot(ctx context.Context, r DotReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dot benchmark failed",
			"space", r.Space,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dot benchmark completed",
			"space", r.Space,
			"reps", r.Reps,
			"seconds", r.Seconds,
		)
	}
}
