package clustergo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with clustergo-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogSeed logs the seeding phase.
func (l *Logger) LogSeed(ctx context.Context, strategy string, seeds []int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "seeding failed",
			"strategy", strategy,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "seeding completed",
			"strategy", strategy,
			"centers", len(seeds),
		)
	}
}

// LogFit logs a completed fit.
func (l *Logger) LogFit(ctx context.Context, iterations int, cost float64, converged bool) {
	l.DebugContext(ctx, "fit completed",
		"iterations", iterations,
		"cost", cost,
		"converged", converged,
	)
}

// LogEmptyCluster logs an empty-cluster recovery.
func (l *Logger) LogEmptyCluster(ctx context.Context, cluster, reseedFrom int) {
	l.WarnContext(ctx, "empty cluster reseeded",
		"cluster", cluster,
		"reseed_point", reseedFrom,
	)
}

// LogNonConvergence logs a medoid run that hit the swap-round cap.
func (l *Logger) LogNonConvergence(ctx context.Context, rounds int, cost float64) {
	l.WarnContext(ctx, "swap search did not reach a fixed point",
		"rounds", rounds,
		"cost", cost,
	)
}
