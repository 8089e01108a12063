package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RenderLogger writes one entry per render cycle.
type RenderLogger struct {
	logger *Logger
}

// NewRenderLogger creates a render logger tagged with the report component.
func NewRenderLogger(logger *Logger) *RenderLogger {
	return &RenderLogger{logger: logger.WithComponent(ComponentReport)}
}

// LogRendered logs a successful render.
func (rl *RenderLogger) LogRendered(ctx context.Context, id, source, variant string, records, users int, d time.Duration) {
	fields := NewFields().
		WithRender(id, source, variant, records, users).
		WithDuration(d.Milliseconds()).
		WithOperation(OpRender)
	rl.logger.InfoContext(ctx, "Report rendered", fields.ToSlice()...)
}

// LogFailed logs a render that stopped before producing a report. Input
// problems are warnings; anything else is an error.
func (rl *RenderLogger) LogFailed(ctx context.Context, id, source, variant string, err error, kind string, d time.Duration) {
	fields := NewFields().
		WithRender(id, source, variant, 0, 0).
		WithDuration(d.Milliseconds()).
		WithOperation(OpRender).
		WithError(err, kind)

	level := slog.LevelWarn
	if kind == "internal" {
		level = slog.LevelError
	}
	rl.logger.Logger.Log(ctx, level, "Report render failed", append([]any{FieldComponent, rl.logger.component}, fields.ToSlice()...)...)
}
