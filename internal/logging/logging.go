// Package logging builds the application's *slog.Logger.
package logging

import (
	"io"
	"log/slog"
)

// Option adjusts the logger New builds.
type Option func(*slog.HandlerOptions)

// WithLevel overrides the environment's default minimum level. The CLI
// uses it to keep everything below WARN off its terminal.
func WithLevel(level slog.Leveler) Option {
	return func(o *slog.HandlerOptions) { o.Level = level }
}

// New returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func New(env string, w io.Writer, opts ...Option) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if env == "prod" {
		handlerOpts.Level = slog.LevelInfo
	}
	for _, opt := range opts {
		opt(handlerOpts)
	}

	switch env {
	case "prod", "staging":
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
}
