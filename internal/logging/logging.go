// Package logging configures the process-wide structured logger. Every
// component logs through *slog.Logger handles passed in at construction
// rather than the global slog default, so tests can inject their own.
package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON-handler slog.Logger writing to stderr at the given
// level ("debug", "info", "warn", "error"; unrecognised values fall back
// to "info").
func New(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
