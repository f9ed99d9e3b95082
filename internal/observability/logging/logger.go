// Package logging configures the process-wide structured logger. Both
// binaries emit JSON records to stdout tagged with the component name, so the
// api and worker streams stay distinguishable once aggregated.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the logger for one permitflow component. Unknown level
// names fall back to info rather than failing startup.
func NewJSONLogger(component, level string) *slog.Logger {
	return NewJSONLoggerTo(os.Stdout, component, level)
}

// NewJSONLoggerTo is NewJSONLogger with an explicit sink, for tests.
func NewJSONLoggerTo(w io.Writer, component, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With(
		slog.String("app", "permitflow"),
		slog.String("component", component),
	)
}

// ParseLevel maps a config string to a slog level. Empty and unknown values
// mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
