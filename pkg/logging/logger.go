package logging

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger returns a logger with the specified level, using a JSON
// handler with source location information. It does not install the
// logger as slog's default.
func InitLogger(level slog.Level) *slog.Logger {
	return InitLoggerWithFormat(level, "json")
}

// InitLoggerWithFormat is InitLogger with an explicit handler format:
// "text" for slog's human-readable handler, anything else for JSON.
func InitLoggerWithFormat(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, AddSource: true}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a case-insensitive level name to a slog.Level,
// defaulting to Info for an empty or unrecognized value.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewComponentLogger creates a component-specific logger with context.
// It adds the component name to all log messages for better traceability.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	return base.With(
		slog.String("component", component),
	)
}
