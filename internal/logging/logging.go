// Package logging provides the slog.Logger factory shared by the CLI, the
// web UI and the MCP server.
//
// Log format is controlled by the LOG_FORMAT environment variable:
//
//	LOG_FORMAT=text    human-readable key=value pairs (default)
//	LOG_FORMAT=json    structured JSON, suitable for log aggregators
//
// Log level is controlled by LOG_LEVEL (debug, info, warn, error; default info).
//
// Logs always go to stderr: stdout carries CLI JSON output and the MCP stdio protocol.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger configured from environment variables.
func New() *slog.Logger {
	return NewWithWriter(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

// NewWithWriter builds a logger writing to w with the given format and level names.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used by tests and as a nil fallback.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
