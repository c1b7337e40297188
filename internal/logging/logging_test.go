package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", "info")
	logger.Info("cloned", "files", 3)

	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"files":3`) {
		t.Errorf("unexpected JSON log line: %q", out)
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "text", "warn")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}
