package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "group_id", "0x9a0b")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected INFO record to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "group_id=0x9a0b") {
		t.Errorf("Expected WARN record with attributes, got %q", out)
	}
}
