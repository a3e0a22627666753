package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"info":  slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"trace": LevelTrace,
		"warn":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf, false)
	logger.Debug("hidden")
	logger.Info("shown", "generation", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "generation=3") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNewLoggerLabelsTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf, false)
	logger.Log(context.Background(), LevelTrace, "turn")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Fatalf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", &buf, true).Debug("repopulated", "offspring", 4)
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "repopulated" || entry["offspring"] != float64(4) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	logger := Discard()
	for _, level := range []slog.Level{LevelTrace, slog.LevelInfo, slog.LevelError} {
		if logger.Enabled(context.Background(), level) {
			t.Fatalf("discard logger enabled at %v", level)
		}
	}
}
