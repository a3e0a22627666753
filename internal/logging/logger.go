// Package logging builds the leveled slog loggers used by the CLI and the
// run facade.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace sits below Debug and enables per-turn output.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug", "trace" and "warn" (any case) to a level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled logger writing text, or JSON when asJSON is set.
func NewLogger(level string, w io.Writer, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler mirrors slog.DiscardHandler (Go 1.24+) for older toolchains.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
