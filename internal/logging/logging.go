// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelVar slog.LevelVar

// ParseLevel maps a config string to a slog level; unknown values become Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// SetLevel changes the level of every logger built by New.
func SetLevel(level string) {
	levelVar.Set(ParseLevel(level))
}

// New builds a logger writing to w. format is "json" or "text".
func New(w io.Writer, format string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: &levelVar}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Setup installs a logger on w as the slog default and returns it.
func Setup(w io.Writer, level, format string) *slog.Logger {
	SetLevel(level)
	l := New(w, format)
	slog.SetDefault(l)
	return l
}

// LLMRequest logs an outgoing prompt at debug level.
func LLMRequest(l *slog.Logger, provider, flow, prompt string, media int) {
	if l == nil {
		return
	}
	l.Debug("llm request", "provider", provider, "flow", flow, "prompt", prompt, "media", media)
}

// LLMResponse logs a raw model reply at debug level.
func LLMResponse(l *slog.Logger, provider, flow, raw string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.Debug("llm response", "provider", provider, "flow", flow, "err", err)
		return
	}
	l.Debug("llm response", "provider", provider, "flow", flow, "raw", raw)
}
