// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// Entry is a single captured log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records every log entry in
// memory so tests can assert on structured output.
type CaptureHandler struct {
	mu      sync.Mutex
	entries []Entry
	base    []slog.Attr
}

// NewCaptureLogger returns a logger wired to a fresh capture handler.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{}
	return slog.New(h), h
}

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.base))
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// Enabled always returns true so tests capture every level.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs returns a handler that forwards to the same capture so
// records logged through a derived logger stay visible here.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedCapture{parent: h, base: append(append([]slog.Attr{}, h.base...), attrs...)}
}

func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// sharedCapture forwards records to the parent handler with extra
// base attributes applied.
type sharedCapture struct {
	parent *CaptureHandler
	base   []slog.Attr
}

func (s *sharedCapture) Handle(ctx context.Context, r slog.Record) error {
	clone := r.Clone()
	clone.AddAttrs(s.base...)
	return s.parent.Handle(ctx, clone)
}

func (s *sharedCapture) Enabled(context.Context, slog.Level) bool { return true }

func (s *sharedCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedCapture{parent: s.parent, base: append(append([]slog.Attr{}, s.base...), attrs...)}
}

func (s *sharedCapture) WithGroup(string) slog.Handler { return s }

// Entries returns a copy of everything captured so far.
func (h *CaptureHandler) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// ByLevel returns captured entries at the given level.
func (h *CaptureHandler) ByLevel(level slog.Level) []Entry {
	var out []Entry
	for _, e := range h.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasMessage reports whether any captured entry contains msg.
func (h *CaptureHandler) HasMessage(msg string) bool {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any captured entry has the attribute.
func (h *CaptureHandler) HasAttr(key string, value any) bool {
	for _, e := range h.Entries() {
		if v, ok := e.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertLogged fails the test when no entry at the level contains msg.
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, msg string) {
	t.Helper()
	for _, e := range h.ByLevel(level) {
		if strings.Contains(e.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
	for _, e := range h.ByLevel(level) {
		t.Logf("captured: %s", e.Message)
	}
}
