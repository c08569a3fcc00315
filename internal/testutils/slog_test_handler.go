package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is one captured log record flattened to a map. The "level" and
// "message" keys hold the record's level and message; every attribute,
// including ones bound with Logger.With, is stored under its own key.
type LogEntry map[string]interface{}

type entrySink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// TestSlogHandler is a memory-backed slog.Handler for testing
type TestSlogHandler struct {
	sink  *entrySink
	attrs []slog.Attr
}

// NewTestSlogHandler creates a new memory-backed slog handler
func NewTestSlogHandler() *TestSlogHandler {
	return &TestSlogHandler{sink: &entrySink{}}
}

// Enabled satisfies slog.Handler interface
func (h *TestSlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle satisfies slog.Handler interface
func (h *TestSlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := make(LogEntry, len(h.attrs)+r.NumAttrs()+2)
	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	entry["level"] = r.Level.String()
	entry["message"] = r.Message

	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.entries = append(h.sink.entries, entry)
	return nil
}

// WithAttrs returns a handler that adds attrs to every entry. Derived
// handlers write into the same entry list as their parent.
func (h *TestSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TestSlogHandler{sink: h.sink, attrs: merged}
}

// WithGroup satisfies slog.Handler interface. Groups are flattened.
func (h *TestSlogHandler) WithGroup(name string) slog.Handler {
	return h
}

// Entries returns all captured log entries
func (h *TestSlogHandler) Entries() []LogEntry {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	result := make([]LogEntry, len(h.sink.entries))
	copy(result, h.sink.entries)
	return result
}

// EntriesWithMessage returns the captured entries whose message is msg.
func (h *TestSlogHandler) EntriesWithMessage(msg string) []LogEntry {
	var matched []LogEntry
	for _, e := range h.Entries() {
		if e["message"] == msg {
			matched = append(matched, e)
		}
	}
	return matched
}

// Clear resets the captured log entries
func (h *TestSlogHandler) Clear() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.entries = nil
}
