// Package testutil provides shared test helpers for stores and log capture.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/starford/moodlog/internal/kv"
)

// TestStore creates a file-backed store in a temporary directory.
func TestStore(t *testing.T) *kv.File {
	t.Helper()
	store, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// LogRecorder is a slog.Handler that keeps every record it handles.
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogger returns a logger writing into a fresh LogRecorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

// WithAttrs implements slog.Handler. Attributes are dropped.
func (r *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

// WithGroup implements slog.Handler.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Count returns the number of records at or above level.
func (r *LogRecorder) Count(level slog.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Level >= level {
			n++
		}
	}
	return n
}
