// Package testutil holds helpers shared by the module's tests.
package testutil

import (
	"fmt"
	"sync"
)

// Entry is a single captured log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []interface{}
}

// RecordingLogger captures log calls for assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
	closed  bool
}

func (r *RecordingLogger) record(level, msg string, kv []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: kv})
}

func (r *RecordingLogger) Debug(msg string, kv ...interface{}) { r.record("debug", msg, kv) }
func (r *RecordingLogger) Info(msg string, kv ...interface{})  { r.record("info", msg, kv) }
func (r *RecordingLogger) Warn(msg string, kv ...interface{})  { r.record("warn", msg, kv) }
func (r *RecordingLogger) Error(msg string, kv ...interface{}) { r.record("error", msg, kv) }

// Close marks the logger closed.
func (r *RecordingLogger) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Entries returns a copy of the captured entries.
func (r *RecordingLogger) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns "level: msg" for every captured entry.
func (r *RecordingLogger) Messages() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s: %s", e.Level, e.Msg)
	}
	return out
}

// Closed reports whether Close was called.
func (r *RecordingLogger) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
