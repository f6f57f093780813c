package sink

import (
	"sync"

	"github.com/corvidlabs/quill/core"
)

// Memory is a test double that appends emitted records to an in-memory
// slice. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	records []*core.Record
	closed  bool
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory { return &Memory{} }

// Emit implements core.Sink.
func (m *Memory) Emit(rec *core.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

// Records returns a snapshot of every record emitted so far.
func (m *Memory) Records() []*core.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*core.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Flush implements core.Flusher as a no-op; Memory never buffers.
func (m *Memory) Flush() error { return nil }

// Close implements core.Sink.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
