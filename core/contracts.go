package core

// Sink emits records to a destination. Implementations must treat the
// record as read-only. The logger facade builds a fresh Record (and
// property slice) for every call, so a sink may keep the pointer past Emit,
// as the async and batch sinks do when they queue it.
type Sink interface {
	// Emit writes the record to the sink's destination. Sinks must never
	// panic or return an error to the caller (spec.md §7) — failures are
	// reported through the selflog diagnostic channel instead.
	Emit(rec *Record)

	// Close releases any resources held by the sink (file handles, worker
	// goroutines) and flushes any buffered records.
	Close() error
}

// Flusher is implemented by sinks that buffer records (async, batch) and
// can be asked to block until every record enqueued before the call has
// been written (spec.md §4.7, P4).
type Flusher interface {
	Flush() error
}

// Filter decides whether a record should proceed through the pipeline.
type Filter interface {
	IsEnabled(rec *Record) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(rec *Record) bool

// IsEnabled calls f.
func (f FilterFunc) IsEnabled(rec *Record) bool { return f(rec) }

// Enricher adds contextual properties to a record at log-call time. An
// enricher that panics is recovered by the caller and does not prevent
// subsequent enrichers from running (spec.md §4.2).
type Enricher interface {
	Enrich(rec *Record, add func(name, value string))
}

// EnricherFunc adapts a plain function to the Enricher interface.
type EnricherFunc func(rec *Record, add func(name, value string))

// Enrich calls f.
func (f EnricherFunc) Enrich(rec *Record, add func(name, value string)) { f(rec, add) }
