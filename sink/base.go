// Package sink provides the concrete core.Sink implementations: Base (the
// formatter+transport write path every concrete sink composes), Async
// (bounded-queue, non-blocking wrapper), Batch (buffering base class for
// batched backends), Rolling (size/time rotation to disk), and Memory (a
// test double). Grounded on willibrandon-mtlog's sinks package.
package sink

import (
	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/filter"
	"github.com/corvidlabs/quill/formatter"
	"github.com/corvidlabs/quill/selflog"
	"github.com/corvidlabs/quill/transport"
)

// Base composes a formatter and a transport behind the write path spec.md
// §4.6 gives every sink: tag-admit check, then per-sink level, then
// per-sink filter, then format, then write.
type Base struct {
	name      string
	level     core.Level
	formatter formatter.Formatter
	transport transport.Transport
	filter    *filter.Chain
	tags      *filter.TagRouter
}

// NewBase builds a Base sink named name, writing records at or above
// minLevel through f to t. filterChain and tagRouter may be nil, in which
// case they admit everything.
func NewBase(name string, minLevel core.Level, f formatter.Formatter, t transport.Transport, filterChain *filter.Chain, tagRouter *filter.TagRouter) *Base {
	if filterChain == nil {
		filterChain = filter.NewChain()
	}
	if tagRouter == nil {
		tagRouter = filter.NewTagRouter(nil, nil)
	}
	return &Base{name: name, level: minLevel, formatter: f, transport: t, filter: filterChain, tags: tagRouter}
}

// Name returns the sink's configured name, used to label metrics.
func (b *Base) Name() string { return b.name }

// Emit implements core.Sink.
func (b *Base) Emit(rec *core.Record) {
	if !b.tags.Admits(rec.Tags) {
		return
	}
	if rec.Severity < b.level {
		return
	}
	if !b.filter.IsEnabled(rec) {
		return
	}
	data, err := b.formatter.Format(rec)
	if err != nil {
		if selflog.Enabled() {
			selflog.Printf("[sink:%s] format error: %v", b.name, err)
		}
		return
	}
	data = append(data, '\n')
	if err := b.transport.Write(data); err != nil {
		if selflog.Enabled() {
			selflog.Printf("[sink:%s] write error: %v", b.name, err)
		}
	}
}

// Flush implements core.Flusher by flushing the underlying transport.
func (b *Base) Flush() error { return b.transport.Flush() }

// Close implements core.Sink.
func (b *Base) Close() error { return b.transport.Close() }
