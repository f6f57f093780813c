package quill

import (
	"sync/atomic"
	"time"

	"github.com/corvidlabs/quill/core"
)

// Builder accumulates Option values and produces exactly one Logger
// (spec.md §4.10's "fluent builder that accumulates configuration then
// produces a logger; the same configuration may build only once").
type Builder struct {
	opts []Option
	used atomic.Bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// WithOption appends a raw Option and returns the builder for chaining.
func (b *Builder) WithOption(opt Option) *Builder {
	b.opts = append(b.opts, opt)
	return b
}

// MinimumLevel is sugar for WithOption(WithMinimumLevel(level)).
func (b *Builder) MinimumLevel(level core.Level) *Builder {
	return b.WithOption(WithMinimumLevel(level))
}

// TemplateCacheSize is sugar for WithOption(WithTemplateCacheSize(n)).
func (b *Builder) TemplateCacheSize(n int) *Builder {
	return b.WithOption(WithTemplateCacheSize(n))
}

// Enricher is sugar for WithOption(WithEnricher(e)).
func (b *Builder) Enricher(e core.Enricher) *Builder {
	return b.WithOption(WithEnricher(e))
}

// Sink is sugar for WithOption(WithSink(name, s)).
func (b *Builder) Sink(name string, s core.Sink) *Builder {
	return b.WithOption(WithSink(name, s))
}

// RateLimit is sugar for WithOption(WithRateLimit(count, window)).
func (b *Builder) RateLimit(count int, window time.Duration) *Builder {
	return b.WithOption(WithRateLimit(count, window))
}

// Build consumes the builder's accumulated options and produces a
// Logger. A Builder may only Build once; subsequent calls return
// errBuilderAlreadyUsed.
func (b *Builder) Build() (*Logger, error) {
	if !b.used.CompareAndSwap(false, true) {
		return nil, errBuilderAlreadyUsed
	}
	return Build(b.opts...)
}
