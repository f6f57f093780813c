// Package quill is a structured, high-throughput application logging
// library. Callers emit records at one of six severity levels using a
// message template with named, indexed, or key-value placeholders; the
// library parses the template, binds arguments into typed properties,
// routes the record through a filter chain to one or more sinks, formats
// the record per sink, and writes it through a transport.
package quill

import (
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/filter"
)

// defaultTemplateCacheSize is the template cache's default bound.
const defaultTemplateCacheSize = 1024

// defaultRateLimitPerSec and defaultRateLimitBurst give the facade's
// default token bucket (spec.md §4.10): 1000 records/sec.
const (
	defaultRateLimitPerSec = 1000
	defaultRateLimitBurst  = 1000
)

// config accumulates Option settings before Build assembles a Logger.
type config struct {
	minLevel         core.Level
	templateCacheCap int
	enrichers        []core.Enricher
	globalFilter     *filter.Chain
	rateLimitPerSec  float64
	rateLimitBurst   int
	sinks            []namedSinkConfig
	err              error
}

type namedSinkConfig struct {
	name string
	sink core.Sink
}

func newConfig() *config {
	return &config{
		minLevel:         core.InfoLevel,
		templateCacheCap: defaultTemplateCacheSize,
		globalFilter:     filter.NewChain(),
		rateLimitPerSec:  defaultRateLimitPerSec,
		rateLimitBurst:   defaultRateLimitBurst,
	}
}

// Option is a functional option for configuring a Logger (spec.md §4.10's
// fluent builder is layered on top of the same config struct via
// Builder).
type Option func(*config)

// WithMinimumLevel sets the global minimum severity level.
func WithMinimumLevel(level core.Level) Option {
	return func(c *config) { c.minLevel = level }
}

// WithTemplateCacheSize sets the template cache's bound. Zero disables
// caching.
func WithTemplateCacheSize(n int) Option {
	return func(c *config) { c.templateCacheCap = n }
}

// WithEnricher registers an enricher to run on every record.
func WithEnricher(e core.Enricher) Option {
	return func(c *config) { c.enrichers = append(c.enrichers, e) }
}

// WithGlobalFilter adds a rule to the global filter chain. All global
// rules must accept a record before any per-sink filter runs.
func WithGlobalFilter(f core.Filter) Option {
	return func(c *config) { c.globalFilter.Add(f) }
}

// WithGlobalPredicate sets the global chain's single predicate slot,
// replacing any predicate set by a prior call.
func WithGlobalPredicate(f core.Filter) Option {
	return func(c *config) { c.globalFilter.SetPredicate(f) }
}

// WithRateLimit sets the facade's token-bucket rate limit: count records
// admitted per window. Validation-warning records never consume budget
// (spec.md §4.10, P7).
func WithRateLimit(count int, window time.Duration) Option {
	return func(c *config) {
		if window <= 0 {
			c.err = firstErr(c.err, errRateLimitWindow)
			return
		}
		c.rateLimitPerSec = float64(count) / window.Seconds()
		c.rateLimitBurst = count
	}
}

// WithSink registers a named sink. Sinks are notified in registration
// order and shut down in reverse order on Close.
func WithSink(name string, s core.Sink) Option {
	return func(c *config) { c.sinks = append(c.sinks, namedSinkConfig{name: name, sink: s}) }
}

func firstErr(existing, next error) error {
	if existing != nil {
		return existing
	}
	return next
}
