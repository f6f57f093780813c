// Package filter implements the two record filtering DSLs from
// spec.md §4.4 — the expression DSL and the compact DSL — plus the
// AND-combinator and tag router that apply at the global and per-sink
// layers.
package filter

import (
	"sync"

	"github.com/corvidlabs/quill/core"
)

// And combines filters so the result accepts a record iff every one of
// them does, in order (spec.md §4.5 — rules evaluate in insertion order).
func And(filters ...core.Filter) core.Filter {
	fs := append([]core.Filter(nil), filters...)
	return core.FilterFunc(func(rec *core.Record) bool {
		for _, f := range fs {
			if !f.IsEnabled(rec) {
				return false
			}
		}
		return true
	})
}

// Chain is a mutable, insertion-ordered rule list plus a single optional
// predicate, matching the two filter slots spec.md §4.4 gives each of the
// global layer and each sink. Chain is safe for concurrent use: Add builds
// a new copy of the rule slice, both mutators hold the chain's lock, and
// IsEnabled snapshots the rules and predicate under that lock, so a record
// sees either the pre- or post-change ruleset (spec.md §4.5).
type Chain struct {
	mu        sync.RWMutex
	rules     []core.Filter
	predicate core.Filter
}

// NewChain returns an empty Chain (accepts everything).
func NewChain() *Chain { return &Chain{} }

// Add appends a rule to the chain.
func (c *Chain) Add(rule core.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]core.Filter, len(c.rules)+1)
	copy(next, c.rules)
	next[len(c.rules)] = rule
	c.rules = next
}

// SetPredicate replaces the chain's single predicate slot.
func (c *Chain) SetPredicate(p core.Filter) {
	c.mu.Lock()
	c.predicate = p
	c.mu.Unlock()
}

// IsEnabled implements core.Filter: every rule must accept, and the
// predicate (if set) must accept.
func (c *Chain) IsEnabled(rec *core.Record) bool {
	c.mu.RLock()
	rules, predicate := c.rules, c.predicate
	c.mu.RUnlock()
	for _, r := range rules {
		if !r.IsEnabled(rec) {
			return false
		}
	}
	if predicate != nil && !predicate.IsEnabled(rec) {
		return false
	}
	return true
}
