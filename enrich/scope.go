package enrich

import (
	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/scope"
)

// ScopeMerge adds the global context and the current goroutine's scope
// stack to a record's context map, in spec.md §4.3 merge order (global,
// then frames bottom-to-top). It must run after any enricher whose
// output global context or scope values are allowed to shadow, and
// before the template's own explicit properties are merged in by the
// logger facade.
type ScopeMerge struct {
	global *scope.Global
	stack  *scope.Stack
}

// NewScopeMerge builds a ScopeMerge enricher over the given global
// context and scope stack.
func NewScopeMerge(global *scope.Global, stack *scope.Stack) *ScopeMerge {
	return &ScopeMerge{global: global, stack: stack}
}

// Enrich implements core.Enricher.
func (s *ScopeMerge) Enrich(_ *core.Record, add func(name, value string)) {
	merged := s.stack.Merge(s.global)
	for k, v := range merged {
		add(k, v)
	}
}
