package scope

// Scope owns one pushed frame on its goroutine's stack. Close pops the
// frame; Scope is safe to Close multiple times or never assign at all.
//
// Go has no destructors or move constructors, so the C++ "moved-from
// scope is inert" rule (spec.md §4.3) is expressed explicitly: Adopt is
// the move-assignment equivalent — it closes the receiver's current
// frame (if any), takes ownership of src's frame, and leaves src inert.
// Adopting self is a no-op, matching the self-move-assign rule.
type Scope struct {
	stack *Stack
	frame *frame
}

// Push opens a new scope frame on stack with the given properties and
// returns a handle that owns it. A nil or empty props map is valid and
// simply contributes nothing to the merge.
func Push(stack *Stack, props map[string]string) *Scope {
	f := &frame{props: cloneProps(props)}
	stack.push(f)
	return &Scope{stack: stack, frame: f}
}

// Close pops this scope's frame, if it still owns one. Calling Close on
// an already-closed or moved-from Scope is a no-op.
func (s *Scope) Close() error {
	if s == nil || s.frame == nil {
		return nil
	}
	s.stack.pop(s.frame)
	s.frame = nil
	return nil
}

// Adopt transfers ownership of src's frame into s, first closing
// whatever frame s currently owns. After Adopt, src is inert (as if
// Close had been called on it) and s owns src's former frame. Adopting
// self is a no-op.
func (s *Scope) Adopt(src *Scope) {
	if s == src {
		return
	}
	_ = s.Close()
	s.stack = src.stack
	s.frame = src.frame
	src.stack = nil
	src.frame = nil
}

func cloneProps(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
