// Package scope implements the two-tier context propagation model from
// spec.md §4.3: a process-wide global context, and a per-goroutine stack
// of scope frames that a Scope handle owns and pops on Close.
//
// Go has no thread-local storage, so the per-goroutine stack is keyed by
// the calling goroutine's numeric ID, extracted the same way mtlog's
// correlation enricher does it: parse the "goroutine <id> [...]" header
// that runtime.Stack always writes first.
package scope

import "runtime"

// goroutineID extracts the current goroutine's numeric ID from a short
// stack trace. It returns "" if the ID could not be parsed, which callers
// treat as "no stack affinity" rather than an error.
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	stack := string(buf[:n])

	const prefix = "goroutine "
	if len(stack) <= len(prefix) || stack[:len(prefix)] != prefix {
		return ""
	}
	rest := stack[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ' ' {
			return rest[:i]
		}
	}
	return ""
}
