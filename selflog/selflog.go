// Package selflog is the library's internal diagnostic channel: an
// opt-in sink for faults the library itself hits (a transport write
// failing, a sink panicking) that must never be allowed to reach the
// application's own logs. Disabled by default, matching the teacher's
// own internal diagnostics convention.
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var out atomic.Pointer[io.Writer]

func init() {
	if os.Getenv("QUILL_SELFLOG") != "" {
		var w io.Writer = os.Stderr
		out.Store(&w)
	}
}

// Enable directs selflog output to w. Passing nil disables it.
func Enable(w io.Writer) {
	if w == nil {
		out.Store(nil)
		return
	}
	out.Store(&w)
}

// Enabled reports whether a writer is currently configured.
func Enabled() bool {
	return out.Load() != nil
}

// Printf writes a formatted diagnostic line if selflog is enabled; it is
// a silent no-op otherwise.
func Printf(format string, args ...any) {
	p := out.Load()
	if p == nil {
		return
	}
	fmt.Fprintf(*p, format+"\n", args...)
}
