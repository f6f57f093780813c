package enrich

import (
	"runtime"

	"github.com/corvidlabs/quill/core"
)

// Goroutine adds the current goroutine's numeric ID to every record.
// Go has no native thread-identity API; the ID is parsed out of the
// "goroutine <id> [...]" header runtime.Stack always writes first.
type Goroutine struct{}

// NewGoroutine builds a Goroutine enricher.
func NewGoroutine() *Goroutine { return &Goroutine{} }

// Enrich implements core.Enricher.
func (Goroutine) Enrich(rec *core.Record, add func(name, value string)) {
	gid := currentGoroutineID()
	if gid == "" {
		return
	}
	rec.GoroutineID = gid
	add("goroutineId", gid)
}

func currentGoroutineID() string {
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
