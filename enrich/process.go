// Package enrich implements the stock enrichers that add to a record's
// custom-context map at log-call time (spec.md §4.2): process identity,
// goroutine identity, call-site source location, and correlation IDs.
package enrich

import (
	"os"
	"strconv"

	"github.com/corvidlabs/quill/core"
)

// Process adds the current process ID and hostname to every record.
// Hostname is resolved once and cached, since it cannot change for the
// life of the process.
type Process struct {
	pid      string
	hostname string
}

// NewProcess builds a Process enricher, resolving the hostname eagerly.
func NewProcess() *Process {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &Process{
		pid:      strconv.Itoa(os.Getpid()),
		hostname: host,
	}
}

// Enrich implements core.Enricher.
func (p *Process) Enrich(_ *core.Record, add func(name, value string)) {
	add("pid", p.pid)
	add("hostname", p.hostname)
}
