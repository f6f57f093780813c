//go:build !windows

package transport

import (
	"log/syslog"
	"sync"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/selflog"
)

// Syslog writes to the local syslog daemon via the standard library's
// log/syslog client, the only syslog client available anywhere in the
// example corpus. It maps quill's six severities onto RFC 5424 levels.
type Syslog struct {
	mu     sync.Mutex
	w      *syslog.Writer
	failed bool
}

// NewSyslog dials the local syslog daemon with the given tag.
func NewSyslog(tag string) (*Syslog, error) {
	w, err := syslog.New(syslog.LOG_INFO, tag)
	if err != nil {
		return nil, err
	}
	return &Syslog{w: w}, nil
}

// WriteLevel writes msg at the syslog priority corresponding to lvl.
func (t *Syslog) WriteLevel(lvl core.Level, msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	switch lvl {
	case core.TraceLevel, core.DebugLevel:
		err = t.w.Debug(msg)
	case core.InfoLevel:
		err = t.w.Info(msg)
	case core.WarnLevel:
		err = t.w.Warning(msg)
	case core.ErrorLevel:
		err = t.w.Err(msg)
	case core.FatalLevel:
		err = t.w.Crit(msg)
	default:
		err = t.w.Info(msg)
	}

	if err != nil {
		if !t.failed {
			selflog.Printf("transport/syslog: write failed: %v", err)
			t.failed = true
		}
		return err
	}
	t.failed = false
	return nil
}

// Write implements Transport by writing at info severity; formatters
// that need level-aware syslog priorities should call WriteLevel
// directly instead.
func (t *Syslog) Write(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.w.Write(p)
	return err
}

// Flush is a no-op: the syslog protocol has no flush concept.
func (t *Syslog) Flush() error { return nil }

func (t *Syslog) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Close()
}
