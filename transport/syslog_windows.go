//go:build windows

package transport

import (
	"errors"

	"github.com/corvidlabs/quill/core"
)

// Syslog is unavailable on Windows; log/syslog has no Windows
// implementation. NewSyslog always fails so callers can fall back to
// another transport.
type Syslog struct{}

// NewSyslog always returns an error on Windows.
func NewSyslog(tag string) (*Syslog, error) {
	return nil, errors.New("transport: syslog is not supported on windows")
}

func (t *Syslog) WriteLevel(core.Level, string) error { return errors.New("transport: syslog unavailable") }
func (t *Syslog) Write(p []byte) error                { return errors.New("transport: syslog unavailable") }
func (t *Syslog) Flush() error                         { return nil }
func (t *Syslog) Close() error                         { return nil }
