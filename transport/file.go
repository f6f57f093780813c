package transport

import (
	"os"
	"sync"

	"github.com/corvidlabs/quill/selflog"
)

// File writes to a single append-mode file handle. It owns the handle
// and quotes a single mutex across writes for thread safety (spec.md
// §6, "the file transport quotes a single mutex for serialization").
// A write failure is reported once via selflog, then suppressed until a
// subsequent write succeeds.
type File struct {
	mu        sync.Mutex
	f         *os.File
	autoFlush bool
	failed    bool
}

// NewFile opens path in append mode (creating it if necessary) and
// returns a File transport over it.
func NewFile(path string, autoFlush bool) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, autoFlush: autoFlush}, nil
}

// NewFileHandle wraps an already-open file handle.
func NewFileHandle(f *os.File, autoFlush bool) *File {
	return &File{f: f, autoFlush: autoFlush}
}

func (t *File) Write(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.f.Write(p)
	if err != nil {
		if !t.failed {
			selflog.Printf("transport/file: write failed: %v", err)
			t.failed = true
		}
		return err
	}
	t.failed = false

	if t.autoFlush {
		return t.f.Sync()
	}
	return nil
}

func (t *File) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Sync()
}

func (t *File) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Close()
}
