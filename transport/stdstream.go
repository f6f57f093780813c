package transport

import (
	"io"
	"os"
	"strings"
	"sync"
)

// StdStream writes to an io.Writer (typically os.Stdout/os.Stderr). It
// records whether color is enabled (see Color) but adds no escape codes
// to what it writes.
type StdStream struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewStdStream builds a StdStream over w. Color is auto-detected from
// NO_COLOR / QUILL_FORCE_COLOR, matching the teacher's console-theme
// detection order: an explicit force wins, then NO_COLOR disables,
// otherwise color is on.
func NewStdStream(w io.Writer) *StdStream {
	return &StdStream{w: w, color: shouldUseColor()}
}

// Write writes p verbatim; color sequences, if any, are expected to
// already be embedded by the formatter that produced p.
func (s *StdStream) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(p)
	return err
}

// Flush flushes the underlying writer if it exposes a Flush/Sync method.
func (s *StdStream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

// Close is a no-op: StdStream never owns the underlying writer's
// lifecycle (it is usually os.Stdout or os.Stderr).
func (s *StdStream) Close() error { return nil }

// Color reports whether this StdStream was constructed with color
// output enabled.
func (s *StdStream) Color() bool { return s.color }

func shouldUseColor() bool {
	if force := os.Getenv("QUILL_FORCE_COLOR"); force != "" {
		switch strings.ToLower(force) {
		case "none", "0", "false", "off":
			return false
		case "1", "true", "on":
			return true
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return true
}
