package sink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvidlabs/quill/core"
)

// fixedFormatter emits a fixed-length line so tests can predict exactly
// when a size threshold trips.
type fixedFormatter struct{ width int }

func (f fixedFormatter) Format(rec *core.Record) ([]byte, error) {
	return bytes.Repeat([]byte("a"), f.width), nil
}

// TestRollingSizeScenario exercises S4 from spec.md §8: size("roll.log",
// 200), emitting 20 records of ~30 bytes each produces at least one
// rolled file "roll.001.log" and leaves the active "roll.log" in place.
func TestRollingSizeScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roll.log")

	r, err := NewRolling(RollingOptions{Path: path, MaxSize: 200, Formatter: fixedFormatter{width: 29}, SinkName: "test"})
	if err != nil {
		t.Fatalf("NewRolling() error = %v", err)
	}
	defer r.Close()

	for i := 0; i < 20; i++ {
		r.Emit(&core.Record{Message: fmt.Sprintf("m%d", i)})
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected active file to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "roll.001.log")); err != nil {
		t.Errorf("expected roll.001.log to exist: %v", err)
	}
}

func TestRollingRetentionByCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roll.log")

	r, err := NewRolling(RollingOptions{Path: path, MaxSize: 30, MaxFiles: 2, Formatter: fixedFormatter{width: 29}, SinkName: "test"})
	if err != nil {
		t.Fatalf("NewRolling() error = %v", err)
	}
	defer r.Close()

	for i := 0; i < 50; i++ {
		r.Emit(&core.Record{Message: "m"})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	rolled := 0
	for _, e := range entries {
		if e.Name() != "roll.log" {
			rolled++
		}
	}
	if rolled > 2 {
		t.Errorf("expected at most 2 rolled files retained, got %d", rolled)
	}
}

func TestRollingDiscoverySeedsIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roll.log")

	if err := os.WriteFile(filepath.Join(dir, "roll.001.log"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "roll.002.log"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	r, err := NewRolling(RollingOptions{Path: path, MaxSize: 30, Formatter: fixedFormatter{width: 29}, SinkName: "test"})
	if err != nil {
		t.Fatalf("NewRolling() error = %v", err)
	}
	defer r.Close()

	for i := 0; i < 2; i++ {
		r.Emit(&core.Record{Message: "m"})
	}

	if _, err := os.Stat(filepath.Join(dir, "roll.003.log")); err != nil {
		t.Errorf("expected rotation to continue from discovered index 2, got roll.003.log missing: %v", err)
	}
}

func TestRollingLazyFileCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "roll.log")

	r, err := NewRolling(RollingOptions{Path: path, Formatter: fixedFormatter{width: 10}, SinkName: "test"})
	if err != nil {
		t.Fatalf("NewRolling() error = %v", err)
	}
	defer r.Close()

	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected no file before first Emit")
	}
	r.Emit(&core.Record{Message: "m"})
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file created lazily on first Emit: %v", err)
	}
}
