package sink

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corvidlabs/quill/core"
)

type fakeBatchWriter struct {
	mu      sync.Mutex
	batches [][]*core.Record
	failN   int // fail the first failN calls
	calls   int
}

func (w *fakeBatchWriter) WriteBatch(records []*core.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls <= w.failN {
		return errors.New("boom")
	}
	cp := append([]*core.Record(nil), records...)
	w.batches = append(w.batches, cp)
	return nil
}

func (w *fakeBatchWriter) delivered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func TestBatchFlushesOnSize(t *testing.T) {
	w := &fakeBatchWriter{}
	b := NewBatch(w, BatchOptions{Name: "test", BatchSize: 3, FlushInterval: time.Hour})
	defer b.Close()

	for i := 0; i < 3; i++ {
		b.Emit(&core.Record{Message: "m"})
	}
	deadline := time.After(time.Second)
	for w.delivered() < 3 {
		select {
		case <-deadline:
			t.Fatalf("delivered = %d, want 3", w.delivered())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestBatchFlushForcesDelivery(t *testing.T) {
	w := &fakeBatchWriter{}
	b := NewBatch(w, BatchOptions{Name: "test", BatchSize: 100, FlushInterval: time.Hour})
	defer b.Close()

	b.Emit(&core.Record{Message: "m"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if w.delivered() != 1 {
		t.Errorf("delivered = %d, want 1", w.delivered())
	}
}

func TestBatchRetriesThenSucceeds(t *testing.T) {
	w := &fakeBatchWriter{failN: 2}
	var errs []error
	b := NewBatch(w, BatchOptions{
		Name: "test", BatchSize: 100, FlushInterval: time.Hour,
		MaxRetries: 3, RetryDelay: time.Millisecond,
		OnBatchError: func(err error, retryIndex int) { errs = append(errs, err) },
	})
	defer b.Close()

	b.Emit(&core.Record{Message: "m"})
	_ = b.Flush()

	if w.delivered() != 1 {
		t.Errorf("delivered = %d, want 1 after retries succeed", w.delivered())
	}
	if len(errs) != 0 {
		t.Errorf("expected no permanent failure callback, got %v", errs)
	}
}

func TestBatchPermanentFailureDropsBatch(t *testing.T) {
	w := &fakeBatchWriter{failN: 100}
	failed := 0
	b := NewBatch(w, BatchOptions{
		Name: "test", BatchSize: 100, FlushInterval: time.Hour,
		MaxRetries: 1, RetryDelay: time.Millisecond,
		OnBatchError: func(err error, retryIndex int) { failed++ },
	})
	defer b.Close()

	b.Emit(&core.Record{Message: "m"})
	_ = b.Flush()

	if failed != 1 {
		t.Errorf("expected OnBatchError called once, got %d", failed)
	}
	if w.delivered() != 0 {
		t.Errorf("delivered = %d, want 0 for a permanently failed batch", w.delivered())
	}
}

func TestBatchQueueOverflowDrops(t *testing.T) {
	w := &fakeBatchWriter{}
	b := NewBatch(w, BatchOptions{Name: "test", BatchSize: 1000, FlushInterval: time.Hour, MaxQueueSize: 2})
	defer b.Close()

	for i := 0; i < 5; i++ {
		b.Emit(&core.Record{Message: "m"})
	}
	if b.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", b.Dropped())
	}
}

func TestBatchCloseIsIdempotent(t *testing.T) {
	w := &fakeBatchWriter{}
	b := NewBatch(w, BatchOptions{Name: "test", FlushInterval: time.Hour})
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
