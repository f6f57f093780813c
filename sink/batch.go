package sink

import (
	"sync"
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/metrics"
	"github.com/corvidlabs/quill/selflog"
)

// BatchWriter is implemented by the concrete backend a Batch sink
// delivers to (spec.md §4.8's writeBatch). An error triggers Batch's
// retry/backoff loop.
type BatchWriter interface {
	WriteBatch(records []*core.Record) error
}

// BatchOptions configures a Batch sink.
type BatchOptions struct {
	Name          string
	BatchSize     int
	FlushInterval time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxQueueSize  int
	OnBatchError  func(err error, retryIndex int)
	OnFlush       func()
	Metrics       *metrics.Registry
}

// Batch accumulates records into a buffer and hands them to a
// BatchWriter once a size or time trigger fires, retrying on failure with
// a fixed backoff before dropping the batch (spec.md §4.8). Grounded on
// willibrandon-mtlog/sinks/seq.go's SeqSink batching loop.
type Batch struct {
	writer  BatchWriter
	opts    BatchOptions

	mu      sync.Mutex
	pending []*core.Record
	dropped uint64

	flushCh  chan chan struct{}
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewBatch builds a Batch sink delivering to writer.
func NewBatch(writer BatchWriter, opts BatchOptions) *Batch {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = opts.BatchSize * 10
	}
	if opts.OnBatchError == nil {
		opts.OnBatchError = func(err error, retryIndex int) {
			if selflog.Enabled() {
				selflog.Printf("[batch:%s] permanent failure after %d retries: %v", opts.Name, retryIndex, err)
			}
		}
	}

	b := &Batch{
		writer:  writer,
		opts:    opts,
		flushCh: make(chan chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
	b.wg.Add(1)
	go b.loop()
	return b
}

// Emit implements core.Sink, buffering rec for the next batch delivery.
func (b *Batch) Emit(rec *core.Record) {
	b.mu.Lock()
	if len(b.pending) >= b.opts.MaxQueueSize {
		b.dropped++
		if b.opts.Metrics != nil {
			b.opts.Metrics.DroppedInc(b.opts.Name)
		}
		b.mu.Unlock()
		return
	}
	b.pending = append(b.pending, rec)
	full := len(b.pending) >= b.opts.BatchSize
	b.mu.Unlock()

	if full {
		select {
		case b.flushCh <- nil:
		default:
		}
	}
}

// Dropped returns the number of records dropped because the pre-batch
// queue was full or because their batch still failed after every retry.
func (b *Batch) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Flush forces an immediate batch delivery and waits for it to complete.
func (b *Batch) Flush() error {
	ack := make(chan struct{})
	select {
	case b.flushCh <- ack:
	case <-b.stopCh:
		return nil
	}
	<-ack
	return nil
}

// Close stops the worker after it delivers whatever is pending; it is
// idempotent per spec.md §4.8.
func (b *Batch) Close() error {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.wg.Wait()
	})
	return nil
}

func (b *Batch) loop() {
	defer b.wg.Done()

	timer := time.NewTimer(b.opts.FlushInterval)
	defer timer.Stop()

	for {
		select {
		case ack := <-b.flushCh:
			b.deliver()
			if ack != nil {
				close(ack)
			}
			timer.Reset(b.opts.FlushInterval)
		case <-timer.C:
			b.deliver()
			timer.Reset(b.opts.FlushInterval)
		case <-b.stopCh:
			b.deliver()
			return
		}
	}
}

func (b *Batch) deliver() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	var err error
	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(b.opts.RetryDelay)
		}
		if err = b.safeWrite(batch); err == nil {
			if b.opts.OnFlush != nil {
				b.opts.OnFlush()
			}
			return
		}
	}

	b.mu.Lock()
	b.dropped += uint64(len(batch))
	b.mu.Unlock()
	if b.opts.Metrics != nil {
		b.opts.Metrics.BatchFailedInc(b.opts.Name)
	}
	b.opts.OnBatchError(err, b.opts.MaxRetries)
}

func (b *Batch) safeWrite(batch []*core.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if selflog.Enabled() {
				selflog.Printf("[batch:%s] writer panic: %v", b.opts.Name, r)
			}
			err = panicErr{r}
		}
	}()
	return b.writer.WriteBatch(batch)
}

type panicErr struct{ v any }

func (p panicErr) Error() string { return "panic in batch writer" }
