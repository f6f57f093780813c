package sink

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/metrics"
	"github.com/corvidlabs/quill/selflog"
)

// OverflowPolicy selects the async sink's behavior when its queue is full
// (spec.md §4.7).
type OverflowPolicy int

const (
	// DropNewest returns without enqueuing and increments the drop counter.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the front of the queue to make room.
	DropOldest
	// Block parks the caller until space is available.
	Block
)

// flushToken rides the queue behind a batch of records so Flush can wait
// for everything enqueued before it to drain (spec.md §4.7).
type flushToken struct {
	done chan struct{}
}

// queueItem is either a record to emit or a flush token; exactly one of
// the two fields is set.
type queueItem struct {
	rec   *core.Record
	flush *flushToken
}

// Async wraps an inner core.Sink, decoupling producers from it with a
// bounded channel drained by a single worker goroutine. Grounded on
// willibrandon-mtlog/sinks/async.go's AsyncSink.
type Async struct {
	inner         core.Sink
	policy        OverflowPolicy
	metrics       *metrics.Registry
	name          string
	periodicFlush time.Duration

	items chan queueItem

	// dropMu serializes DropOldest's evict-then-push, which otherwise
	// races with other producers over the same channel slot.
	dropMu sync.Mutex

	dropped  atomic.Uint64
	closed   atomic.Bool
	done     chan struct{}
	workerWg sync.WaitGroup
}

// NewAsync builds an Async sink with the given bounded capacity and
// overflow policy, wrapping inner. A non-zero periodicFlush causes the
// worker to flush inner on that interval even with no new records.
func NewAsync(name string, inner core.Sink, capacity int, policy OverflowPolicy, periodicFlush time.Duration, reg *metrics.Registry) *Async {
	if capacity <= 0 {
		capacity = 1
	}
	a := &Async{
		inner:         inner,
		policy:        policy,
		metrics:       reg,
		name:          name,
		periodicFlush: periodicFlush,
		items:         make(chan queueItem, capacity),
		done:          make(chan struct{}),
	}
	a.workerWg.Add(1)
	go a.worker()
	return a
}

// Emit implements core.Sink. It never blocks the caller under DropNewest
// or DropOldest; under Block it parks until space frees or the sink
// closes.
func (a *Async) Emit(rec *core.Record) {
	if a.closed.Load() {
		return
	}
	a.enqueue(queueItem{rec: rec})
}

func (a *Async) enqueue(item queueItem) {
	switch a.policy {
	case Block:
		select {
		case a.items <- item:
		case <-a.done:
			a.bumpDrop()
		}
	case DropOldest:
		a.dropMu.Lock()
		defer a.dropMu.Unlock()
		select {
		case a.items <- item:
		default:
			// Queue is full: evict the front to make room. This also
			// counts against the drop counter per spec.md §4.7.
			select {
			case <-a.items:
				a.bumpDrop()
			default:
			}
			select {
			case a.items <- item:
			default:
				a.bumpDrop()
			}
		}
	default: // DropNewest
		select {
		case a.items <- item:
		default:
			a.bumpDrop()
		}
	}
	a.reportDepth()
}

func (a *Async) bumpDrop() {
	n := a.dropped.Add(1)
	if a.metrics != nil {
		a.metrics.DroppedInc(a.name)
	}
	if selflog.Enabled() && (n == 1 || n%1000 == 0) {
		selflog.Printf("[async:%s] queue full, dropped %d records total", a.name, n)
	}
}

func (a *Async) reportDepth() {
	if a.metrics != nil {
		a.metrics.QueueDepthSet(a.name, len(a.items))
	}
}

// Dropped returns the number of records dropped so far, either by the
// overflow policy or because the inner sink panicked while emitting them.
func (a *Async) Dropped() uint64 { return a.dropped.Load() }

// Flush blocks until every record enqueued before the call has been
// written to the inner sink (spec.md §4.7, P4). Concurrent flushes
// coalesce onto their own tokens but all wait behind whatever is already
// queued.
func (a *Async) Flush() error {
	if a.closed.Load() {
		return nil
	}
	tok := &flushToken{done: make(chan struct{})}
	select {
	case a.items <- queueItem{flush: tok}:
	case <-a.done:
		return nil
	}
	<-tok.done
	if f, ok := a.inner.(core.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close signals shutdown, drains whatever remains in the queue, joins the
// worker, and closes the inner sink.
func (a *Async) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(a.done)
	a.workerWg.Wait()
	return a.inner.Close()
}

func (a *Async) worker() {
	defer a.workerWg.Done()

	var tickC <-chan time.Time
	if a.periodicFlush > 0 {
		ticker := time.NewTicker(a.periodicFlush)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case item := <-a.items:
			a.process(item)
		case <-tickC:
			a.safeFlushInner()
		case <-a.done:
			a.drainRemaining()
			return
		}
	}
}

func (a *Async) drainRemaining() {
	for {
		select {
		case item := <-a.items:
			a.process(item)
		default:
			return
		}
	}
}

func (a *Async) process(item queueItem) {
	defer func() {
		if r := recover(); r != nil {
			if item.rec != nil {
				a.dropped.Add(1)
				if a.metrics != nil {
					a.metrics.DroppedInc(a.name)
				}
			}
			if selflog.Enabled() {
				selflog.Printf("[async:%s] inner sink panic: %v", a.name, r)
			}
		}
	}()

	if item.flush != nil {
		a.safeFlushInner()
		close(item.flush.done)
		return
	}
	a.inner.Emit(item.rec)
}

func (a *Async) safeFlushInner() {
	defer func() {
		if r := recover(); r != nil && selflog.Enabled() {
			selflog.Printf("[async:%s] inner flush panic: %v", a.name, r)
		}
	}()
	if f, ok := a.inner.(core.Flusher); ok {
		if err := f.Flush(); err != nil && selflog.Enabled() {
			selflog.Printf("[async:%s] inner flush error: %v", a.name, err)
		}
	}
}
