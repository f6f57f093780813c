package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/formatter"
	"github.com/corvidlabs/quill/metrics"
	"github.com/corvidlabs/quill/selflog"
)

// Interval selects the rolling file sink's time-based rotation period
// (spec.md §4.9).
type Interval int

const (
	// IntervalNone disables time-based rotation.
	IntervalNone Interval = iota
	// IntervalHourly rotates at the top of every hour.
	IntervalHourly
	// IntervalDaily rotates at midnight UTC.
	IntervalDaily
)

// RollingOptions configures a Rolling sink.
type RollingOptions struct {
	// Path is the active file's path; rolled files share its directory,
	// stem, and extension.
	Path string

	// MaxSize is the size threshold in bytes that triggers rotation. Zero
	// disables size-based rotation.
	MaxSize int64

	// Interval is the time-based rotation period. IntervalNone disables it.
	Interval Interval

	// MaxFiles caps the number of rolled files retained. Zero means
	// unlimited.
	MaxFiles int

	// MaxTotalSize caps the aggregate size in bytes of rolled files
	// retained. Zero means unlimited.
	MaxTotalSize int64

	Formatter formatter.Formatter
	Metrics   *metrics.Registry
	SinkName  string
}

// rolledFile is one historical file produced by a rotation.
type rolledFile struct {
	path   string
	period string // embedded date/datetime segment, "" for size-only naming
	index  int
	size   int64
}

// ledger tracks the active file's size and every rolled file a Rolling
// sink currently owns (spec.md §3's "Rolled-file ledger").
type ledger struct {
	Rolled        []rolledFile
	CurrentSize   int64
	AggregateSize int64
}

// Rolling writes records to a file, rotating on size and/or time
// thresholds and discovering pre-existing rolled files on construction so
// retention survives restarts (spec.md §4.9). Grounded on
// willibrandon-mtlog/sinks/rolling_file.go.
type Rolling struct {
	opts RollingOptions
	dir  string
	stem string
	ext  string

	mu        sync.Mutex
	f         *os.File
	ledger    ledger
	periodKey string // current time-bucket key, "" when Interval is None
}

var rolledNamePattern = regexp.MustCompile(`^(.*?)(?:\.(\d{4}-\d{2}-\d{2}(?:-\d{2})?))?\.(\d{3})(\.[^.]*)?$`)

// NewRolling builds a Rolling sink per opts. It does not create the
// active file eagerly (spec.md §4.9 — file creation is lazy); it does
// scan opts.Path's directory for pre-existing rolled files to seed
// retention and rotation state.
func NewRolling(opts RollingOptions) (*Rolling, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sink: rolling file path is required")
	}
	if opts.Formatter == nil {
		opts.Formatter = formatter.NewCompactJSON()
	}

	dir := filepath.Dir(opts.Path)
	base := filepath.Base(opts.Path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	r := &Rolling{opts: opts, dir: dir, stem: stem, ext: ext}
	if err := r.discover(); err != nil {
		return nil, err
	}
	if opts.Interval != IntervalNone {
		r.periodKey = r.currentPeriodKey(time.Now())
	}
	return r, nil
}

// discover scans r.dir for files matching r.stem/r.ext's rolling pattern
// and seeds the ledger so rotation indices and retention continue across
// restarts (spec.md §4.9 "Discovery").
func (r *Rolling) discover() error {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sink: scanning rolling directory: %w", err)
	}

	prefix := r.stem + "."
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == r.stem+r.ext {
			continue // the active file
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		m := rolledNamePattern.FindStringSubmatch(name)
		if m == nil || m[1] != r.stem {
			continue
		}
		idx, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		r.ledger.Rolled = append(r.ledger.Rolled, rolledFile{
			path:   filepath.Join(r.dir, name),
			period: m[2],
			index:  idx,
			size:   info.Size(),
		})
		r.ledger.AggregateSize += info.Size()
	}

	sort.Slice(r.ledger.Rolled, func(i, j int) bool {
		a, b := r.ledger.Rolled[i], r.ledger.Rolled[j]
		if a.period != b.period {
			return a.period < b.period
		}
		return a.index < b.index
	})

	if info, err := os.Stat(r.opts.Path); err == nil {
		r.ledger.CurrentSize = info.Size()
	}
	return nil
}

// Emit implements core.Sink.
func (r *Rolling) Emit(rec *core.Record) {
	data, err := r.opts.Formatter.Format(rec)
	if err != nil {
		if selflog.Enabled() {
			selflog.Printf("[rolling:%s] format error: %v", r.opts.SinkName, err)
		}
		return
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateIfNeededLocked(int64(len(data))); err != nil && selflog.Enabled() {
		selflog.Printf("[rolling:%s] rotation error: %v", r.opts.SinkName, err)
	}
	if err := r.ensureOpenLocked(); err != nil {
		if selflog.Enabled() {
			selflog.Printf("[rolling:%s] open error: %v", r.opts.SinkName, err)
		}
		return
	}

	n, err := r.f.Write(data)
	if err != nil {
		if selflog.Enabled() {
			selflog.Printf("[rolling:%s] write error: %v", r.opts.SinkName, err)
		}
		return
	}
	r.ledger.CurrentSize += int64(n)
	if r.opts.Metrics != nil {
		r.opts.Metrics.RollingSizeSet(r.opts.SinkName, r.ledger.CurrentSize)
	}
}

func (r *Rolling) ensureOpenLocked() error {
	if r.f != nil {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("sink: creating rolling directory: %w", err)
	}
	f, err := os.OpenFile(r.opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("sink: opening rolling file: %w", err)
	}
	r.f = f
	return nil
}

// rotateIfNeededLocked checks the time policy at the start of each write
// and the size policy against the record about to be written, rotating
// the active file if either trips (spec.md §4.9).
func (r *Rolling) rotateIfNeededLocked(nextWriteSize int64) error {
	rotate := false

	if r.opts.Interval != IntervalNone {
		key := r.currentPeriodKey(time.Now())
		if r.periodKey != "" && key != r.periodKey {
			rotate = true
		}
		r.periodKey = key
	}
	if !rotate && r.opts.MaxSize > 0 && r.f != nil && r.ledger.CurrentSize+nextWriteSize > r.opts.MaxSize {
		rotate = true
	}
	if !rotate || r.f == nil {
		return nil
	}
	return r.rollLocked()
}

func (r *Rolling) rollLocked() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("sink: closing rolling file for rotation: %w", err)
	}
	r.f = nil

	period := r.periodKey
	index := r.nextIndexForPeriod(period)
	rolledName := r.rolledName(period, index)
	rolledPath := filepath.Join(r.dir, rolledName)

	if err := os.Rename(r.opts.Path, rolledPath); err != nil {
		return fmt.Errorf("sink: renaming rolled file: %w", err)
	}

	size := r.ledger.CurrentSize
	r.ledger.Rolled = append(r.ledger.Rolled, rolledFile{path: rolledPath, period: period, index: index, size: size})
	r.ledger.AggregateSize += size
	r.ledger.CurrentSize = 0

	return r.enforceRetentionLocked()
}

func (r *Rolling) nextIndexForPeriod(period string) int {
	highest := 0
	for _, rf := range r.ledger.Rolled {
		if rf.period == period && rf.index > highest {
			highest = rf.index
		}
	}
	return highest + 1
}

// rolledName builds the rotated file name per spec.md §4.9's naming
// grammar: size-only is "<stem>.NNN<ext>", time or hybrid rotation
// prefixes the zero-padded index with the time-bucket segment.
func (r *Rolling) rolledName(period string, index int) string {
	if period == "" {
		return fmt.Sprintf("%s.%03d%s", r.stem, index, r.ext)
	}
	return fmt.Sprintf("%s.%s.%03d%s", r.stem, period, index, r.ext)
}

func (r *Rolling) currentPeriodKey(t time.Time) string {
	t = t.UTC()
	switch r.opts.Interval {
	case IntervalHourly:
		return t.Format("2006-01-02-15")
	case IntervalDaily:
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

// enforceRetentionLocked deletes the oldest rolled files until both the
// count and aggregate-size limits are satisfied (spec.md §4.9
// "Retention", property P6).
func (r *Rolling) enforceRetentionLocked() error {
	sort.Slice(r.ledger.Rolled, func(i, j int) bool {
		a, b := r.ledger.Rolled[i], r.ledger.Rolled[j]
		if a.period != b.period {
			return a.period < b.period
		}
		return a.index < b.index
	})

	for r.overRetentionLocked() && len(r.ledger.Rolled) > 0 {
		oldest := r.ledger.Rolled[0]
		if err := os.Remove(oldest.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("sink: removing retired rolled file: %w", err)
		}
		r.ledger.AggregateSize -= oldest.size
		r.ledger.Rolled = r.ledger.Rolled[1:]
	}
	return nil
}

func (r *Rolling) overRetentionLocked() bool {
	if r.opts.MaxFiles > 0 && len(r.ledger.Rolled) > r.opts.MaxFiles {
		return true
	}
	if r.opts.MaxTotalSize > 0 && r.ledger.AggregateSize > r.opts.MaxTotalSize {
		return true
	}
	return false
}

// Flush implements core.Flusher by syncing the active file handle.
func (r *Rolling) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	return r.f.Sync()
}

// Close implements core.Sink.
func (r *Rolling) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
