package quill

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/enrich"
	"github.com/corvidlabs/quill/filter"
	"github.com/corvidlabs/quill/scope"
	"github.com/corvidlabs/quill/selflog"
	"github.com/corvidlabs/quill/template"
	"golang.org/x/time/rate"
)

var (
	errRateLimitWindow    = errors.New("quill: rate limit window must be positive")
	errAlreadyStarted     = errors.New("quill: logger already started")
	errDuplicateSinkName  = errors.New("quill: duplicate sink name")
	errUnknownSink        = errors.New("quill: unknown sink")
	errBuilderAlreadyUsed = errors.New("quill: builder already used")
)

type namedSink struct {
	name string
	sink core.Sink
}

// Logger is the process's structured-logging facade (spec.md §4.10): it
// owns the template cache, enricher list, global filter, rate limiter,
// scope propagation state, and an ordered list of named sinks.
type Logger struct {
	minLevel atomic.Int32

	cache *template.Cache

	enrichers []core.Enricher

	filterMu     sync.Mutex
	globalFilter *filter.Chain

	limiter *rate.Limiter

	sinkMu sync.RWMutex
	sinks  []namedSink

	global *scope.Global
	stack  *scope.Stack

	started atomic.Bool
}

// New builds a Logger from the given options, starting from sensible
// defaults (minimum level INFO, a 1024-entry template cache, a 1000
// record/sec rate limit). It panics if an Option is malformed; use Build
// to get that error returned instead.
func New(opts ...Option) *Logger {
	l, err := Build(opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Build is the non-panicking counterpart to New.
func Build(opts ...Option) (*Logger, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	l := &Logger{
		cache:        template.NewCache(cfg.templateCacheCap),
		enrichers:    append([]core.Enricher(nil), cfg.enrichers...),
		globalFilter: cfg.globalFilter,
		limiter:      rate.NewLimiter(rate.Limit(cfg.rateLimitPerSec), cfg.rateLimitBurst),
		global:       scope.NewGlobal(),
		stack:        scope.NewStack(),
	}
	l.minLevel.Store(int32(cfg.minLevel))

	seen := make(map[string]bool, len(cfg.sinks))
	for _, sc := range cfg.sinks {
		if seen[sc.name] {
			return nil, fmt.Errorf("%w: %q", errDuplicateSinkName, sc.name)
		}
		seen[sc.name] = true
		l.sinks = append(l.sinks, namedSink{name: sc.name, sink: sc.sink})
	}

	return l, nil
}

// AddSink registers a named sink. It fails once the logger has accepted
// its first record (spec.md §4.11).
func (l *Logger) AddSink(name string, s core.Sink) error {
	if l.started.Load() {
		return errAlreadyStarted
	}
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()
	for _, ns := range l.sinks {
		if ns.name == name {
			return fmt.Errorf("%w: %q", errDuplicateSinkName, name)
		}
	}
	next := make([]namedSink, len(l.sinks)+1)
	copy(next, l.sinks)
	next[len(l.sinks)] = namedSink{name: name, sink: s}
	l.sinks = next
	return nil
}

// Sink returns the named sink, for tests and direct flush/inspection.
func (l *Logger) Sink(name string) (core.Sink, error) {
	l.sinkMu.RLock()
	defer l.sinkMu.RUnlock()
	for _, ns := range l.sinks {
		if ns.name == name {
			return ns.sink, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownSink, name)
}

// AddEnricher registers an enricher. It fails once the logger has
// accepted its first record (spec.md §4.11).
func (l *Logger) AddEnricher(e core.Enricher) error {
	if l.started.Load() {
		return errAlreadyStarted
	}
	l.enrichers = append(l.enrichers, e)
	return nil
}

// SetTemplateCacheSize resizes the template cache. It fails once the
// logger has accepted its first record (spec.md §4.11).
func (l *Logger) SetTemplateCacheSize(n int) error {
	if l.started.Load() {
		return errAlreadyStarted
	}
	l.cache.Resize(n)
	return nil
}

// SetMinimumLevel changes the global minimum level. Unlike sink/enricher
// registration, level changes are always permitted and are observed
// atomically by subsequent records (spec.md §4.11).
func (l *Logger) SetMinimumLevel(level core.Level) {
	l.minLevel.Store(int32(level))
}

// MinimumLevel returns the current global minimum level.
func (l *Logger) MinimumLevel() core.Level {
	return core.Level(l.minLevel.Load())
}

// AddGlobalFilter adds a rule to the global filter chain. Filter changes
// are always permitted, at any time (spec.md §4.11).
func (l *Logger) AddGlobalFilter(f core.Filter) {
	l.filterMu.Lock()
	defer l.filterMu.Unlock()
	l.globalFilter.Add(f)
}

// SetRateLimit reconfigures the facade's token bucket. Valid before or
// after logging has started (spec.md §4.10).
func (l *Logger) SetRateLimit(count int, window time.Duration) error {
	if window <= 0 {
		return errRateLimitWindow
	}
	l.limiter.SetLimit(rate.Limit(float64(count) / window.Seconds()))
	l.limiter.SetBurst(count)
	return nil
}

// Global returns the logger's process-wide scope context, mutated via
// Set/Clear and merged into every record (spec.md §4.3).
func (l *Logger) Global() *scope.Global { return l.global }

// Scope pushes a new frame of key/value context onto the current
// goroutine's scope stack, merged into every record logged from this or
// a descendant call until the returned Scope is closed (spec.md §4.3).
func (l *Logger) Scope(props map[string]string) *scope.Scope {
	return scope.Push(l.stack, props)
}

// WithError returns an ErrLogger bound to l that attaches err as the
// Exception on whichever level method is called next.
func (l *Logger) WithError(err error) ErrLogger {
	return ErrLogger{l: l, exc: core.NewException(err)}
}

func (l *Logger) isEnabled(level core.Level) bool {
	return level >= core.Level(l.minLevel.Load())
}

// Trace logs at TRACE severity.
func (l *Logger) Trace(tmpl string, args ...any) { l.log(core.TraceLevel, tmpl, args, nil) }

// Debug logs at DEBUG severity.
func (l *Logger) Debug(tmpl string, args ...any) { l.log(core.DebugLevel, tmpl, args, nil) }

// Info logs at INFO severity.
func (l *Logger) Info(tmpl string, args ...any) { l.log(core.InfoLevel, tmpl, args, nil) }

// Warn logs at WARN severity.
func (l *Logger) Warn(tmpl string, args ...any) { l.log(core.WarnLevel, tmpl, args, nil) }

// Error logs at ERROR severity.
func (l *Logger) Error(tmpl string, args ...any) { l.log(core.ErrorLevel, tmpl, args, nil) }

// Fatal logs at FATAL severity. It does not exit the process; callers
// that want process termination on a fatal record do so themselves.
func (l *Logger) Fatal(tmpl string, args ...any) { l.log(core.FatalLevel, tmpl, args, nil) }

// ErrLogger is the short-lived result of Logger.WithError: its level
// methods behave like the Logger's but stamp the bound error onto the
// record as its Exception.
type ErrLogger struct {
	l   *Logger
	exc *core.Exception
}

// Trace logs at TRACE severity with the bound error attached.
func (e ErrLogger) Trace(tmpl string, args ...any) { e.l.log(core.TraceLevel, tmpl, args, e.exc) }

// Debug logs at DEBUG severity with the bound error attached.
func (e ErrLogger) Debug(tmpl string, args ...any) { e.l.log(core.DebugLevel, tmpl, args, e.exc) }

// Info logs at INFO severity with the bound error attached.
func (e ErrLogger) Info(tmpl string, args ...any) { e.l.log(core.InfoLevel, tmpl, args, e.exc) }

// Warn logs at WARN severity with the bound error attached.
func (e ErrLogger) Warn(tmpl string, args ...any) { e.l.log(core.WarnLevel, tmpl, args, e.exc) }

// Error logs at ERROR severity with the bound error attached.
func (e ErrLogger) Error(tmpl string, args ...any) { e.l.log(core.ErrorLevel, tmpl, args, e.exc) }

// Fatal logs at FATAL severity with the bound error attached.
func (e ErrLogger) Fatal(tmpl string, args ...any) { e.l.log(core.FatalLevel, tmpl, args, e.exc) }

func (l *Logger) log(level core.Level, raw string, rawArgs []any, exc *core.Exception) {
	if !l.isEnabled(level) {
		return
	}
	l.started.Store(true)

	plan := l.cache.Get(raw)
	warnings := append([]string(nil), plan.Warnings...)

	if l.limiter.Allow() {
		ts := time.Now()
		args := make([]template.Arg, len(rawArgs))
		for i, a := range rawArgs {
			args[i] = template.FromAny(a)
		}
		rendered := template.Render(plan, args)
		warnings = append(warnings, rendered.Warnings...)

		rec := &core.Record{
			Severity:    level,
			Timestamp:   ts,
			Message:     rendered.Message,
			Template:    plan.Body,
			Fingerprint: template.Fingerprint(plan.Body),
			Properties:  rendered.Properties,
			Tags:        plan.Tags,
			Exception:   exc,
		}
		l.enrich(rec)
		l.dispatch(rec)
	}

	// Validation-warning records are inserted immediately after the
	// caller's own record (spec.md §4.1) and never consume rate-limit
	// budget (P7).
	if len(warnings) > 0 {
		l.emitValidationWarning(plan.Body, warnings)
	}
}

// emitValidationWarning builds and dispatches a WARN record reporting
// parse/binding warnings, bypassing the rate limiter entirely (spec.md
// §4.10, §7, P7).
func (l *Logger) emitValidationWarning(body string, warnings []string) {
	msg := "template validation: "
	for i, w := range warnings {
		if i > 0 {
			msg += "; "
		}
		msg += w
	}
	rec := &core.Record{
		Severity:  core.WarnLevel,
		Timestamp: time.Now(),
		Message:   msg,
		Template:  body,
	}
	l.enrich(rec)
	l.dispatch(rec)
}

func (l *Logger) enrich(rec *core.Record) {
	ctx := map[string]string{}
	add := func(name, value string) { ctx[name] = value }

	for _, e := range l.enrichers {
		l.safeEnrich(e, rec, add)
	}
	l.safeEnrich(enrich.NewScopeMerge(l.global, l.stack), rec, add)

	if len(ctx) > 0 {
		rec.Context = ctx
	}
}

func (l *Logger) safeEnrich(e core.Enricher, rec *core.Record, add func(name, value string)) {
	defer func() {
		if r := recover(); r != nil && selflog.Enabled() {
			selflog.Printf("[logger] enricher panic: %v", r)
		}
	}()
	e.Enrich(rec, add)
}

func (l *Logger) dispatch(rec *core.Record) {
	l.filterMu.Lock()
	gf := l.globalFilter
	l.filterMu.Unlock()
	if !gf.IsEnabled(rec) {
		return
	}

	l.sinkMu.RLock()
	sinks := l.sinks
	l.sinkMu.RUnlock()

	for _, ns := range sinks {
		l.safeEmit(ns, rec)
	}
}

func (l *Logger) safeEmit(ns namedSink, rec *core.Record) {
	defer func() {
		if r := recover(); r != nil && selflog.Enabled() {
			selflog.Printf("[sink:%s] panic recovered: %v", ns.name, r)
		}
	}()
	ns.sink.Emit(rec)
}

// Close shuts down every sink in reverse registration order, returning
// the first error encountered (spec.md §5).
func (l *Logger) Close() error {
	l.sinkMu.RLock()
	sinks := l.sinks
	l.sinkMu.RUnlock()

	var firstErr error
	for i := len(sinks) - 1; i >= 0; i-- {
		if err := sinks[i].sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
