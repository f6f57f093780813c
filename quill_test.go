package quill

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/formatter"
	"github.com/corvidlabs/quill/sink"
)

func newTestLogger(t *testing.T, mem *sink.Memory, opts ...Option) *Logger {
	t.Helper()
	base := append([]Option{WithSink("mem", mem)}, opts...)
	l, err := Build(base...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return l
}

// TestLoggerLevelGateScenario exercises P3: a record at level L reaches a
// sink iff L >= max(globalMin, sink level) and filters/tags admit it.
func TestLoggerLevelGateScenario(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem, WithMinimumLevel(core.WarnLevel))

	l.Info("below threshold")
	l.Warn("at threshold")
	l.Error("above threshold")

	got := mem.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records to pass the level gate, got %d", len(got))
	}
	if got[0].Message != "at threshold" || got[1].Message != "above threshold" {
		t.Errorf("unexpected records: %+v", got)
	}
}

// TestLoggerKeyValueBindingScenario exercises S1 from spec.md §8.
func TestLoggerKeyValueBindingScenario(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.Info("User {name} from {ip}", "name", "alice", "ip", "10.0.0.1")

	got := mem.Records()
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Message != "User alice from 10.0.0.1" {
		t.Errorf("Message = %q", got[0].Message)
	}
}

// TestLoggerStripsTagFromTemplateScenario exercises S3 from spec.md §8
// end to end: a leading "[tag]" segment is removed from both the rendered
// message and the record's template, surviving only in the tag list, and
// the stripped template is what a formatter emits as "@mt" (I3).
func TestLoggerStripsTagFromTemplateScenario(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.Warn("[audit] User {user}", "user", "bob")

	got := mem.Records()
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.Template != "User {user}" {
		t.Errorf("Template = %q, want tag stripped", rec.Template)
	}
	if rec.Message != "User bob" {
		t.Errorf("Message = %q, want tag stripped", rec.Message)
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "audit" {
		t.Errorf("Tags = %v, want [audit]", rec.Tags)
	}

	out, err := formatter.NewCompactJSON().Format(rec)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["@mt"] != "User {user}" {
		t.Errorf("@mt = %v, want %q", decoded["@mt"], "User {user}")
	}
}

func TestLoggerGlobalFilterRejects(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem, WithGlobalFilter(core.FilterFunc(func(r *core.Record) bool {
		return r.Message != "drop me"
	})))

	l.Info("drop me")
	l.Info("keep me")

	got := mem.Records()
	if len(got) != 1 || got[0].Message != "keep me" {
		t.Errorf("Records() = %+v", got)
	}
}

func TestLoggerRateLimitDropsSilently(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem, WithRateLimit(2, time.Hour))

	for i := 0; i < 5; i++ {
		l.Info("m")
	}
	if len(mem.Records()) > 2 {
		t.Errorf("expected rate limit to cap admitted records near the burst size, got %d", len(mem.Records()))
	}
}

// TestLoggerValidationWarningDoesNotConsumeRateLimit exercises P7: the
// side-channel WARN record emitted for a parse warning must not itself
// spend rate-limit budget, only the call's own record does — so one
// invalid-template call still leaves exactly as much subsequent budget
// as one valid call would.
func TestLoggerValidationWarningDoesNotConsumeRateLimit(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem, WithRateLimit(1, time.Hour))

	l.Info("empty placeholder {}") // consumes the call's own 1-token budget
	l.Info("should be dropped")    // budget already exhausted

	got := mem.Records()
	if len(got) != 2 {
		t.Fatalf("expected the validation-warning record plus the call's own record (2 total), got %d: %+v", len(got), got)
	}
	for _, r := range got {
		if r.Message == "should be dropped" {
			t.Errorf("expected the second call to be dropped by the exhausted budget, got %+v", got)
		}
	}
}

// TestLoggerValidationWarningFollowsCallersRecord exercises spec.md §4.1:
// the WARN record reporting a template's parse/binding warnings is
// inserted immediately after the caller's own record, not before it.
func TestLoggerValidationWarningFollowsCallersRecord(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.Info("empty placeholder {}")

	got := mem.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].Severity != core.InfoLevel {
		t.Errorf("first record severity = %v, want the caller's own INFO record first", got[0].Severity)
	}
	if got[1].Severity != core.WarnLevel {
		t.Errorf("second record severity = %v, want the validation WARN record second", got[1].Severity)
	}
}

func TestLoggerMutationFencedAfterStart(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.Info("first record")

	if err := l.AddSink("late", sink.NewMemory()); !errors.Is(err, errAlreadyStarted) {
		t.Errorf("AddSink() error = %v, want errAlreadyStarted", err)
	}
	if err := l.AddEnricher(core.EnricherFunc(func(*core.Record, func(string, string)) {})); !errors.Is(err, errAlreadyStarted) {
		t.Errorf("AddEnricher() error = %v, want errAlreadyStarted", err)
	}
	if err := l.SetTemplateCacheSize(10); !errors.Is(err, errAlreadyStarted) {
		t.Errorf("SetTemplateCacheSize() error = %v, want errAlreadyStarted", err)
	}
}

func TestLoggerLevelAndFilterChangesAlwaysPermitted(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.Info("first record")
	l.SetMinimumLevel(core.ErrorLevel)
	l.AddGlobalFilter(core.FilterFunc(func(r *core.Record) bool { return true }))

	if l.MinimumLevel() != core.ErrorLevel {
		t.Errorf("MinimumLevel() = %v, want ErrorLevel", l.MinimumLevel())
	}
}

func TestLoggerDuplicateSinkNameRejected(t *testing.T) {
	_, err := Build(WithSink("a", sink.NewMemory()), WithSink("a", sink.NewMemory()))
	if !errors.Is(err, errDuplicateSinkName) {
		t.Errorf("Build() error = %v, want errDuplicateSinkName", err)
	}
}

func TestLoggerSinkPanicIsolatesSiblings(t *testing.T) {
	good := sink.NewMemory()
	panicky := core.Sink(panicSink{})

	l, err := Build(WithSink("panicky", panicky), WithSink("good", good))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	l.Info("hello")
	if len(good.Records()) != 1 {
		t.Errorf("expected sibling sink to still receive the record, got %d", len(good.Records()))
	}
}

type panicSink struct{}

func (panicSink) Emit(*core.Record) { panic("boom") }
func (panicSink) Close() error      { return nil }

func TestLoggerWithErrorAttachesException(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	l.WithError(errors.New("disk full")).Error("write failed")

	got := mem.Records()
	if len(got) != 1 || got[0].Exception == nil || got[0].Exception.Message != "disk full" {
		t.Errorf("Records() = %+v", got)
	}
}

func TestLoggerScopeMergesIntoContext(t *testing.T) {
	mem := sink.NewMemory()
	l := newTestLogger(t, mem)

	s := l.Scope(map[string]string{"requestId": "abc"})
	l.Info("within scope")
	s.Close()
	l.Info("after scope")

	got := mem.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Context["requestId"] != "abc" {
		t.Errorf("expected scope value merged into context, got %+v", got[0].Context)
	}
	if _, ok := got[1].Context["requestId"]; ok {
		t.Errorf("expected scope value gone after Close, got %+v", got[1].Context)
	}
}

func TestLoggerCloseShutsDownSinksInReverseOrder(t *testing.T) {
	var order []string
	a := recordingCloser{name: "a", order: &order}
	b := recordingCloser{name: "b", order: &order}

	l, err := Build(WithSink("a", a), WithSink("b", b))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("shutdown order = %v, want [b a]", order)
	}
}

type recordingCloser struct {
	name  string
	order *[]string
}

func (recordingCloser) Emit(*core.Record) {}
func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestBuilderBuildsOnce(t *testing.T) {
	b := NewBuilder().Sink("mem", sink.NewMemory())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, errBuilderAlreadyUsed) {
		t.Errorf("second Build() error = %v, want errBuilderAlreadyUsed", err)
	}
}

func TestGlobalFacadePanicsWhenUninitialized(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when global logger is not initialized")
		}
	}()
	Shutdown()
	Info("hello")
}

func TestGlobalFacadeDelegatesToInitializedLogger(t *testing.T) {
	mem := sink.NewMemory()
	l, err := Build(WithSink("mem", mem))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	Init(l)
	defer Shutdown()

	Info("hello from global")
	if len(mem.Records()) != 1 {
		t.Errorf("expected global Info to reach the sink, got %d", len(mem.Records()))
	}
}
