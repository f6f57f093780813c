package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corvidlabs/quill/core"
	"github.com/corvidlabs/quill/filter"
	"github.com/corvidlabs/quill/formatter"
	"github.com/corvidlabs/quill/transport"
)

func rec(sev core.Level, tags ...string) *core.Record {
	return &core.Record{Severity: sev, Message: "hello", Template: "hello", Tags: tags}
}

func TestBaseWritePath(t *testing.T) {
	var buf bytes.Buffer
	b := NewBase("test", core.InfoLevel, formatter.NewHuman(), transport.NewStdStream(&buf), nil, nil)

	b.Emit(rec(core.DebugLevel))
	if buf.Len() != 0 {
		t.Fatalf("expected below-level record to be dropped, got %q", buf.String())
	}

	b.Emit(rec(core.InfoLevel))
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected message written, got %q", buf.String())
	}
}

func TestBaseTagRouting(t *testing.T) {
	var buf bytes.Buffer
	router := filter.NewTagRouter([]string{"audit"}, nil)
	b := NewBase("test", core.TraceLevel, formatter.NewHuman(), transport.NewStdStream(&buf), nil, router)

	b.Emit(rec(core.InfoLevel, "other"))
	if buf.Len() != 0 {
		t.Fatalf("expected non-matching tag to be dropped, got %q", buf.String())
	}
	b.Emit(rec(core.InfoLevel, "audit"))
	if buf.Len() == 0 {
		t.Errorf("expected matching tag to be admitted")
	}
}

func TestBaseFilterChain(t *testing.T) {
	var buf bytes.Buffer
	chain := filter.NewChain()
	chain.Add(core.FilterFunc(func(r *core.Record) bool { return r.Message != "hello" }))
	b := NewBase("test", core.TraceLevel, formatter.NewHuman(), transport.NewStdStream(&buf), chain, nil)

	b.Emit(rec(core.InfoLevel))
	if buf.Len() != 0 {
		t.Fatalf("expected filter to reject record, got %q", buf.String())
	}
}
