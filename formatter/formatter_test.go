package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/corvidlabs/quill/core"
)

func sampleRecord() *core.Record {
	return &core.Record{
		Severity:    core.WarnLevel,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Message:     "User bob",
		Template:    "User {user}", // tags are already stripped by the time a record reaches a formatter (spec.md §4.1 I3)
		Fingerprint: 0xdeadbeef,
		Properties:  []core.Property{{Name: "user", Value: "bob", Op: core.OpNone}},
		Tags:        []string{"audit"},
	}
}

// TestCompactJSONScenario exercises S3 from spec.md §8's field contract:
// "@mt" carries the tag-stripped template, with the tag surviving only in
// the separate "tags" array.
func TestCompactJSONScenario(t *testing.T) {
	f := NewCompactJSON()
	out, err := f.Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v; got %s", err, out)
	}
	if decoded["@l"] != "WRN" {
		t.Errorf("@l = %v, want WRN", decoded["@l"])
	}
	if decoded["@mt"] != "User {user}" {
		t.Errorf("@mt = %v, want tag-stripped template", decoded["@mt"])
	}
	if decoded["user"] != "bob" {
		t.Errorf("user = %v, want bob", decoded["user"])
	}
	tags, ok := decoded["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != "audit" {
		t.Errorf("tags = %v", decoded["tags"])
	}
	if _, ok := decoded["@m"]; ok {
		t.Errorf("expected no @m key when RenderMessage is off")
	}
}

func TestCompactJSONOmitsLevelAtInfo(t *testing.T) {
	rec := sampleRecord()
	rec.Severity = core.InfoLevel
	out, _ := NewCompactJSON().Format(rec)
	var decoded map[string]any
	_ = json.Unmarshal(out, &decoded)
	if _, ok := decoded["@l"]; ok {
		t.Errorf("expected @l to be omitted at INFO level")
	}
}

func TestCompactJSONEscapesAtPrefixedKeys(t *testing.T) {
	rec := sampleRecord()
	rec.Properties = []core.Property{{Name: "@weird", Value: "x"}}
	out, _ := NewCompactJSON().Format(rec)
	var decoded map[string]any
	_ = json.Unmarshal(out, &decoded)
	if decoded["@@weird"] != "x" {
		t.Errorf("expected @weird to be escaped to @@weird, got %+v", decoded)
	}
}

func TestHumanDefaultFormat(t *testing.T) {
	out, err := NewHuman().Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "[WARN]") {
		t.Errorf("expected level marker, got %q", s)
	}
	if !strings.Contains(s, "User bob") {
		t.Errorf("expected message, got %q", s)
	}
	if !strings.Contains(s, "user=bob") {
		t.Errorf("expected property, got %q", s)
	}
}

func TestHumanOutputTemplate(t *testing.T) {
	f := NewHumanTemplate("{level:u3} {message}{newline}")
	out, _ := f.Format(sampleRecord())
	if string(out) != "WRN User bob\n" {
		t.Errorf("Format() = %q", string(out))
	}
}

func TestXMLSanitizesElementNames(t *testing.T) {
	rec := sampleRecord()
	rec.Properties = []core.Property{{Name: "2bad name!", Value: "x"}}
	out, err := NewXML().Format(rec)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(out), "<_2bad_name_>") {
		t.Errorf("expected sanitized element name, got %s", out)
	}
}

func TestJSONIncludesCoreFields(t *testing.T) {
	out, err := NewJSON().Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["level"] != "WARN" {
		t.Errorf("level = %v", decoded["level"])
	}
	if decoded["templateHash"] != "deadbeef" {
		t.Errorf("templateHash = %v", decoded["templateHash"])
	}
}

func TestNativeJSONValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"42", float64(42)},
		{"-0", float64(0)},
		{"NaN", "NaN"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := nativeJSONValue(tt.raw); got != tt.want {
			t.Errorf("nativeJSONValue(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
