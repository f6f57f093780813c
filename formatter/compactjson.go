package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// CompactJSON is the CLEF-style single-line formatter (spec.md §4.6):
// "@t" (ISO-8601 UTC with milliseconds), "@l" (omitted at INFO), "@mt",
// "@i" (fingerprint), optional "@m" (off by default), "@x", flat
// top-level properties, optional "tags". User keys beginning with "@"
// are escaped to "@@"; emission order is properties, then context, then
// tags.
type CompactJSON struct {
	// RenderMessage controls whether "@m" (the fully rendered message)
	// is included. Off by default per spec.md §4.6.
	RenderMessage bool
}

// NewCompactJSON returns a CompactJSON formatter with RenderMessage off.
func NewCompactJSON() *CompactJSON { return &CompactJSON{} }

func (f *CompactJSON) Format(rec *core.Record) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')

	writeField(&b, true, "@t", rec.Timestamp.UTC().Format(compactJSONTimestampLayout))

	if rec.Severity != core.InfoLevel {
		writeField(&b, false, "@l", rec.Severity.Abbrev3())
	}
	writeField(&b, false, "@mt", rec.Template)
	writeField(&b, false, "@i", fmt.Sprintf("%08x", rec.Fingerprint))
	if f.RenderMessage {
		writeField(&b, false, "@m", rec.Message)
	}
	if rec.Exception != nil {
		writeField(&b, false, "@x", rec.Exception.Type+": "+rec.Exception.Message)
	}

	for _, p := range rec.Properties {
		writeRawField(&b, false, escapeAt(p.Name), propertyJSONValue(p))
	}
	for k, v := range rec.Context {
		enc, _ := json.Marshal(v)
		writeRawField(&b, false, escapeAt(k), enc)
	}
	if len(rec.Tags) > 0 {
		enc, _ := json.Marshal(rec.Tags)
		writeRawField(&b, false, "tags", enc)
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}

func propertyJSONValue(p core.Property) []byte {
	var v any
	switch p.Op {
	case core.OpDestructure:
		v = nativeJSONValue(p.Value)
	default:
		v = p.Value
	}
	enc, err := json.Marshal(v)
	if err != nil {
		enc, _ = json.Marshal(p.Value)
	}
	return enc
}

// escapeAt doubles a leading "@" so user keys never collide with CLEF's
// reserved "@"-prefixed fields.
func escapeAt(key string) string {
	if strings.HasPrefix(key, "@") {
		return "@" + key
	}
	return key
}

func writeField(b *bytes.Buffer, first bool, key, value string) {
	enc, _ := json.Marshal(value)
	writeRawField(b, first, key, enc)
}

func writeRawField(b *bytes.Buffer, first bool, key string, rawValue []byte) {
	if !first {
		b.WriteByte(',')
	}
	keyEnc, _ := json.Marshal(key)
	b.Write(keyEnc)
	b.WriteByte(':')
	b.Write(rawValue)
}
