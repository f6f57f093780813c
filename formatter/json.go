package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/corvidlabs/quill/core"
)

// JSON formats a record as a single JSON object with keys timestamp,
// level, message, messageTemplate, templateHash, and (when present)
// properties, context, tags, exception, file, line, function
// (spec.md §4.6).
type JSON struct{}

// NewJSON returns a JSON formatter.
func NewJSON() *JSON { return &JSON{} }

func (f *JSON) Format(rec *core.Record) ([]byte, error) {
	obj := map[string]any{
		"timestamp":       rec.Timestamp.Format(defaultHumanTimestampLayout),
		"level":           rec.Severity.String(),
		"message":         rec.Message,
		"messageTemplate": rec.Template,
		"templateHash":    fmt.Sprintf("%08x", rec.Fingerprint),
	}

	if len(rec.Properties) > 0 {
		props := make(map[string]any, len(rec.Properties))
		for _, p := range rec.Properties {
			if p.Op == core.OpDestructure {
				props[p.Name] = nativeJSONValue(p.Value)
			} else {
				props[p.Name] = p.Value
			}
		}
		obj["properties"] = props
	}
	if len(rec.Context) > 0 {
		obj["context"] = rec.Context
	}
	if len(rec.Tags) > 0 {
		obj["tags"] = rec.Tags
	}
	if rec.Exception != nil {
		obj["exception"] = map[string]any{
			"type":    rec.Exception.Type,
			"message": rec.Exception.Message,
			"chain":   rec.Exception.Chain,
		}
	}
	if rec.Source != nil {
		obj["file"] = rec.Source.File
		obj["line"] = rec.Source.Line
		obj["function"] = rec.Source.Function
	}

	return json.Marshal(obj)
}
