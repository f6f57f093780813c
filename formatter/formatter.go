// Package formatter implements the Record→bytes encodings from
// spec.md §4.6 and §6: human-readable, JSON, compact JSON (CLEF-style),
// and XML.
package formatter

import "github.com/corvidlabs/quill/core"

// Formatter renders a record to its wire/display bytes.
type Formatter interface {
	Format(rec *core.Record) ([]byte, error)
}
