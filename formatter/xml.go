package formatter

import (
	"fmt"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// XML renders a record as a <log_entry> element with child elements for
// level, timestamp, message, MessageTemplate (with a hash attribute),
// and optional properties/context/tags/exception (spec.md §4.6).
type XML struct{}

// NewXML returns an XML formatter.
func NewXML() *XML { return &XML{} }

func (f *XML) Format(rec *core.Record) ([]byte, error) {
	var b strings.Builder
	b.WriteString("<log_entry>")

	writeElem(&b, "level", rec.Severity.String())
	writeElem(&b, "timestamp", rec.Timestamp.Format(defaultHumanTimestampLayout))
	writeElem(&b, "message", rec.Message)

	fmt.Fprintf(&b, "<MessageTemplate hash=\"%08x\">%s</MessageTemplate>", rec.Fingerprint, escapeXML(rec.Template))

	if len(rec.Properties) > 0 {
		b.WriteString("<properties>")
		for _, p := range rec.Properties {
			writeElem(&b, sanitizeElementName(p.Name), p.Value)
		}
		b.WriteString("</properties>")
	}
	if len(rec.Context) > 0 {
		b.WriteString("<context>")
		for k, v := range rec.Context {
			writeElem(&b, sanitizeElementName(k), v)
		}
		b.WriteString("</context>")
	}
	if len(rec.Tags) > 0 {
		b.WriteString("<tags>")
		for _, t := range rec.Tags {
			writeElem(&b, "tag", t)
		}
		b.WriteString("</tags>")
	}
	if rec.Exception != nil {
		b.WriteString("<exception>")
		writeElem(&b, "type", rec.Exception.Type)
		writeElem(&b, "message", rec.Exception.Message)
		b.WriteString("</exception>")
	}

	b.WriteString("</log_entry>")
	return []byte(b.String()), nil
}

func writeElem(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "<%s>%s</%s>", name, escapeXML(value), name)
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// sanitizeElementName enforces XML name rules per spec.md §4.6: empty
// names become "_", a leading digit is prefixed with "_", and any other
// non-name character becomes "_".
func sanitizeElementName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
