package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// Human is the human-readable formatter (spec.md §4.6): by default it
// renders "timestamp [LEVEL] message [k=v …] [file:line func] [tags]";
// an output template (§4.6.a) overrides that layout with a mini-language
// of "{token[,align][:format]}" elements.
type Human struct {
	template []humanToken // nil means use the default fixed layout
}

// NewHuman returns a Human formatter using the default fixed layout.
func NewHuman() *Human { return &Human{} }

// NewHumanTemplate parses an output template string and returns a Human
// formatter that renders records with it. Unknown tokens render empty;
// parsing never fails (fail-open, matching the template engine's own
// philosophy).
func NewHumanTemplate(tmpl string) *Human {
	return &Human{template: parseHumanTemplate(tmpl)}
}

func (h *Human) Format(rec *core.Record) ([]byte, error) {
	if h.template == nil {
		return []byte(h.formatDefault(rec)), nil
	}
	var b strings.Builder
	for _, tok := range h.template {
		b.WriteString(tok.render(rec))
	}
	return []byte(b.String()), nil
}

func (h *Human) formatDefault(rec *core.Record) string {
	var b strings.Builder
	b.WriteString(rec.Timestamp.Format(defaultHumanTimestampLayout))
	b.WriteString(" [")
	b.WriteString(rec.Severity.String())
	b.WriteString("] ")
	b.WriteString(rec.Message)

	if len(rec.Properties) > 0 {
		b.WriteByte(' ')
		b.WriteString(formatProperties(rec.Properties))
	}
	if rec.Source != nil {
		fmt.Fprintf(&b, " %s:%d %s", rec.Source.File, rec.Source.Line, rec.Source.Function)
	}
	if len(rec.Tags) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(rec.Tags, ","))
		b.WriteByte(']')
	}
	return b.String()
}

// formatProperties renders bound properties as space-separated k=v
// pairs; a value containing '=' or ',' is double-quoted.
func formatProperties(props []core.Property) string {
	parts := make([]string, len(props))
	for i, p := range props {
		v := p.Value
		if strings.ContainsAny(v, "=,") {
			v = strconv.Quote(v)
		}
		parts[i] = p.Name + "=" + v
	}
	return strings.Join(parts, " ")
}

// humanToken is one element of a parsed output template.
type humanToken struct {
	text  string // literal text, when name == ""
	name  string
	align int
	has   bool // has an explicit align
	spec  string
}

func (t humanToken) render(rec *core.Record) string {
	if t.name == "" {
		return t.text
	}
	s := t.renderValue(rec)
	if t.has {
		s = alignTo(s, t.align)
	}
	return s
}

func (t humanToken) renderValue(rec *core.Record) string {
	switch t.name {
	case "timestamp":
		layout := defaultHumanTimestampLayout
		if t.spec != "" {
			layout = dotNetToGoLayout(t.spec)
		}
		return rec.Timestamp.Format(layout)
	case "level":
		switch t.spec {
		case "u3":
			return rec.Severity.Abbrev3()
		case "l":
			return strings.ToLower(rec.Severity.String())
		default:
			return rec.Severity.String()
		}
	case "message":
		return rec.Message
	case "newline":
		return "\n"
	case "properties":
		return formatProperties(rec.Properties)
	case "template":
		return rec.Template
	case "source":
		if rec.Source == nil {
			return ""
		}
		return fmt.Sprintf("%s:%d %s", rec.Source.File, rec.Source.Line, rec.Source.Function)
	case "threadId":
		return rec.GoroutineID
	case "exception":
		if rec.Exception == nil {
			return ""
		}
		s := rec.Exception.Type + ": " + rec.Exception.Message
		for _, c := range rec.Exception.Chain {
			s += " -> " + c
		}
		return s
	default:
		return ""
	}
}

const maxHumanAlign = 1024

func alignTo(s string, width int) string {
	w := width
	left := w < 0
	if left {
		w = -w
	}
	if w > maxHumanAlign {
		w = maxHumanAlign
	}
	runes := []rune(s)
	if len(runes) >= w {
		return s
	}
	pad := strings.Repeat(" ", w-len(runes))
	if left {
		return s + pad
	}
	return pad + s
}

// parseHumanTemplate parses "{token[,align][:format]}" elements out of
// tmpl, treating everything else as literal text.
func parseHumanTemplate(tmpl string) []humanToken {
	var toks []humanToken
	i := 0
	textStart := 0
	n := len(tmpl)

	flush := func(end int) {
		if end > textStart {
			toks = append(toks, humanToken{text: tmpl[textStart:end]})
		}
	}

	for i < n {
		if tmpl[i] != '{' {
			i++
			continue
		}
		close := strings.IndexByte(tmpl[i+1:], '}')
		if close == -1 {
			i++
			continue
		}
		flush(i)
		inner := tmpl[i+1 : i+1+close]
		toks = append(toks, parseHumanToken(inner))
		i = i + 1 + close + 1
		textStart = i
	}
	flush(n)
	return toks
}

func parseHumanToken(inner string) humanToken {
	content := inner
	spec := ""
	if colon := strings.IndexByte(content, ':'); colon != -1 {
		spec = content[colon+1:]
		content = content[:colon]
	}
	name := content
	tok := humanToken{spec: spec}
	if comma := strings.IndexByte(content, ','); comma != -1 {
		name = content[:comma]
		if w, err := strconv.Atoi(content[comma+1:]); err == nil {
			tok.align = w
			tok.has = true
		}
	}
	tok.name = name
	return tok
}
