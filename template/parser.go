package template

import (
	"strings"
)

// Plan is the parsed, cacheable form of a template: its tags, its token
// stream, and enough metadata about its placeholders to pick a binding
// discipline once arguments are known (spec.md §4.1 binding discipline).
type Plan struct {
	Raw      string   // the original template string, tags included
	Body     string   // Raw with leading "[tag]" segments stripped (spec.md §4.1 I3)
	Tags     []string // leading "[tag]" segments, in order
	Tokens   []Token  // tokens for the template body, after tag stripping
	Order    []string // distinct placeholder names, first-occurrence order
	AllIndex bool     // true iff every distinct placeholder name is a non-negative integer literal
	Warnings []string
}

// Parse parses a raw template string into a Plan. Parsing never fails:
// malformed input degrades to literal text or a validation warning, per
// spec.md §4.1's fail-open grammar.
func Parse(raw string) *Plan {
	p := &Plan{Raw: raw}

	body := raw
	p.Tags, body = extractTags(raw)
	p.Body = body

	seen := map[string]bool{}
	p.AllIndex = true
	sawAnyPlaceholder := false

	i := 0
	textStart := 0
	n := len(body)

	flushText := func(end int) {
		if end > textStart {
			p.Tokens = append(p.Tokens, TextToken{Text: body[textStart:end]})
		}
	}

	for i < n {
		c := body[i]
		switch {
		case c == '{' && i+1 < n && body[i+1] == '{':
			flushText(i)
			p.Tokens = append(p.Tokens, TextToken{Text: "{"})
			i += 2
			textStart = i

		case c == '}' && i+1 < n && body[i+1] == '}':
			flushText(i)
			p.Tokens = append(p.Tokens, TextToken{Text: "}"})
			i += 2
			textStart = i

		case c == '{':
			close := strings.IndexByte(body[i+1:], '}')
			if close == -1 {
				// Unmatched '{' is literal; stop scanning as placeholder.
				i++
				continue
			}
			flushText(i)
			inner := body[i+1 : i+1+close]
			ph := parsePlaceholder(inner)
			p.Tokens = append(p.Tokens, ph)

			name := strings.TrimSpace(ph.Name)
			switch {
			case ph.Name == "":
				p.Warnings = append(p.Warnings, "empty placeholder name")
			case name == "":
				p.Warnings = append(p.Warnings, "whitespace-only placeholder name: "+ph.Raw)
			case isNumericName(name):
				// repeats allowed, no duplicate warning
			case seen[name]:
				p.Warnings = append(p.Warnings, "duplicate placeholder name: "+name)
			}
			if name != "" {
				if !seen[name] {
					seen[name] = true
					p.Order = append(p.Order, name)
				}
				if !isNumericName(name) {
					p.AllIndex = false
				}
			} else {
				p.AllIndex = false
			}
			sawAnyPlaceholder = true

			i = i + 1 + close + 1
			textStart = i

		case c == '}':
			// Unmatched '}' is literal.
			i++

		default:
			i++
		}
	}
	flushText(n)

	if !sawAnyPlaceholder {
		p.AllIndex = false
	}

	return p
}

// extractTags strips consecutive leading "[tag]" segments from the front
// of raw, returning the parsed tag names and the remaining body. A single
// space immediately following the tag block is consumed as a separator.
func extractTags(raw string) ([]string, string) {
	var tags []string
	rest := raw
	for strings.HasPrefix(rest, "[") {
		close := strings.IndexByte(rest, ']')
		if close <= 1 {
			break
		}
		tag := rest[1:close]
		if strings.ContainsAny(tag, "[{}") {
			break
		}
		tags = append(tags, tag)
		rest = rest[close+1:]
	}
	if len(tags) > 0 && strings.HasPrefix(rest, " ") {
		rest = rest[1:]
	}
	return tags, rest
}

// parsePlaceholder parses the inner content of "{...}" per the grammar:
//
//	placeholder = '{' [op] name [',' align] [':' spec] ['|' xforms] '}'
func parsePlaceholder(inner string) Placeholder {
	ph := Placeholder{Raw: inner}

	content := inner
	if len(content) >= 2 && isOpChar(content[0]) && isOpChar(content[1]) {
		// "@@", "$$", "@$", "$@" are literal — no operator applied.
	} else if len(content) >= 1 && isOpChar(content[0]) {
		ph.Op = content[0]
		content = content[1:]
	}

	xformsPart := ""
	if pipeIdx := strings.IndexByte(content, '|'); pipeIdx != -1 {
		xformsPart = content[pipeIdx+1:]
		content = content[:pipeIdx]
	}

	spec := ""
	hasSpec := false
	if colonIdx := strings.IndexByte(content, ':'); colonIdx != -1 {
		spec = content[colonIdx+1:]
		content = content[:colonIdx]
		hasSpec = true
	}

	name := content
	if commaIdx := strings.IndexByte(content, ','); commaIdx != -1 {
		name = content[:commaIdx]
		alignStr := content[commaIdx+1:]
		if w, ok := parseAlign(alignStr); ok {
			ph.Align = w
			ph.HasAlign = true
		}
	}

	ph.Name = name
	if hasSpec {
		ph.Spec = spec
	}
	if xformsPart != "" {
		ph.Xforms = parseXforms(xformsPart)
	}

	return ph
}

func isOpChar(c byte) bool { return c == '@' || c == '$' }

func parseAlign(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	w := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		w = w*10 + int(s[i]-'0')
	}
	if neg {
		w = -w
	}
	return w, true
}

func parseXforms(s string) []Xform {
	var out []Xform
	for _, part := range strings.Split(s, "|") {
		if colonIdx := strings.IndexByte(part, ':'); colonIdx != -1 {
			out = append(out, Xform{Name: part[:colonIdx], Arg: part[colonIdx+1:]})
		} else {
			out = append(out, Xform{Name: part})
		}
	}
	return out
}

func isNumericName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
