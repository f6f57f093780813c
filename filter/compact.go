package filter

import (
	"fmt"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// ParseCompact parses a compact-DSL expression (spec.md §4.4) into a
// single core.Filter that AND-combines every token in the expression.
func ParseCompact(expr string) (core.Filter, error) {
	words, err := splitWords(expr, '\'')
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("filter: empty compact expression")
	}

	var filters []core.Filter
	for _, w := range words {
		f, err := parseCompactToken(w)
		if err != nil {
			return nil, fmt.Errorf("filter: %q: %w", w, err)
		}
		filters = append(filters, f)
	}
	return And(filters...), nil
}

func parseCompactToken(w string) (core.Filter, error) {
	switch {
	case strings.HasSuffix(w, "+") && len(w) > 1:
		return parseMinLevelToken(w[:len(w)-1])

	case strings.HasPrefix(w, "!tpl:"):
		val, err := consumeWhole(w, len("!tpl:"))
		if err != nil {
			return nil, err
		}
		return core.FilterFunc(func(rec *core.Record) bool {
			return rec.Template != val
		}), nil

	case strings.HasPrefix(w, "tpl:"):
		val, err := consumeWhole(w, len("tpl:"))
		if err != nil {
			return nil, err
		}
		return core.FilterFunc(func(rec *core.Record) bool {
			return rec.Template == val
		}), nil

	case strings.HasPrefix(w, "!~"):
		val, err := consumeWhole(w, len("!~"))
		if err != nil {
			return nil, err
		}
		return core.FilterFunc(func(rec *core.Record) bool {
			return !strings.Contains(rec.Message, val)
		}), nil

	case strings.HasPrefix(w, "~"):
		val, err := consumeWhole(w, len("~"))
		if err != nil {
			return nil, err
		}
		return core.FilterFunc(func(rec *core.Record) bool {
			return strings.Contains(rec.Message, val)
		}), nil

	case strings.HasPrefix(w, "ctx:"):
		return parseCtxToken(w[len("ctx:"):])

	default:
		return nil, fmt.Errorf("unrecognized token")
	}
}

func parseMinLevelToken(levelStr string) (core.Filter, error) {
	lvl, ok := core.ParseLevel(levelStr)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", levelStr)
	}
	return core.FilterFunc(func(rec *core.Record) bool {
		return rec.Severity >= lvl
	}), nil
}

// consumeWhole reads a quoted-or-bare value from word[prefixLen:] and
// requires it to consume the remainder of word exactly.
func consumeWhole(word string, prefixLen int) (string, error) {
	value, next, err := readQuotedOrIdent(word, prefixLen, '\'', 0)
	if err != nil {
		return "", err
	}
	if next != len(word) {
		return "", fmt.Errorf("unexpected trailing content")
	}
	return value, nil
}

func parseCtxToken(rest string) (core.Filter, error) {
	key, next, err := readQuotedOrIdent(rest, 0, '\'', '=')
	if err != nil {
		return nil, err
	}
	if next == len(rest) {
		return core.FilterFunc(func(rec *core.Record) bool {
			_, ok := rec.Context[key]
			return ok
		}), nil
	}
	if rest[next] != '=' {
		return nil, fmt.Errorf("unexpected trailing content after ctx key")
	}
	value, next2, err := readQuotedOrIdent(rest, next+1, '\'', 0)
	if err != nil {
		return nil, err
	}
	if next2 != len(rest) {
		return nil, fmt.Errorf("unexpected trailing content after ctx value")
	}
	return core.FilterFunc(func(rec *core.Record) bool {
		v, ok := rec.Context[key]
		return ok && v == value
	}), nil
}
