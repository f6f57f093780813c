package filter

import (
	"fmt"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// ParseExpression parses one expression-DSL rule (spec.md §4.4) into a
// core.Filter.
func ParseExpression(expr string) (core.Filter, error) {
	tokens, err := splitWords(expr, '"')
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("filter: empty expression")
	}

	i := 0
	negate := false
	if tokens[i] == "not" {
		negate = true
		i++
	}
	if i >= len(tokens) {
		return nil, fmt.Errorf("filter: expression ends after 'not'")
	}

	f, consumed, err := parseAtom(tokens[i:])
	if err != nil {
		return nil, err
	}
	if i+consumed != len(tokens) {
		return nil, fmt.Errorf("filter: unexpected trailing tokens")
	}

	if negate {
		inner := f
		return core.FilterFunc(func(rec *core.Record) bool { return !inner.IsEnabled(rec) }), nil
	}
	return f, nil
}

func parseAtom(t []string) (core.Filter, int, error) {
	if len(t) == 0 {
		return nil, 0, fmt.Errorf("filter: empty atom")
	}

	switch t[0] {
	case "level":
		return parseLevelAtom(t)
	case "message":
		return parseStringAtom(t, func(rec *core.Record) string { return rec.Message })
	case "template":
		return parseStringAtom(t, func(rec *core.Record) string { return rec.Template })
	case "context":
		return parseContextAtom(t)
	default:
		return nil, 0, fmt.Errorf("filter: unknown field %q", t[0])
	}
}

func parseLevelAtom(t []string) (core.Filter, int, error) {
	if len(t) < 3 {
		return nil, 0, fmt.Errorf("filter: incomplete level atom")
	}
	op := t[1]
	lvl, ok := core.ParseLevel(t[2])
	if !ok {
		return nil, 0, fmt.Errorf("filter: unknown level %q", t[2])
	}
	var f core.Filter
	switch op {
	case ">=":
		f = core.FilterFunc(func(rec *core.Record) bool { return rec.Severity >= lvl })
	case "==":
		f = core.FilterFunc(func(rec *core.Record) bool { return rec.Severity == lvl })
	case "!=":
		f = core.FilterFunc(func(rec *core.Record) bool { return rec.Severity != lvl })
	default:
		return nil, 0, fmt.Errorf("filter: unknown level operator %q", op)
	}
	return f, 3, nil
}

func parseStringAtom(t []string, field func(*core.Record) string) (core.Filter, int, error) {
	if len(t) < 3 {
		return nil, 0, fmt.Errorf("filter: incomplete %s atom", t[0])
	}
	op := t[1]
	val, ok := unquote(t[2])
	if !ok {
		return nil, 0, fmt.Errorf("filter: %s value must be quoted", t[0])
	}

	var f core.Filter
	switch {
	case t[0] == "message" && op == "contains":
		f = core.FilterFunc(func(rec *core.Record) bool { return strings.Contains(field(rec), val) })
	case t[0] == "message" && op == "startswith":
		f = core.FilterFunc(func(rec *core.Record) bool { return strings.HasPrefix(field(rec), val) })
	case t[0] == "template" && op == "==":
		f = core.FilterFunc(func(rec *core.Record) bool { return field(rec) == val })
	case t[0] == "template" && op == "contains":
		f = core.FilterFunc(func(rec *core.Record) bool { return strings.Contains(field(rec), val) })
	default:
		return nil, 0, fmt.Errorf("filter: unsupported operator %q for %s", op, t[0])
	}
	return f, 3, nil
}

func parseContextAtom(t []string) (core.Filter, int, error) {
	if len(t) < 2 {
		return nil, 0, fmt.Errorf("filter: incomplete context atom")
	}
	if t[1] == "has" {
		if len(t) < 3 {
			return nil, 0, fmt.Errorf("filter: context has requires a value")
		}
		key, ok := unquote(t[2])
		if !ok {
			return nil, 0, fmt.Errorf("filter: context has value must be quoted")
		}
		return core.FilterFunc(func(rec *core.Record) bool {
			_, ok := rec.Context[key]
			return ok
		}), 3, nil
	}

	if len(t) < 4 {
		return nil, 0, fmt.Errorf("filter: incomplete context atom")
	}
	key := t[1]
	op := t[2]
	val, ok := unquote(t[3])
	if !ok {
		return nil, 0, fmt.Errorf("filter: context value must be quoted")
	}

	var f core.Filter
	switch op {
	case "==":
		f = core.FilterFunc(func(rec *core.Record) bool { v, ok := rec.Context[key]; return ok && v == val })
	case "!=":
		f = core.FilterFunc(func(rec *core.Record) bool { v, ok := rec.Context[key]; return !ok || v != val })
	default:
		return nil, 0, fmt.Errorf("filter: unknown context operator %q", op)
	}
	return f, 4, nil
}

func unquote(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false
	}
	return tok[1 : len(tok)-1], true
}
