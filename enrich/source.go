package enrich

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/corvidlabs/quill/core"
)

// Source captures the call site of the logging call: file, line, and
// function name. skip is the number of stack frames between the logger's
// public log method and this enricher's Enrich call; callers wire it up
// once when constructing the logger facade.
type Source struct {
	skip int
}

// NewSource builds a Source enricher. skip should count frames from
// runtime.Caller's perspective inside Enrich up to the user's call site.
func NewSource(skip int) *Source {
	return &Source{skip: skip}
}

// Enrich implements core.Enricher, attaching the call-site location to
// the record (spec.md §4.2) and adding it to the context map as well so
// filters and the human formatter's "{source}" token can reach it
// without a type assertion on *core.SourceLocation.
func (s *Source) Enrich(rec *core.Record, add func(name, value string)) {
	pc, file, line, ok := runtime.Caller(s.skip)
	if !ok {
		return
	}
	fn := runtime.FuncForPC(pc)
	fnName := "unknown"
	if fn != nil {
		fnName = shortFuncName(fn.Name())
	}

	rec.Source = &core.SourceLocation{File: file, Line: line, Function: fnName}
	add("file", file)
	add("line", strconv.Itoa(line))
	add("function", fnName)
}

// shortFuncName trims a fully qualified function name down to
// "package.Function", matching the form the human and XML formatters use.
func shortFuncName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx != -1 {
		full = full[idx+1:]
	}
	return full
}
