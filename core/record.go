package core

import (
	"reflect"
	"time"
)

// SourceLocation is the call-site location captured for a record, when
// source capture is enabled on the logger.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// Record is one logging event's immutable data carrier (spec.md §3). It is
// built once by the logger facade and never mutated afterward; every field
// reflects exactly one pass of the template engine (invariant I1).
type Record struct {
	Severity        Level
	Timestamp       time.Time
	Message         string
	Template        string // tags stripped, like Message (I3)
	Fingerprint     uint32
	Properties      []Property
	Tags            []string
	Exception       *Exception
	Source          *SourceLocation
	Context         map[string]string
	GoroutineID     string
	Locale          string
}

// Property looks up a bound property by name, returning ok=false if absent.
func (r *Record) Property(name string) (Property, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
