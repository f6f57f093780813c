// Package template implements the message template engine: grammar parsing,
// the indexed/key-value/positional binding discipline, pipe transforms,
// numeric format specifiers, a bounded FIFO cache, and the FNV-1a template
// fingerprint (spec.md §4.1).
package template

import (
	"fmt"
	"strconv"
)

// Kind tags the dynamic type of a logged argument. The engine never
// inspects an argument's original Go value after converting it to its raw
// string form — properties carry only that string plus the operator flag
// (spec.md §9 Design Notes).
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindNil
)

// Arg is a tagged variant wrapping one logged argument.
type Arg struct {
	Kind Kind
	S    string
	B    bool
	I    int64
	F    float64
}

// Str wraps a string argument.
func Str(s string) Arg { return Arg{Kind: KindString, S: s} }

// Bool wraps a bool argument.
func Bool(b bool) Arg { return Arg{Kind: KindBool, B: b} }

// Int wraps an integer argument.
func Int(i int64) Arg { return Arg{Kind: KindInt, I: i} }

// Float wraps a floating-point argument.
func Float(f float64) Arg { return Arg{Kind: KindFloat, F: f} }

// Nil wraps a nil/absent argument.
func Nil() Arg { return Arg{Kind: KindNil} }

// Raw renders the argument to its canonical raw string form, the only
// representation the transform and format pipelines operate on.
func (a Arg) Raw() string {
	switch a.Kind {
	case KindString:
		return a.S
	case KindBool:
		if a.B {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(a.I, 10)
	case KindFloat:
		return strconv.FormatFloat(a.F, 'g', -1, 64)
	case KindNil:
		return "(null)"
	default:
		return ""
	}
}

// IsString reports whether the argument is a string, used by the
// key-value binding discipline to identify candidate keys.
func (a Arg) IsString() bool { return a.Kind == KindString }

// FromAny converts a Go value into an Arg, used by call sites that accept
// ...any rather than pre-typed Args.
func FromAny(v any) Arg {
	switch x := v.(type) {
	case nil:
		return Nil()
	case string:
		return Str(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case error:
		return Str(x.Error())
	case interface{ String() string }:
		return Str(x.String())
	default:
		return Str(fmt.Sprintf("%v", x))
	}
}
