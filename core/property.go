package core

// Operator is the placeholder prefix that controls how a structural
// formatter (JSON, compact JSON, XML) emits a property's value.
type Operator int

const (
	// OpNone means the formatter emits the value as a string (structural
	// formatters included) unless the format itself says otherwise.
	OpNone Operator = iota
	// OpDestructure ("@name") asks structural formatters to emit a native
	// JSON/XML value derived from the raw string form (spec.md §4.1.c).
	OpDestructure
	// OpStringify ("$name") always emits a string, even on structural
	// formatters.
	OpStringify
)

// Property is a single bound template placeholder: the rendered textual
// form used in the message, the operator that governs structural
// emission, and the original raw string the value was derived from.
type Property struct {
	Name  string
	Value string
	Op    Operator
	Raw   string
}
