package core

// maxChainDepth bounds exception chain unwinding (spec.md §4.2, S6).
const maxChainDepth = 20

// Exception carries the extracted shape of an attached error: its dynamic
// type name, its message, and the unwound cause chain (via errors.Unwrap),
// capped at maxChainDepth entries.
type Exception struct {
	Type    string
	Message string
	Chain   []string
}

// causer is satisfied by any error exposing Unwrap() error, the standard
// library convention since Go 1.13.
type causer interface {
	Unwrap() error
}

// NewException extracts type name, message, and a bounded unwrap chain
// from err. A nil err yields a nil *Exception.
func NewException(err error) *Exception {
	if err == nil {
		return nil
	}

	exc := &Exception{
		Type:    typeName(err),
		Message: err.Error(),
	}

	cur := err
	for i := 0; i < maxChainDepth; i++ {
		c, ok := cur.(causer)
		if !ok {
			break
		}
		next := c.Unwrap()
		if next == nil {
			break
		}
		exc.Chain = append(exc.Chain, next.Error())
		cur = next
	}

	return exc
}
