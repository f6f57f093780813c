package filter

import (
	"errors"
	"strings"
)

var (
	errUnterminatedQuote = errors.New("filter: unterminated quoted value")
	errEmptyQuoted       = errors.New("filter: empty quoted value")
	errStraySingleQuote  = errors.New("filter: stray quote in unquoted value")
	errEmptyValue        = errors.New("filter: empty value")
)

// splitWords splits s on runs of whitespace, except inside quote-delimited
// regions (quote is the delimiter rune, e.g. '\'' for the compact DSL).
// An odd number of quote characters is an unterminated-quote error.
func splitWords(s string, quote byte) ([]string, error) {
	var words []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote:
			inQuote = !inQuote
			cur.WriteByte(c)
		case !inQuote && isSpace(c):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if inQuote {
		return nil, errUnterminatedQuote
	}
	return words, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// readQuotedOrIdent reads a value starting at s[i]: a quote-delimited
// string, or a bare identifier running until sep or end of string. It
// returns the unquoted value and the index just past it.
func readQuotedOrIdent(s string, i int, quote byte, sep byte) (string, int, error) {
	if i < len(s) && s[i] == quote {
		j := strings.IndexByte(s[i+1:], quote)
		if j == -1 {
			return "", 0, errUnterminatedQuote
		}
		value := s[i+1 : i+1+j]
		if value == "" {
			return "", 0, errEmptyQuoted
		}
		return value, i + 1 + j + 1, nil
	}

	j := i
	for j < len(s) && s[j] != sep {
		if s[j] == quote {
			return "", 0, errStraySingleQuote
		}
		j++
	}
	if j == i {
		return "", 0, errEmptyValue
	}
	return s[i:j], j, nil
}
