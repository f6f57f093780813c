package template

import (
	"math"
	"strconv"
	"strings"
)

// ApplyFormatSpec applies a format specifier to a value already run through
// the transform pipeline. Unknown or malformed specifiers pass the value
// through unchanged (spec.md §4.1 Format specifiers).
func ApplyFormatSpec(raw string, spec string) string {
	if spec == "" {
		return raw
	}

	switch spec {
	case "d":
		if i, ok := parseIntTruncating(raw); ok {
			return strconv.FormatInt(i, 10)
		}
		return raw
	case "X", "x":
		if i, ok := parseIntTruncating(raw); ok {
			return formatHexSigned(i, spec == "X")
		}
		return raw
	case "e", "E":
		if f, ok := parseFiniteFloat(raw); ok {
			s := strconv.FormatFloat(f, byte(spec[0]), 6, 64)
			return s
		}
		if isNaNOrInf(raw) {
			return nanOrInfLiteral(raw)
		}
		return raw
	case "P":
		if f, ok := parseFiniteFloat(raw); ok {
			return strconv.FormatFloat(f*100, 'f', 2, 64) + "%"
		}
		if isNaNOrInf(raw) {
			return nanOrInfLiteral(raw)
		}
		return raw
	case "C":
		if f, ok := parseFiniteFloat(raw); ok {
			return formatCurrency(f)
		}
		if isNaNOrInf(raw) {
			return nanOrInfLiteral(raw)
		}
		return raw
	}

	if n, ok := parseFixedPointSpec(spec); ok {
		if f, ok := parseFiniteFloat(raw); ok {
			return strconv.FormatFloat(f, 'f', n, 64)
		}
		if isNaNOrInf(raw) {
			return nanOrInfLiteral(raw)
		}
		return raw
	}

	if n, ok := parseZeroPadSpec(spec); ok {
		if i, ok := parseIntTruncating(raw); ok {
			return formatZeroPadded(i, n)
		}
		return raw
	}

	return raw
}

func parseFiniteFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNaNOrInf(raw string) bool {
	f, err := strconv.ParseFloat(raw, 64)
	return err == nil && (math.IsNaN(f) || math.IsInf(f, 0))
}

func nanOrInfLiteral(raw string) string {
	f, _ := strconv.ParseFloat(raw, 64)
	if math.IsNaN(f) {
		return "NaN"
	}
	return "Infinity"
}

func formatHexSigned(i int64, upper bool) string {
	neg := i < 0
	if neg {
		i = -i
	}
	s := strconv.FormatInt(i, 16)
	if upper {
		s = strings.ToUpper(s)
	}
	if neg {
		s = "-" + s
	}
	return s
}

func formatCurrency(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	s := "$" + strconv.FormatFloat(f, 'f', 2, 64)
	if neg {
		s = "-" + s
	}
	return s
}

// parseFixedPointSpec recognizes ".Nf" or "Nf" with 0 <= N <= 50.
func parseFixedPointSpec(spec string) (int, bool) {
	if !strings.HasSuffix(spec, "f") {
		return 0, false
	}
	digits := strings.TrimSuffix(spec, "f")
	digits = strings.TrimPrefix(digits, ".")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > 50 {
		return 0, false
	}
	return n, true
}

// parseZeroPadSpec recognizes "0Nd" or "0N" with N > 0.
func parseZeroPadSpec(spec string) (int, bool) {
	if !strings.HasPrefix(spec, "0") || spec == "0" {
		return 0, false
	}
	digits := strings.TrimSuffix(spec[1:], "d")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// formatZeroPadded zero-pads i to width n; the sign counts toward the
// width ("-0005").
func formatZeroPadded(i int64, n int) string {
	neg := i < 0
	if neg {
		i = -i
	}
	digits := strconv.FormatInt(i, 10)
	width := n
	if neg {
		width--
	}
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}
