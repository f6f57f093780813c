package template

import (
	"encoding/json"
	"strconv"
	"strings"
)

// transformFunc applies one pipe transform to a value, given its current
// kind (so "type" can report the pre-transform kind) and the transform's
// optional argument. It returns the new raw form and the kind that form
// should be treated as from here on.
type transformFunc func(raw string, kind Kind, arg string) (string, Kind)

var transforms = map[string]transformFunc{
	"upper":    xfUpper,
	"lower":    xfLower,
	"trim":     xfTrim,
	"truncate": xfTruncate,
	"pad":      xfPad,
	"padl":     xfPadLeft,
	"quote":    xfQuote,
	"comma":    xfComma,
	"hex":      xfBase(16, "0x"),
	"oct":      xfBase(8, "0"),
	"bin":      xfBase(2, "0b"),
	"bytes":    xfBytes,
	"duration": xfDuration,
	"pct":      xfPct,
	"json":     xfJSON,
	"type":     xfType,
	"expand":   xfIdentity,
	"str":      xfIdentity,
}

// applyTransforms runs xforms left to right over raw/kind. Unknown
// transforms are a no-op; each individual transform is responsible for
// passing its input through unchanged when it cannot be applied.
func applyTransforms(raw string, kind Kind, xforms []Xform) (string, Kind) {
	for _, x := range xforms {
		fn, ok := transforms[x.Name]
		if !ok {
			continue
		}
		raw, kind = fn(raw, kind, x.Arg)
	}
	return raw, kind
}

func xfIdentity(raw string, kind Kind, _ string) (string, Kind) { return raw, kind }

func xfUpper(raw string, _ Kind, _ string) (string, Kind) { return strings.ToUpper(raw), KindString }

func xfLower(raw string, _ Kind, _ string) (string, Kind) { return strings.ToLower(raw), KindString }

func xfTrim(raw string, _ Kind, _ string) (string, Kind) {
	return strings.Trim(raw, " \t\n\r\f\v"), KindString
}

func xfTruncate(raw string, _ Kind, arg string) (string, Kind) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return raw, KindString
	}
	runes := []rune(raw)
	if len(runes) <= n {
		return raw, KindString
	}
	return string(runes[:n]) + "…", KindString
}

func xfPad(raw string, _ Kind, arg string) (string, Kind) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return raw, KindString
	}
	runes := []rune(raw)
	if len(runes) >= n {
		return raw, KindString
	}
	return raw + strings.Repeat(" ", n-len(runes)), KindString
}

func xfPadLeft(raw string, _ Kind, arg string) (string, Kind) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return raw, KindString
	}
	runes := []rune(raw)
	if len(runes) >= n {
		return raw, KindString
	}
	return strings.Repeat(" ", n-len(runes)) + raw, KindString
}

func xfQuote(raw string, _ Kind, _ string) (string, Kind) {
	return "\"" + raw + "\"", KindString
}

// xfComma groups the integer part of a numeric value with thousands
// separators. arg, if present, is a fractional-digit count ("2" or ".2f")
// applied before grouping — this is what S2 in spec.md exercises.
func xfComma(raw string, _ Kind, arg string) (string, Kind) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, KindString
	}
	neg := f < 0
	if neg {
		f = -f
	}

	var intPart, fracPart string
	if prec, ok := parsePrecisionArg(arg); ok {
		s := strconv.FormatFloat(f, 'f', prec, 64)
		if dot := strings.IndexByte(s, '.'); dot != -1 {
			intPart, fracPart = s[:dot], s[dot+1:]
		} else {
			intPart = s
		}
	} else {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if dot := strings.IndexByte(s, '.'); dot != -1 {
			intPart, fracPart = s[:dot], s[dot+1:]
		} else {
			intPart = s
		}
	}

	grouped := groupThousands(intPart)
	out := grouped
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out, KindString
}

func parsePrecisionArg(arg string) (int, bool) {
	arg = strings.TrimPrefix(arg, ".")
	arg = strings.TrimSuffix(arg, "f")
	if arg == "" {
		return 0, false
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var b strings.Builder
	rem := len(intPart) % 3
	if rem > 0 {
		b.WriteString(intPart[:rem])
	}
	for i := rem; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

// xfBase returns a transform converting a numeric string to the given
// base, rendered with the given prefix and a leading sign for negatives.
func xfBase(base int, prefix string) transformFunc {
	return func(raw string, _ Kind, _ string) (string, Kind) {
		i, ok := parseIntTruncating(raw)
		if !ok {
			return raw, KindString
		}
		neg := i < 0
		if neg {
			i = -i
		}
		s := prefix + strconv.FormatInt(i, base)
		if neg {
			s = "-" + s
		}
		return s, KindString
	}
}

func parseIntTruncating(raw string) (int64, bool) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

func xfBytes(raw string, _ Kind, _ string) (string, Kind) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, KindString
	}
	neg := f < 0
	if neg {
		f = -f
	}
	unit := 0
	for f >= 1024 && unit < len(byteUnits)-1 {
		f /= 1024
		unit++
	}
	s := strconv.FormatFloat(f, 'f', 1, 64) + byteUnits[unit]
	if neg {
		s = "-" + s
	}
	return s, KindString
}

// xfDuration renders a millisecond count as "1h 2m 3s"-style text, or
// "500ms" for sub-second magnitudes.
func xfDuration(raw string, _ Kind, _ string) (string, Kind) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, KindString
	}
	neg := f < 0
	if neg {
		f = -f
	}
	totalMs := int64(f)
	if totalMs < 1000 {
		s := strconv.FormatInt(totalMs, 10) + "ms"
		if neg {
			s = "-" + s
		}
		return s, KindString
	}

	totalSec := totalMs / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60

	var parts []string
	if h > 0 {
		parts = append(parts, strconv.FormatInt(h, 10)+"h")
	}
	if h > 0 || m > 0 {
		parts = append(parts, strconv.FormatInt(m, 10)+"m")
	}
	parts = append(parts, strconv.FormatInt(s, 10)+"s")

	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out, KindString
}

func xfPct(raw string, _ Kind, _ string) (string, Kind) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, KindString
	}
	return strconv.FormatFloat(f*100, 'f', -1, 64) + "%", KindString
}

func xfJSON(raw string, _ Kind, _ string) (string, Kind) {
	b, err := json.Marshal(raw)
	if err != nil {
		return raw, KindString
	}
	return string(b), KindString
}

func xfType(_ string, kind Kind, _ string) (string, Kind) {
	switch kind {
	case KindInt:
		return "int", KindString
	case KindFloat:
		return "double", KindString
	case KindBool:
		return "bool", KindString
	case KindNil:
		return "nullptr_t", KindString
	default:
		return "string", KindString
	}
}
