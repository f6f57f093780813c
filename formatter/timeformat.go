package formatter

import "strings"

// dotNetToGoLayout translates the subset of .NET-style timestamp tokens
// spec.md §4.6.a accepts (yyyy, MM, dd, HH, mm, ss, fff) into a Go
// reference-time layout string.
func dotNetToGoLayout(format string) string {
	r := strings.NewReplacer(
		"yyyy", "2006",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
		"fff", "000",
	)
	return r.Replace(format)
}

const defaultHumanTimestampLayout = "2006-01-02 15:04:05.000"
const compactJSONTimestampLayout = "2006-01-02T15:04:05.000Z"
