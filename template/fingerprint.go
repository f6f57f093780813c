package template

import "hash/fnv"

// Fingerprint computes the FNV-1a 32-bit hash of a raw template string
// (spec.md §4.1 Template fingerprint). It returns the number; formatters
// render it as 8-digit lowercase hex.
func Fingerprint(raw string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(raw))
	return h.Sum32()
}
