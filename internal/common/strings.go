package common

import "strings"

// Gap is the padding symbol inserted by every alignment backend.
const Gap = '-'

// IsGap reports whether b is an alignment gap. '.' is accepted because some
// aligners emit it for insert-state padding.
func IsGap(b byte) bool { return b == Gap || b == '.' }

// NormalizeGaps rewrites every gap symbol of s as Gap.
func NormalizeGaps(s string) string {
	if strings.IndexByte(s, '.') < 0 {
		return s
	}
	return strings.ReplaceAll(s, ".", string(Gap))
}

// StripGaps removes gap symbols, preserving residue case.
func StripGaps(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if !IsGap(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// GapPositions lists every gap index of s in ascending order.
func GapPositions(s string) []int {
	out := []int{}
	for i := 0; i < len(s); i++ {
		if IsGap(s[i]) {
			out = append(out, i)
		}
	}
	return out
}

// EqualResidues compares two ungapped strings case-insensitively.
func EqualResidues(a, b string) bool { return strings.EqualFold(a, b) }
