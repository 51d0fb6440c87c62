// Package metric resolves free-text metric names against a curated catalog
// of canonical financial metrics.
package metric

import "strings"

// Normalize canonicalizes a term for comparison: lowercase, every run of
// characters outside [a-z0-9% ] becomes a single space, whitespace collapsed,
// trimmed. Total and idempotent for any input.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '%':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a term into its normalized tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
