package domain

import "strings"

// NormalizePrefix canonicalizes a user-typed query prefix for matching and
// cache keying:
//   - trims leading/trailing whitespace
//   - lowercases
//   - compresses runs of spaces into one
//
// Equivalent inputs ("Wool ", " wool", "wool") map to the same key so the
// result cache does not fragment across variants of the same query.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	prefix = strings.ToLower(prefix)

	var b strings.Builder
	b.Grow(len(prefix))
	prevSpace := false
	for _, r := range prefix {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
