package utils

import "strings"

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single dash, trimming dashes at both ends.
// "Hello, World!" -> "hello-world"
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
