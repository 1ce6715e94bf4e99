// Package utils provides helper functions shared across the service:
// slug generation, password hashing and token issuing/verification.
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlnum matches runs of characters that may not appear in a slug.
var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a category name into a URL-friendly slug: accents are
// folded to their ASCII base letters, the result is lower-cased, every run
// of non-alphanumeric characters collapses to a single hyphen, and leading
// and trailing hyphens are trimmed. The output contains only [a-z0-9-] and
// is deterministic for a given input.
func Slugify(name string) string {
	// Decompose accented characters and strip the combining marks.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, _ := transform.String(t, name)

	s := strings.ToLower(folded)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
