// Package slug derives URL-safe identifiers from document titles and headings.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes input and removes combining marks, so "Économie"
// slugs the same as "Economie".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a title into a lowercase hyphen-separated slug.
// Runs of non-alphanumeric runes collapse into a single hyphen; leading and
// trailing hyphens are trimmed.
func Make(title string) string {
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Anchor derives the in-page anchor for a heading. It matches Make today;
// having a separate name keeps call sites honest about intent.
func Anchor(heading string) string { return Make(heading) }
