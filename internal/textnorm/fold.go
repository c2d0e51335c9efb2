// Package textnorm folds user text for keyword matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace, so
// "Después " and "despues" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// ContainsAny reports whether folded text contains any of the folded words.
func ContainsAny(text string, words ...string) bool {
	folded := Fold(text)
	for _, w := range words {
		if strings.Contains(folded, Fold(w)) {
			return true
		}
	}
	return false
}
