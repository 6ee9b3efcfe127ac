package searchindex

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes text for matching: NFC, Turkish lower-casing and collapsed
// whitespace. "İSTANBUL" and "istanbul" fold to the same string.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	lower := cases.Lower(language.Turkish).String(norm.NFC.String(text))
	return strings.Join(strings.Fields(lower), " ")
}

// Tokens splits folded text into search terms.
func Tokens(text string) []string {
	return strings.Fields(Fold(text))
}
