package game

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeAnswer folds an answer for comparison: accents removed, lowercased,
// trimmed and inner whitespace collapsed. "Café " and "cafe" normalize equally.
func NormalizeAnswer(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// AnswersMatch compares two answers after normalization
func AnswersMatch(given, expected string) bool {
	return NormalizeAnswer(given) == NormalizeAnswer(expected)
}
