package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold case-folds text and strips combining marks so "Déjà" and "deja"
// compare equal. Transformers are built per call because they carry state.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(strip, text)
	if err != nil {
		stripped = text
	}
	return cases.Fold().String(stripped)
}

// Tokenize folds text and splits it on every rune that is not a letter or
// digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
