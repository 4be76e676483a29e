// Package textnorm canonicalizes chat text for keyword comparison.
// One normalizer serves both keyword compilation and message scanning;
// using the same function on both sides is what makes matching consistent.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orsinium-labs/stopwords"
)

// ruStop filters Russian function words during tokenization.
// English is left alone on purpose: keyword phrases like "head of growth"
// must keep every token.
var ruStop = stopwords.MustGet("ru")

// keepRune reports whether a lowercased rune survives normalization.
// The matching charset is Latin and Cyrillic letters, ASCII digits, and
// underscore; any other script becomes a word boundary.
func keepRune(c rune) bool {
	if c >= '0' && c <= '9' || c == '_' {
		return true
	}
	return unicode.Is(unicode.Latin, c) || unicode.Is(unicode.Cyrillic, c)
}

// Normalize transforms raw text into its canonical matching form.
// Rules:
// - Fold to lowercase
// - Fold "ё" to "е" (users type both interchangeably)
// - Keep Latin/Cyrillic letters, ASCII digits, and underscore
// - Replace everything else with a single space (collapse runs)
// - Trim leading/trailing spaces
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	lastWasSpace := true // Start true to trim leading spaces

	for _, ch := range s {
		c := unicode.ToLower(ch)

		if c == 'ё' {
			c = 'е'
		}

		if keepRune(c) {
			out.WriteRune(c)
			lastWasSpace = false
		} else {
			if !lastWasSpace {
				out.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}

	result := out.String()
	// Trim trailing space
	if len(result) > 0 && result[len(result)-1] == ' ' {
		result = result[:len(result)-1]
	}
	return result
}

// Words normalizes and splits into words longer than one rune.
// Single-rune leftovers ("я", "c") carry no matching signal.
func Words(s string) []string {
	fields := strings.Fields(Normalize(s))

	result := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 1 {
			result = append(result, w)
		}
	}
	return result
}

// Tokenize produces the message-side token stream: normalized words with
// Russian stop words removed. Keyword phrases are split with Words instead,
// so a rule may still require a token Tokenize would drop.
func Tokenize(s string) []string {
	words := Words(s)

	result := make([]string, 0, len(words))
	for _, w := range words {
		if ruStop.Contains(w) {
			continue
		}
		result = append(result, w)
	}
	return result
}
