// Package ngram extracts contiguous word windows from normalized text.
package ngram

import (
	"strings"
	"unicode/utf8"
)

// Generate returns every contiguous run of n words joined by a single
// space, left to right. Input is expected to be normalized already;
// single-rune words are skipped. Empty when fewer than n words exist.
func Generate(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, w)
		}
	}

	if len(words) < n {
		return nil
	}

	grams := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		grams = append(grams, strings.Join(words[i:i+n], " "))
	}
	return grams
}
