// Package stem implements single-pass suffix stripping for Russian.
// It is deliberately not a full morphological analyzer: one greedy
// longest-match pass over an ordered suffix table, no chains, no
// backtracking. Equality of stems is what the match pipeline relies on,
// so the table errs toward under-stemming.
package stem

import "sort"

// minStemLen is the shortest stem a strip may leave behind.
const minStemLen = 2

// minWordLen is the shortest word worth stemming at all.
const minWordLen = 4

// SuffixTable is an ordered set of inflectional suffixes, longest first.
// Construct with New so the ordering invariant holds for loaded tables.
type SuffixTable []string

// New builds a table from an arbitrary suffix list, sorting longest-first
// (rune length, then lexical for determinism).
func New(suffixes []string) SuffixTable {
	t := make(SuffixTable, len(suffixes))
	copy(t, suffixes)
	sort.SliceStable(t, func(i, j int) bool {
		ri, rj := []rune(t[i]), []rune(t[j])
		if len(ri) != len(rj) {
			return len(ri) > len(rj)
		}
		return t[i] < t[j]
	})
	return t
}

// DefaultRussian returns the stock Russian suffix table: noun case endings,
// adjective endings, and common verb forms.
func DefaultRussian() SuffixTable {
	return New([]string{
		// Noun endings
		"иями", "ьями", "ями", "ами", "иях", "ях", "ах",
		"иям", "ям", "ам", "ией", "ов", "ев", "ей", "ом", "ем",
		"ость", "ости",
		// Adjective endings
		"ого", "его", "ому", "ему", "ыми", "ими",
		"ый", "ий", "ой", "ая", "яя", "ое", "ее", "ую", "юю", "ых", "их",
		// Verb endings
		"ешь", "ете", "ишь", "ите", "ала", "али", "ало",
		"ать", "ять", "ить", "еть", "уть",
		"ет", "ит", "ут", "ют", "ат", "ят", "ла", "ли", "ло", "ть",
		// Bare vowels and soft/short signs
		"а", "я", "ы", "и", "е", "у", "ю", "о", "ь", "й",
	})
}

// Stem strips the first matching suffix from a normalized word.
// Words shorter than four runes are returned unchanged (too short to
// truncate safely), and a strip never leaves fewer than two runes.
func (t SuffixTable) Stem(word string) string {
	runes := []rune(word)
	if len(runes) < minWordLen {
		return word
	}

	for _, suffix := range t {
		sr := []rune(suffix)
		rest := len(runes) - len(sr)
		if rest < minStemLen {
			continue
		}
		if string(runes[rest:]) == suffix {
			return string(runes[:rest])
		}
	}
	return word
}
