// Package fuzzy compares strings with typo tolerance.
// Matching is tiered: exact and containment checks first (including on
// stemmed forms), Levenshtein similarity only as the last resort.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/keywatchhq/keywatch/pkg/stem"
	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// DefaultThreshold is the similarity floor for Match.
const DefaultThreshold = 0.75

// Comparator holds the suffix table used for stemmed comparison.
// Safe for concurrent use: the table is read-only.
type Comparator struct {
	Suffixes stem.SuffixTable
}

// New creates a comparator over the given suffix table.
func New(suffixes stem.SuffixTable) *Comparator {
	return &Comparator{Suffixes: suffixes}
}

// Match reports similarity at the default threshold.
func (c *Comparator) Match(a, b string) bool {
	return c.MatchThreshold(a, b, DefaultThreshold)
}

// MatchThreshold normalizes both strings and accepts on equality,
// containment either way, stemmed equality/containment, or normalized
// edit-distance similarity >= threshold. Strings shorter than three runes
// never reach the edit-distance tier. Symmetric in its arguments.
func (c *Comparator) MatchThreshold(a, b string, threshold float64) bool {
	na := textnorm.Normalize(a)
	nb := textnorm.Normalize(b)

	if c.Related(na, nb) {
		return true
	}

	la := utf8.RuneCountInString(na)
	lb := utf8.RuneCountInString(nb)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest < 3 {
		return na == nb
	}

	dist := Levenshtein(na, nb)
	similarity := 1.0 - float64(dist)/float64(longest)
	return similarity >= threshold
}

// Related applies only the exact/substring tier: equality, containment
// either way, and the same checks on stemmed forms. This is the rule the
// synonym expander uses to decide whether a word belongs to a class.
func (c *Comparator) Related(a, b string) bool {
	na := textnorm.Normalize(a)
	nb := textnorm.Normalize(b)
	if na == "" || nb == "" {
		return na == nb
	}

	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	sa := c.Suffixes.Stem(na)
	sb := c.Suffixes.Stem(nb)
	return sa == sb || strings.Contains(sa, sb) || strings.Contains(sb, sa)
}

// Levenshtein computes edit distance over runes with unit costs.
// Standard two-row dynamic programming.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
