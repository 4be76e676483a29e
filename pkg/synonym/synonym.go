// Package synonym maps words to configured equivalence classes.
// A class is a dictionary key plus its listed synonyms; membership is
// decided by the comparator's exact/substring rule over normalized and
// stemmed forms, in both directions, so "smm" pulls in "маркетолог" just
// as "маркетолог" pulls in "smm".
package synonym

import (
	"sort"

	"github.com/keywatchhq/keywatch/pkg/fuzzy"
	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// Table maps a canonical word to the words considered interchangeable
// with it. Read-only after construction.
type Table map[string][]string

// DefaultTable returns the stock job-chatter dictionary: hiring channels
// are the primary deployment, so the classes cover common role names.
func DefaultTable() Table {
	return Table{
		"маркетолог":  {"маркетинг", "смм", "smm", "таргетолог", "таргет", "marketing"},
		"разработчик": {"программист", "девелопер", "developer", "кодер", "инженер"},
		"дизайнер":    {"designer", "иллюстратор", "верстальщик"},
		"копирайтер":  {"копирайтинг", "редактор", "автор текстов"},
		"менеджер":    {"manager", "руководитель", "управляющий"},
		"аналитик":    {"analyst", "аналитика"},
		"тестировщик": {"qa", "тестирование", "tester"},
		"фронтенд":    {"frontend", "front end", "верстка"},
		"бэкенд":      {"backend", "back end"},
	}
}

// Expander resolves a word to its candidate set.
type Expander struct {
	table Table
	cmp   *fuzzy.Comparator

	// keys in sorted order so expansion output is deterministic
	keys []string
}

// NewExpander builds an expander over a table and comparator.
func NewExpander(table Table, cmp *fuzzy.Comparator) *Expander {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Expander{table: table, cmp: cmp, keys: keys}
}

// Expand returns the deduplicated candidate set for a word: its own
// normalized and stemmed forms, plus every member (normalized and
// stemmed) of every class the word relates to.
func (e *Expander) Expand(word string) []string {
	norm := textnorm.Normalize(word)
	if norm == "" {
		return nil
	}

	seen := make(map[string]bool)
	result := make([]string, 0, 8)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	add(norm)
	add(e.cmp.Suffixes.Stem(norm))

	for _, key := range e.keys {
		class := append([]string{key}, e.table[key]...)

		related := false
		for _, member := range class {
			if e.cmp.Related(word, member) {
				related = true
				break
			}
		}
		if !related {
			continue
		}

		for _, member := range class {
			m := textnorm.Normalize(member)
			add(m)
			add(e.cmp.Suffixes.Stem(m))
		}
	}

	return result
}
