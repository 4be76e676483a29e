// Package rule classifies raw keyword strings into matching modes.
// Parsing is pure and total: every input maps to exactly one mode.
package rule

import (
	"strings"

	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// Mode controls which matching strategies apply to a keyword.
type Mode int

const (
	// Smart runs the full strategy cascade (containment, stem, synonym,
	// fuzzy, n-gram).
	Smart Mode = iota
	// Exact requires the quoted phrase verbatim (after normalization).
	Exact
	// AllRequired requires every bracketed word, any order, any position.
	AllRequired
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case AllRequired:
		return "all-required"
	default:
		return "smart"
	}
}

// Rule is a parsed keyword. Immutable once built.
type Rule struct {
	Raw    string
	Mode   Mode
	Phrase string   // wrapping characters stripped, whitespace trimmed
	Parts  []string // normalized words of Phrase, >1 rune each
}

// quotePairs are the recognized exact-mode wrappers. Only the first/last
// rune pairing is inspected; inner quotes are left alone.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'«', '»'},
	{'\'', '\''},
}

// Parse classifies a raw keyword string.
func Parse(raw string) Rule {
	trimmed := strings.TrimSpace(raw)
	runes := []rune(trimmed)

	mode := Smart
	phrase := trimmed

	if len(runes) >= 2 {
		first, last := runes[0], runes[len(runes)-1]

		for _, pair := range quotePairs {
			if first == pair[0] && last == pair[1] {
				mode = Exact
				phrase = strings.TrimSpace(string(runes[1 : len(runes)-1]))
				break
			}
		}

		if mode == Smart && first == '[' && last == ']' {
			mode = AllRequired
			phrase = strings.TrimSpace(string(runes[1 : len(runes)-1]))
		}
	}

	return Rule{
		Raw:    raw,
		Mode:   mode,
		Phrase: phrase,
		Parts:  textnorm.Words(phrase),
	}
}
