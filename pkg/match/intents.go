package match

import (
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/keywatchhq/keywatch/pkg/fuzzy"
	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// intentThreshold is looser than the keyword thresholds: the phrase
// itself already signals intent, the capture only has to resemble a
// target.
const intentThreshold = 0.6

// IntentHit is one pattern-layer match: an intent phrase followed by a
// captured word that resembles a configured target.
type IntentHit struct {
	Phrase  string
	Capture string
	Target  string
}

// IntentSet is a compiled set of intent phrases ("ищу", "need a") plus
// the target words captures are compared against. One Aho-Corasick
// automaton over all phrases, scanned once per message.
type IntentSet struct {
	phrases []string
	targets []string
	ac      *ahocorasick.Automaton
}

// NewIntentSet compiles an intent set. Phrases are normalized before
// compilation so they match the normalized message text.
func NewIntentSet(phrases, targets []string) (*IntentSet, error) {
	norm := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := textnorm.Normalize(p); n != "" {
			norm = append(norm, n)
		}
	}
	if len(norm) == 0 || len(targets) == 0 {
		return &IntentSet{}, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(norm).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}

	normTargets := make([]string, 0, len(targets))
	for _, t := range targets {
		if n := textnorm.Normalize(t); n != "" {
			normTargets = append(normTargets, n)
		}
	}

	return &IntentSet{phrases: norm, targets: normTargets, ac: automaton}, nil
}

// DefaultIntents returns the stock intent set. The defaults are static,
// so a compile failure here is a programming error.
func DefaultIntents() *IntentSet {
	s, err := NewIntentSet(
		[]string{
			"ищу", "ищем", "нужен", "нужна", "нужны", "требуется",
			"посоветуйте", "порекомендуйте", "кто может посоветовать",
			"looking for", "need a", "can anyone recommend",
		},
		[]string{
			"разработчик", "программист", "дизайнер", "маркетолог",
			"копирайтер", "менеджер", "аналитик", "тестировщик",
			"developer", "designer",
		},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Scan finds intent hits in normalized text. The capture is the first
// word after the matched phrase; phrase matches must sit on word
// boundaries so "ищу" does not fire inside "ищущий".
func (s *IntentSet) Scan(normText string, cmp *fuzzy.Comparator) []IntentHit {
	if s == nil || s.ac == nil || normText == "" {
		return nil
	}

	matches := s.ac.FindAllOverlapping([]byte(normText))

	var hits []IntentHit
	seen := make(map[string]bool)

	for _, m := range matches {
		if m.Start > 0 && normText[m.Start-1] != ' ' {
			continue
		}
		if m.End < len(normText) && normText[m.End] != ' ' {
			continue
		}

		capture := firstWord(normText[m.End:])
		if capture == "" {
			continue
		}

		phrase := s.phrases[m.PatternID]
		for _, target := range s.targets {
			if cmp.MatchThreshold(capture, target, intentThreshold) {
				key := phrase + "\x00" + capture + "\x00" + target
				if !seen[key] {
					seen[key] = true
					hits = append(hits, IntentHit{Phrase: phrase, Capture: capture, Target: target})
				}
				break
			}
		}
	}

	return hits
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
