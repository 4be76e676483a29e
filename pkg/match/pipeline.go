// Package match decides whether a message triggers a keyword ruleset.
// It orchestrates normalization, stemming, synonym expansion, fuzzy
// comparison, and n-gram extraction into a first-success-wins cascade
// per rule, plus an independent intent-pattern layer.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/keywatchhq/keywatch/pkg/fuzzy"
	"github.com/keywatchhq/keywatch/pkg/ngram"
	"github.com/keywatchhq/keywatch/pkg/rule"
	"github.com/keywatchhq/keywatch/pkg/stem"
	"github.com/keywatchhq/keywatch/pkg/synonym"
	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// Strategy length floors and similarity thresholds. Short words produce
// too many accidental stem/fuzzy hits, hence the floors.
const (
	minStemLen      = 4
	minFuzzyWordLen = 6

	fuzzyWordThreshold = 0.8
	ngramThreshold     = 0.75
)

// Type names the strategy that matched a keyword.
type Type string

const (
	TypeExact       Type = "exact"        // smart-mode phrase containment
	TypeExactStrict Type = "exact-strict" // quoted phrase containment
	TypeStem        Type = "stem"
	TypeSynonym     Type = "synonym"
	TypeFuzzy       Type = "fuzzy"
	TypeNgram       Type = "ngram"
	TypeAllRequired Type = "all-required"
)

// Detail records which strategy matched one keyword and on what evidence.
type Detail struct {
	Keyword  string
	Type     Type
	Evidence string
}

// Result is the verdict for one (message, ruleset) evaluation.
// Keywords holds each matched raw keyword exactly once, in ruleset order.
type Result struct {
	Matched  bool
	Keywords []string
	Details  []Detail
	Intents  []IntentHit
}

// Pipeline evaluates keyword rules against messages. All state is
// read-only configuration, so one pipeline serves any number of
// goroutines.
type Pipeline struct {
	cmp      *fuzzy.Comparator
	expander *synonym.Expander
	intents  *IntentSet
}

// NewPipeline wires a pipeline from its configuration tables.
// intents may be nil to disable the pattern layer.
func NewPipeline(suffixes stem.SuffixTable, synonyms synonym.Table, intents *IntentSet) *Pipeline {
	cmp := fuzzy.New(suffixes)
	return &Pipeline{
		cmp:      cmp,
		expander: synonym.NewExpander(synonyms, cmp),
		intents:  intents,
	}
}

// message is the per-evaluation view of one text: derived once, shared
// read-only across all rules. stems is parallel to words.
type message struct {
	text  string
	words []string
	stems []string
}

func (p *Pipeline) derive(text string) message {
	words := textnorm.Tokenize(text)
	stems := make([]string, len(words))
	for i, w := range words {
		stems[i] = p.cmp.Suffixes.Stem(w)
	}
	return message{
		text:  textnorm.Normalize(text),
		words: words,
		stems: stems,
	}
}

// Evaluate runs every keyword against one message. Total for any input:
// empty text or an empty ruleset yields an unmatched result.
func (p *Pipeline) Evaluate(text string, keywords []string) Result {
	var res Result

	m := p.derive(text)
	if m.text == "" {
		return res
	}

	seen := make(map[string]bool, len(keywords))
	for _, raw := range keywords {
		if strings.TrimSpace(raw) == "" || seen[raw] {
			continue
		}
		seen[raw] = true

		r := rule.Parse(raw)
		if d, ok := p.evalRule(r, m); ok {
			res.Keywords = append(res.Keywords, raw)
			res.Details = append(res.Details, d)
		}
	}

	if p.intents != nil {
		res.Intents = p.intents.Scan(m.text, p.cmp)
	}

	res.Matched = len(res.Keywords) > 0 || len(res.Intents) > 0
	return res
}

func (p *Pipeline) evalRule(r rule.Rule, m message) (Detail, bool) {
	switch r.Mode {
	case rule.Exact:
		phrase := textnorm.Normalize(r.Phrase)
		if phrase != "" && strings.Contains(m.text, phrase) {
			return Detail{Keyword: r.Raw, Type: TypeExactStrict, Evidence: phrase}, true
		}
		return Detail{}, false
	case rule.AllRequired:
		return p.evalAllRequired(r, m)
	default:
		return p.evalSmart(r, m)
	}
}

// evalAllRequired succeeds only when every part resolves. No partial
// credit: one missing part fails the whole rule.
func (p *Pipeline) evalAllRequired(r rule.Rule, m message) (Detail, bool) {
	if len(r.Parts) == 0 {
		return Detail{}, false
	}

	pieces := make([]string, 0, len(r.Parts))
	for _, part := range r.Parts {
		kind, _, ok := p.resolveWord(part, m)
		if !ok {
			return Detail{}, false
		}
		pieces = append(pieces, part+"="+string(kind))
	}

	return Detail{Keyword: r.Raw, Type: TypeAllRequired, Evidence: strings.Join(pieces, " ")}, true
}

// resolveWord finds one required part among the message tokens:
// exact token, then exact stem, then synonym stem.
func (p *Pipeline) resolveWord(part string, m message) (Type, string, bool) {
	for _, w := range m.words {
		if w == part {
			return TypeExact, w, true
		}
	}

	ps := p.cmp.Suffixes.Stem(part)
	if utf8.RuneCountInString(ps) >= minStemLen {
		for i, ts := range m.stems {
			if ts == ps {
				return TypeStem, m.words[i], true
			}
		}
	}

	if utf8.RuneCountInString(part) >= minStemLen {
		for _, cand := range p.expander.Expand(part) {
			cs, ok := p.candidateStem(cand)
			if !ok {
				continue
			}
			for i, ts := range m.stems {
				if ts == cs {
					return TypeSynonym, m.words[i], true
				}
			}
		}
	}

	return "", "", false
}

// candidateStem stems a synonym candidate, rejecting candidates whose
// stemming collapsed below the useful floor. Words already shorter than
// the floor are kept as-is: they are too short to stem, not over-stemmed.
func (p *Pipeline) candidateStem(cand string) (string, bool) {
	cs := p.cmp.Suffixes.Stem(cand)
	if utf8.RuneCountInString(cand) >= minStemLen && utf8.RuneCountInString(cs) < minStemLen {
		return "", false
	}
	return cs, true
}

// evalSmart tries the cascade in fixed order, first success wins.
func (p *Pipeline) evalSmart(r rule.Rule, m message) (Detail, bool) {
	// a. Phrase containment
	phrase := textnorm.Normalize(r.Phrase)
	if phrase != "" && strings.Contains(m.text, phrase) {
		return Detail{Keyword: r.Raw, Type: TypeExact, Evidence: phrase}, true
	}

	// b. Stem match: exact stem equality, never substring
	for _, part := range r.Parts {
		if utf8.RuneCountInString(part) < minStemLen {
			continue
		}
		ps := p.cmp.Suffixes.Stem(part)
		if utf8.RuneCountInString(ps) < minStemLen {
			continue
		}
		for i, ts := range m.stems {
			if ts == ps {
				return Detail{Keyword: r.Raw, Type: TypeStem, Evidence: m.words[i]}, true
			}
		}
	}

	// c. Synonym match
	for _, part := range r.Parts {
		if utf8.RuneCountInString(part) < minStemLen {
			continue
		}
		for _, cand := range p.expander.Expand(part) {
			cs, ok := p.candidateStem(cand)
			if !ok {
				continue
			}
			for i, ts := range m.stems {
				if ts == cs {
					return Detail{Keyword: r.Raw, Type: TypeSynonym, Evidence: m.words[i]}, true
				}
			}
		}
	}

	// d. Fuzzy word match
	for _, part := range r.Parts {
		if utf8.RuneCountInString(part) < minFuzzyWordLen {
			continue
		}
		for _, w := range m.words {
			if utf8.RuneCountInString(w) < minFuzzyWordLen {
				continue
			}
			if p.cmp.MatchThreshold(part, w, fuzzyWordThreshold) {
				return Detail{Keyword: r.Raw, Type: TypeFuzzy, Evidence: w}, true
			}
		}
	}

	// e. N-gram match for multiword keywords
	if len(r.Parts) > 1 {
		joined := strings.Join(r.Parts, " ")
		for _, gram := range ngram.Generate(m.text, len(r.Parts)) {
			if p.cmp.MatchThreshold(gram, joined, ngramThreshold) {
				return Detail{Keyword: r.Raw, Type: TypeNgram, Evidence: gram}, true
			}
		}
	}

	return Detail{}, false
}
