package match

import (
	"reflect"
	"testing"

	"github.com/keywatchhq/keywatch/pkg/stem"
	"github.com/keywatchhq/keywatch/pkg/synonym"
)

// newPipeline builds a pipeline without the intent layer so keyword
// verdicts can be asserted in isolation.
func newPipeline() *Pipeline {
	return NewPipeline(stem.DefaultRussian(), synonym.DefaultTable(), nil)
}

func TestExactModeRequiresAdjacency(t *testing.T) {
	p := newPipeline()
	kw := []string{`"Head of Growth"`}

	res := p.Evaluate("We need a Head of Growth now", kw)
	if !res.Matched {
		t.Fatal("expected quoted phrase to match adjacent words")
	}
	if res.Details[0].Type != TypeExactStrict {
		t.Errorf("expected exact-strict, got %s", res.Details[0].Type)
	}

	res = p.Evaluate("Head Growth wanted", kw)
	if res.Matched {
		t.Error("quoted phrase must not match with words out of adjacency")
	}
}

func TestAllRequiredAnyOrder(t *testing.T) {
	p := newPipeline()
	kw := []string{"[head of marketing]"}

	res := p.Evaluate("marketing team is hiring a head of department", kw)
	if !res.Matched {
		t.Fatal("expected all-required match with tokens in any order")
	}
	if res.Details[0].Type != TypeAllRequired {
		t.Errorf("expected all-required, got %s", res.Details[0].Type)
	}

	// Two of three present: no partial credit.
	res = p.Evaluate("we need a head of department", kw)
	if res.Matched {
		t.Error("all-required must fail when one token is absent")
	}
}

func TestSmartStemMatch(t *testing.T) {
	p := newPipeline()

	res := p.Evaluate("Ищем маркетологов в команду", []string{"маркетолог"})
	if !res.Matched {
		t.Fatal("expected stem match on inflected form")
	}
	// Containment wins first here: "маркетологов" contains the phrase.
	if res.Details[0].Type != TypeExact {
		t.Errorf("expected exact (containment), got %s", res.Details[0].Type)
	}

	// Force the stem tier with a form that is not a superstring.
	res = p.Evaluate("Ищем маркетологи в команду", []string{"маркетолога"})
	if !res.Matched {
		t.Fatal("expected stem match")
	}
	if res.Details[0].Type != TypeStem {
		t.Errorf("expected stem, got %s", res.Details[0].Type)
	}
}

func TestSmartSynonymMatch(t *testing.T) {
	p := newPipeline()

	res := p.Evaluate("Возьмём smm специалиста на проект", []string{"маркетолог"})
	if !res.Matched {
		t.Fatal("expected synonym match via the dictionary")
	}
	if res.Details[0].Type != TypeSynonym {
		t.Errorf("expected synonym, got %s", res.Details[0].Type)
	}
	if res.Details[0].Evidence != "smm" {
		t.Errorf("expected evidence smm, got %q", res.Details[0].Evidence)
	}
}

func TestShortKeywordNeverStems(t *testing.T) {
	p := newPipeline()

	// "ищу" is three runes: stem and synonym tiers must not run, and
	// the message does not contain it verbatim.
	res := p.Evaluate("Ищем сотрудника в офис", []string{"ищу"})
	if res.Matched {
		t.Errorf("keyword shorter than four runes must not stem-match: %+v", res.Details)
	}
}

func TestSmartFuzzyWordMatch(t *testing.T) {
	p := newPipeline()

	// One substitution in an 11-rune word, both sides >= 6 runes.
	res := p.Evaluate("Нужен розработчик на проект", []string{"разработчик"})
	if !res.Matched {
		t.Fatal("expected fuzzy match on a typo")
	}
	if res.Details[0].Type != TypeFuzzy {
		t.Errorf("expected fuzzy, got %s", res.Details[0].Type)
	}
}

func TestSmartMultiwordInflected(t *testing.T) {
	p := newPipeline()

	// The full phrase never appears verbatim, but each part resolves
	// through the cascade on inflected message words.
	res := p.Evaluate("Ищем опытного разработчика в штат", []string{"опытный разработчик"})
	if !res.Matched {
		t.Fatal("expected multiword keyword to match")
	}
	if res.Details[0].Type != TypeStem {
		t.Errorf("expected stem, got %s", res.Details[0].Type)
	}
}

func TestSmartNgramMatch(t *testing.T) {
	p := newPipeline()

	// Parts are four runes each, below the fuzzy-word floor, and no
	// single part resolves on its own. Only the bigram comparison
	// against "фул стек" is close enough.
	res := p.Evaluate("ищем фул стек спеца", []string{"фулл стак"})
	if !res.Matched {
		t.Fatal("expected n-gram match")
	}
	if res.Details[0].Type != TypeNgram {
		t.Errorf("expected ngram, got %s", res.Details[0].Type)
	}
}

func TestNoDuplicateKeywords(t *testing.T) {
	p := newPipeline()

	// Stem and synonym tiers would both accept; first success wins and
	// the keyword appears exactly once.
	res := p.Evaluate("маркетологов и smm ждём", []string{"маркетолог", "маркетолог"})
	if len(res.Keywords) != 1 {
		t.Errorf("expected one matched keyword, got %v", res.Keywords)
	}
	if len(res.Details) != 1 {
		t.Errorf("expected one detail, got %d", len(res.Details))
	}
}

func TestEvaluateTotalOnDegenerateInput(t *testing.T) {
	p := newPipeline()

	if res := p.Evaluate("", []string{"ключ"}); res.Matched {
		t.Error("empty text must not match")
	}
	if res := p.Evaluate("   \n\t", []string{"ключ"}); res.Matched {
		t.Error("whitespace text must not match")
	}
	if res := p.Evaluate("обычное сообщение", nil); res.Matched {
		t.Error("empty ruleset must not match")
	}
	if res := p.Evaluate("обычное сообщение", []string{"", "  "}); res.Matched {
		t.Error("blank keywords must not match")
	}
}

func TestEndToEndRuleset(t *testing.T) {
	p := newPipeline()

	res := p.Evaluate(
		"Ищу фронтенд разработчика на проект",
		[]string{"фронтенд", "[опытный разработчик]", `"срочно нужен"`},
	)
	if !res.Matched {
		t.Fatal("expected a match")
	}
	if !reflect.DeepEqual(res.Keywords, []string{"фронтенд"}) {
		t.Errorf("matched keywords = %v, want [фронтенд]", res.Keywords)
	}
	if res.Details[0].Type != TypeExact {
		t.Errorf("expected exact, got %s", res.Details[0].Type)
	}
}

func TestIntentLayerIndependent(t *testing.T) {
	p := NewPipeline(stem.DefaultRussian(), synonym.DefaultTable(), DefaultIntents())

	// No keyword matches, but the intent phrase plus capture does.
	res := p.Evaluate("Ищу дизайнера на проект", []string{"бухгалтер"})
	if !res.Matched {
		t.Fatal("expected intent layer to mark the message matched")
	}
	if len(res.Keywords) != 0 {
		t.Errorf("keyword layer should be empty, got %v", res.Keywords)
	}
	if len(res.Intents) == 0 {
		t.Fatal("expected intent hits")
	}
	hit := res.Intents[0]
	if hit.Phrase != "ищу" || hit.Capture != "дизайнера" {
		t.Errorf("unexpected intent hit %+v", hit)
	}
}

func TestIntentBoundary(t *testing.T) {
	s := DefaultIntents()
	p := NewPipeline(stem.DefaultRussian(), synonym.DefaultTable(), s)

	// "ищущий" contains "ищу" but not on a word boundary.
	res := p.Evaluate("ищущий себя человек дизайнер", nil)
	if len(res.Intents) != 0 {
		t.Errorf("intent phrase must respect word boundaries: %+v", res.Intents)
	}
}
