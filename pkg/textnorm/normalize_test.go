package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalizeBasics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Привет, мир!", "привет мир"},
		{"Head of Growth", "head of growth"},
		{"Ёжик — в тумане...", "ежик в тумане"},
		{"много    пробелов\t\nи переносов", "много пробелов и переносов"},
		{"e-mail: test@example.com", "e mail test example com"},
		{"snake_case остаётся", "snake_case остается"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRestrictsCharset(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"кот 猫 cat", "кот cat"},
		{"δλ greek λόγος", "greek"},
		{"مرحبا привет", "привет"},
		{"résumé and кафе", "résumé and кафе"},
		{"１２３ 123", "123"},
		{"emoji 🔔 bell", "emoji bell"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Ищу Фронтенд-Разработчика!!!",
		"ALL CAPS and ёё",
		"mixed Кириллица and latin 123",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestWordsDropsSingleRunes(t *testing.T) {
	got := Words("я и ты: на проект")
	want := []string{"ты", "на", "проект"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}

func TestTokenizeDropsRussianStopWords(t *testing.T) {
	got := Tokenize("Ищу фронтенд разработчика на проект")
	for _, w := range got {
		if w == "на" {
			t.Errorf("Tokenize kept stop word %q in %v", w, got)
		}
	}
	if !containsWord(got, "фронтенд") || !containsWord(got, "разработчика") {
		t.Errorf("Tokenize dropped content words: %v", got)
	}
}

func TestTokenizeKeepsEnglishFunctionWords(t *testing.T) {
	// Keyword phrases like "head of growth" depend on "of" surviving.
	got := Tokenize("we need a head of marketing")
	if !containsWord(got, "of") {
		t.Errorf("Tokenize dropped %q: %v", "of", got)
	}
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
