package notify

import (
	"strings"
	"testing"

	"github.com/keywatchhq/keywatch/pkg/chat"
	"github.com/keywatchhq/keywatch/pkg/match"
)

func TestEscapeMarkup(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"*bold* _it_", `\*bold\* \_it\_`},
		{"[link]", `\[link\]`},
		{"`code`", "\\`code\\`"},
		{`back\slash`, `back\\slash`},
		{`\*`, `\\\*`},
	}
	for _, tc := range cases {
		if got := EscapeMarkup(tc.in); got != tc.want {
			t.Errorf("EscapeMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("короткий", 500); got != "короткий" {
		t.Errorf("short text must pass through, got %q", got)
	}

	long := strings.Repeat("я", 501)
	got := Truncate(long, 500)
	if want := strings.Repeat("я", 500) + "…"; got != want {
		t.Errorf("truncated length = %d runes", len([]rune(got)))
	}

	// Boundary: exactly n runes, no ellipsis.
	exact := strings.Repeat("ж", 500)
	if got := Truncate(exact, 500); got != exact {
		t.Error("text of exactly n runes must not be cut")
	}
}

func TestMessageLink(t *testing.T) {
	cases := []struct {
		chatID    int64
		messageID int64
		want      string
	}{
		{-1001234567890, 42, "https://t.me/c/1234567890/42"},
		{-100555, 9, "https://t.me/c/555/9"},
		// Basic groups and direct chats have no public message path.
		{-987654, 7, ""},
		{555, 1, ""},
	}
	for _, tc := range cases {
		if got := MessageLink(tc.chatID, tc.messageID); got != tc.want {
			t.Errorf("MessageLink(%d, %d) = %q, want %q", tc.chatID, tc.messageID, got, tc.want)
		}
	}
}

func TestCompose(t *testing.T) {
	msg := chat.Message{
		ChatID:     -1001234567890,
		MessageID:  42,
		SenderID:   777,
		SenderName: "Анна",
		Handle:     "anna_hr",
		ChatTitle:  "Вакансии *IT*",
		Text:       "Ищем маркетолога в стартап",
	}
	res := match.Result{
		Matched:  true,
		Keywords: []string{"маркетолог"},
		Details: []match.Detail{
			{Keyword: "маркетолог", Type: match.TypeStem, Evidence: "маркетолога"},
		},
	}

	n := Compose(msg, res)

	for _, want := range []string{
		"Найдено совпадение",
		`От: Анна (@anna\_hr, id 777)`,
		`Чат: Вакансии \*IT\*`,
		"Ищем маркетолога в стартап",
		"https://t.me/c/1234567890/42",
		"Совпадения:",
		`"маркетолог" (stem)`,
	} {
		if !strings.Contains(n.Text, want) {
			t.Errorf("notification missing %q:\n%s", want, n.Text)
		}
	}

	if len(n.Actions) != 2 {
		t.Fatalf("expected two actions, got %d", len(n.Actions))
	}
	if n.Actions[0].URL != "tg://user?id=777" {
		t.Errorf("contact action URL = %q", n.Actions[0].URL)
	}
	if n.Actions[1].Data != "block:777" {
		t.Errorf("block action data = %q", n.Actions[1].Data)
	}
}

func TestComposeAnonymousSender(t *testing.T) {
	msg := chat.Message{
		ChatID:    -100555,
		MessageID: 9,
		Text:      "текст без автора",
	}
	res := match.Result{Matched: true}

	n := Compose(msg, res)

	if !strings.Contains(n.Text, "От: аноним") {
		t.Errorf("expected anonymous sender line:\n%s", n.Text)
	}
	if n.Actions != nil {
		t.Error("anonymous senders must get no action buttons")
	}
}

func TestComposeEscapesBody(t *testing.T) {
	msg := chat.Message{
		ChatID:    -100555,
		MessageID: 1,
		SenderID:  2,
		Text:      "смотрите *здесь* [срочно]",
	}
	n := Compose(msg, match.Result{Matched: true})

	if !strings.Contains(n.Text, `\*здесь\* \[срочно\]`) {
		t.Errorf("body must be escaped:\n%s", n.Text)
	}
}

func TestComposeOmitsLinkForBasicGroups(t *testing.T) {
	msg := chat.Message{
		ChatID:    -987654,
		MessageID: 1,
		SenderID:  2,
		Text:      "сообщение из обычной группы",
	}
	n := Compose(msg, match.Result{Matched: true})

	if strings.Contains(n.Text, "t.me/c/") {
		t.Errorf("basic groups must get no deep link:\n%s", n.Text)
	}
}

func TestComposeIntentSection(t *testing.T) {
	msg := chat.Message{ChatID: -100555, MessageID: 3, SenderID: 4, Text: "ищу дизайнера"}
	res := match.Result{
		Matched: true,
		Intents: []match.IntentHit{
			{Phrase: "ищу", Capture: "дизайнера", Target: "дизайнер"},
		},
	}

	n := Compose(msg, res)
	if !strings.Contains(n.Text, "Запросы:") {
		t.Errorf("expected intent section:\n%s", n.Text)
	}
	if !strings.Contains(n.Text, "ищу дизайнера") {
		t.Errorf("expected intent hit line:\n%s", n.Text)
	}
}

func TestComposeOmitsEmptySections(t *testing.T) {
	msg := chat.Message{ChatID: -100555, MessageID: 5, SenderID: 6, Text: "текст"}
	n := Compose(msg, match.Result{Matched: true})

	if strings.Contains(n.Text, "Совпадения:") {
		t.Error("details section must be omitted when empty")
	}
	if strings.Contains(n.Text, "Запросы:") {
		t.Error("intent section must be omitted when empty")
	}
	if strings.Contains(n.Text, "Чат:") {
		t.Error("chat line must be omitted without a title")
	}
}
