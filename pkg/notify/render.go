package notify

import (
	"fmt"
	"strings"

	"github.com/keywatchhq/keywatch/pkg/chat"
	"github.com/keywatchhq/keywatch/pkg/match"
)

// Compose builds the full notification for a matched message: header,
// sender line, quoted body, deep link, and one line per match detail.
// User-controlled fields are escaped for the markup renderer.
func Compose(msg chat.Message, res match.Result) Notification {
	var b strings.Builder

	b.WriteString("🔔 *Найдено совпадение*\n\n")

	b.WriteString("От: ")
	b.WriteString(EscapeMarkup(senderLine(msg)))
	b.WriteByte('\n')

	if msg.ChatTitle != "" {
		b.WriteString("Чат: ")
		b.WriteString(EscapeMarkup(msg.ChatTitle))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(EscapeMarkup(Truncate(msg.Text, maxBodyRunes)))
	b.WriteString("\n\n")

	if link := MessageLink(msg.ChatID, msg.MessageID); link != "" {
		b.WriteString(link)
		b.WriteByte('\n')
	}

	if len(res.Details) > 0 {
		b.WriteString("\nСовпадения:\n")
		for _, d := range res.Details {
			fmt.Fprintf(&b, "• \"%s\" (%s) — %s\n",
				EscapeMarkup(d.Keyword), d.Type, EscapeMarkup(d.Evidence))
		}
	}

	if len(res.Intents) > 0 {
		b.WriteString("\nЗапросы:\n")
		for _, hit := range res.Intents {
			fmt.Fprintf(&b, "• \"%s %s\" → %s\n",
				EscapeMarkup(hit.Phrase), EscapeMarkup(hit.Capture), EscapeMarkup(hit.Target))
		}
	}

	return Notification{
		Text:    b.String(),
		Actions: actions(msg),
	}
}

// senderLine formats "Name (@handle, id 42)" with the optional pieces
// dropped when absent.
func senderLine(msg chat.Message) string {
	name := msg.SenderName
	if name == "" {
		name = "аноним"
	}

	extras := make([]string, 0, 2)
	if msg.Handle != "" {
		extras = append(extras, "@"+strings.TrimPrefix(msg.Handle, "@"))
	}
	if msg.SenderID != 0 {
		extras = append(extras, fmt.Sprintf("id %d", msg.SenderID))
	}

	if len(extras) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(extras, ", "))
}

// actions returns the standard button pair. Anonymous senders get no
// buttons: both target the author id.
func actions(msg chat.Message) []Action {
	if msg.SenderID == 0 {
		return nil
	}
	return []Action{
		{Label: "Написать автору", URL: fmt.Sprintf("tg://user?id=%d", msg.SenderID)},
		{Label: "Заблокировать", Data: fmt.Sprintf("block:%d", msg.SenderID)},
	}
}
