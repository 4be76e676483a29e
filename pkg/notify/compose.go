// Package notify renders the outbound alert for a matched message.
// Composition is pure: all delivery happens behind the Sink interface.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidButtons is returned by sinks when delivery failed because of
// the attached action buttons. The caller retries once with buttons
// stripped instead of losing the notification.
var ErrInvalidButtons = errors.New("notify: invalid action buttons")

// maxBodyRunes caps the quoted message body.
const maxBodyRunes = 500

// ellipsis marks a truncated body.
const ellipsis = "…"

// Action is a structured button attached to a notification. Either URL
// or Data is set, never both.
type Action struct {
	Label string
	URL   string
	Data  string
}

// Notification is the composed outbound alert.
type Notification struct {
	Text    string
	Actions []Action
}

// Sink delivers notifications. Implementations live outside the core.
type Sink interface {
	Deliver(ctx context.Context, userID int64, n Notification) error
}

// markupEscaper covers the characters the lightweight markup renderer
// treats specially.
var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

// EscapeMarkup neutralizes markup control characters in user text.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// Truncate limits s to n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}

// MessageLink builds a deep link to the original message. Only
// supergroups and channels (the -100 chat id prefix) have a t.me/c
// message path; other chats return "" and the composer drops the line.
func MessageLink(chatID, messageID int64) string {
	id := strconv.FormatInt(chatID, 10)
	rest, ok := strings.CutPrefix(id, "-100")
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", rest, messageID)
}
