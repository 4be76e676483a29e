// Package chat holds the domain types shared between the message source,
// the gate, and the composer.
package chat

// Message is one inbound chat event. Ids are Telegram-shaped int64s;
// SenderID may be zero for anonymous channel posts.
type Message struct {
	ChatID     int64
	MessageID  int64
	SenderID   int64
	SenderName string
	Handle     string
	ChatTitle  string
	Text       string
}

// Ruleset is a user's current keyword configuration. Keywords keep the
// order the user entered them in; evaluation preserves that order in
// match details.
type Ruleset struct {
	Folder   string
	Keywords []string
}
