// Package engine drives one message through the full decision path:
// re-read the user's ruleset, run the gate, compose, deliver, and record
// dedup state only after delivery succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keywatchhq/keywatch/pkg/chat"
	"github.com/keywatchhq/keywatch/pkg/dedup"
	"github.com/keywatchhq/keywatch/pkg/match"
	"github.com/keywatchhq/keywatch/pkg/notify"
)

// RulesetStore returns a user's current keyword rules. It is consulted
// on every message so rule edits take effect without a restart; the
// engine never caches across evaluations.
type RulesetStore interface {
	Rules(ctx context.Context, userID int64) (chat.Ruleset, error)
}

// Engine wires the gate, the ruleset store, and the delivery sink.
// Safe for concurrent use; per-user ordering is the gate's concern.
type Engine struct {
	gate  *dedup.Gate
	rules RulesetStore
	sink  notify.Sink
	log   *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default.
func New(gate *dedup.Gate, rules RulesetStore, sink notify.Sink, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{gate: gate, rules: rules, sink: sink, log: log}
}

// HandleMessage processes one inbound message for one user. Suppressed
// messages are silent; the returned decision says why. A delivery
// failure attributable to the action buttons is retried once with the
// buttons stripped.
func (e *Engine) HandleMessage(ctx context.Context, userID int64, msg chat.Message) (dedup.Decision, error) {
	ruleset, err := e.rules.Rules(ctx, userID)
	if err != nil {
		return dedup.Undecided, fmt.Errorf("load ruleset: %w", err)
	}

	dec, err := e.gate.Run(userID, msg, ruleset.Keywords, func(res match.Result) error {
		return e.deliver(ctx, userID, msg, res)
	})
	if err != nil {
		return dec, err
	}

	e.log.Debug("message processed",
		"user", userID,
		"chat", msg.ChatID,
		"message", msg.MessageID,
		"decision", dec.String(),
	)
	return dec, nil
}

func (e *Engine) deliver(ctx context.Context, userID int64, msg chat.Message, res match.Result) error {
	n := notify.Compose(msg, res)

	err := e.sink.Deliver(ctx, userID, n)
	if err == nil {
		return nil
	}
	if !errors.Is(err, notify.ErrInvalidButtons) || len(n.Actions) == 0 {
		return fmt.Errorf("deliver: %w", err)
	}

	// Bad buttons must not cost the user the notification.
	e.log.Warn("delivery rejected buttons, retrying without",
		"user", userID, "chat", msg.ChatID, "message", msg.MessageID)

	n.Actions = nil
	if err := e.sink.Deliver(ctx, userID, n); err != nil {
		return fmt.Errorf("deliver without buttons: %w", err)
	}
	return nil
}
