// Package dedup gates notifications behind blocklist and duplicate
// suppression. The gate is the only stateful stage of the engine: it
// reads and conditionally writes per-user store records, so the
// check-then-insert sequence is serialized per user.
package dedup

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/keywatchhq/keywatch/pkg/chat"
	"github.com/keywatchhq/keywatch/pkg/match"
	"github.com/keywatchhq/keywatch/pkg/textnorm"
)

// DedupStore records which notifications were already sent.
// Implementations must make Record* calls atomic conditional inserts
// (recording an existing key is a no-op, not an error).
type DedupStore interface {
	SeenMessage(userID, chatID, messageID int64) (bool, error)
	SeenContent(userID int64, hash string) (bool, error)
	RecordMessage(userID, chatID, messageID int64) error
	RecordContent(userID int64, hash string) error
}

// BlockStore tracks authors a user never wants notifications about.
type BlockStore interface {
	IsBlocked(userID, authorID int64) (bool, error)
	Block(userID, authorID int64, label string) (bool, error)
	Count(userID int64) (int, error)
}

// Matcher is the evaluation step the gate runs once per surviving
// message. *match.Pipeline satisfies it.
type Matcher interface {
	Evaluate(text string, keywords []string) match.Result
}

// Decision is the gate's verdict for one message.
type Decision int

// Undecided accompanies a non-nil error: the gate reached no verdict and
// the caller should treat the message as not yet processed.
const Undecided Decision = -1

const (
	Notify        Decision = iota // compose and deliver
	DropEmpty                     // empty or whitespace-only text
	DropBlocked                   // author on the user's blocklist
	DropSeen                      // (user, chat, message) already notified
	DropUnmatched                 // no keyword or intent matched
	DropRepeat                    // same content already notified recently
)

func (d Decision) String() string {
	switch d {
	case Undecided:
		return "undecided"
	case Notify:
		return "notify"
	case DropEmpty:
		return "drop-empty"
	case DropBlocked:
		return "drop-blocked"
	case DropSeen:
		return "drop-seen"
	case DropUnmatched:
		return "drop-unmatched"
	case DropRepeat:
		return "drop-repeat"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ContentHash digests normalized message text: first 128 bits of BLAKE3,
// hex-encoded. Identity-independent, so forwards and reposts of the same
// text collide by construction.
func ContentHash(text string) string {
	sum := blake3.Sum256([]byte(textnorm.Normalize(text)))
	return hex.EncodeToString(sum[:16])
}

// Gate wires the matcher and the stores into the suppression sequence.
type Gate struct {
	matcher Matcher
	dedup   DedupStore
	blocks  BlockStore

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewGate creates a gate. All three collaborators are required.
func NewGate(m Matcher, d DedupStore, b BlockStore) *Gate {
	return &Gate{
		matcher: m,
		dedup:   d,
		blocks:  b,
		users:   make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing one user's evaluations.
// Different users never contend.
func (g *Gate) userLock(userID int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	mu, ok := g.users[userID]
	if !ok {
		mu = &sync.Mutex{}
		g.users[userID] = mu
	}
	return mu
}

// Check runs the suppression sequence for one message. The first step
// that suppresses is final. A store error yields Undecided. Callers
// using Check directly must serialize Check+Confirm per user themselves;
// Run does both under the user lock.
func (g *Gate) Check(userID int64, msg chat.Message, keywords []string) (Decision, match.Result, error) {
	var res match.Result

	// 1. Nothing to match
	if strings.TrimSpace(msg.Text) == "" {
		return DropEmpty, res, nil
	}

	// 2. Blocked author: no match evaluation at all
	if msg.SenderID != 0 {
		blocked, err := g.blocks.IsBlocked(userID, msg.SenderID)
		if err != nil {
			return Undecided, res, fmt.Errorf("block lookup: %w", err)
		}
		if blocked {
			return DropBlocked, res, nil
		}
	}

	// 3. Identity dedup: guards against replays of the same event
	seen, err := g.dedup.SeenMessage(userID, msg.ChatID, msg.MessageID)
	if err != nil {
		return Undecided, res, fmt.Errorf("message dedup lookup: %w", err)
	}
	if seen {
		return DropSeen, res, nil
	}

	// 4. Match evaluation
	res = g.matcher.Evaluate(msg.Text, keywords)
	if !res.Matched {
		return DropUnmatched, res, nil
	}

	// 5. Content dedup: guards against reposts across chats
	repeat, err := g.dedup.SeenContent(userID, ContentHash(msg.Text))
	if err != nil {
		return Undecided, res, fmt.Errorf("content dedup lookup: %w", err)
	}
	if repeat {
		return DropRepeat, res, nil
	}

	return Notify, res, nil
}

// Confirm records both dedup keys for a message. Call only after the
// notification was actually delivered, so a failed delivery stays
// retryable.
func (g *Gate) Confirm(userID int64, msg chat.Message) error {
	if err := g.dedup.RecordMessage(userID, msg.ChatID, msg.MessageID); err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	if err := g.dedup.RecordContent(userID, ContentHash(msg.Text)); err != nil {
		return fmt.Errorf("record content: %w", err)
	}
	return nil
}

// Run executes check -> send -> confirm under the per-user lock, so two
// near-simultaneous duplicates cannot both pass the dedup check. send is
// invoked only on a Notify decision; dedup keys are recorded only when
// send returns nil.
func (g *Gate) Run(userID int64, msg chat.Message, keywords []string, send func(match.Result) error) (Decision, error) {
	mu := g.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	dec, res, err := g.Check(userID, msg, keywords)
	if err != nil || dec != Notify {
		return dec, err
	}

	if err := send(res); err != nil {
		return Notify, err
	}
	return Notify, g.Confirm(userID, msg)
}
