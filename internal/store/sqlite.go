// Package store provides the concrete persistence backends: SQLite for
// rulesets, dedup records, and blocklists, plus a Bolt alternative for
// the dedup/block side. Both satisfy the interfaces in pkg/dedup and
// pkg/engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/keywatchhq/keywatch/pkg/chat"
)

// DefaultRetention is the content-hash retention window when the caller
// does not configure one.
const DefaultRetention = 24 * time.Hour

// SQLite is the SQLite-backed data store. Thread-safe; writes serialize
// on the mutex, and dedup/block inserts use INSERT OR IGNORE so a
// concurrent duplicate insert is a no-op rather than an error.
type SQLite struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
-- Per-user keyword configuration: one folder name, ordered keywords
CREATE TABLE IF NOT EXISTS rulesets (
    user_id INTEGER PRIMARY KEY,
    folder_name TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS keywords (
    user_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    keyword TEXT NOT NULL,
    PRIMARY KEY (user_id, position)
);

-- Identity dedup: one row per notification actually sent
CREATE TABLE IF NOT EXISTS notified_messages (
    user_id INTEGER NOT NULL,
    chat_id INTEGER NOT NULL,
    message_id INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, chat_id, message_id)
);

-- Content dedup: near-duplicate suppression, expired by age
CREATE TABLE IF NOT EXISTS notified_content (
    user_id INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, content_hash)
);

CREATE INDEX IF NOT EXISTS idx_notified_content_age ON notified_content(created_at);

CREATE TABLE IF NOT EXISTS blocked_authors (
    user_id INTEGER NOT NULL,
    author_id INTEGER NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    blocked_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, author_id)
);
`

// NewSQLite opens (or creates) a store at dsn. Use ":memory:" for tests.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A memory DSN gives every pool connection its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Ruleset store
// =============================================================================

// Rules returns the user's current folder name and ordered keywords.
// A user with no configuration gets an empty ruleset, not an error.
func (s *SQLite) Rules(ctx context.Context, userID int64) (chat.Ruleset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rs chat.Ruleset
	err := s.db.QueryRowContext(ctx,
		`SELECT folder_name FROM rulesets WHERE user_id = ?`, userID,
	).Scan(&rs.Folder)
	if err == sql.ErrNoRows {
		return rs, nil
	}
	if err != nil {
		return rs, fmt.Errorf("load ruleset: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword FROM keywords WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return rs, fmt.Errorf("load keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return rs, fmt.Errorf("scan keyword: %w", err)
		}
		rs.Keywords = append(rs.Keywords, kw)
	}
	return rs, rows.Err()
}

// SetRules replaces the user's folder name and keyword list.
func (s *SQLite) SetRules(userID int64, folder string, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.Exec(`
		INSERT INTO rulesets (user_id, folder_name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET folder_name = excluded.folder_name, updated_at = excluded.updated_at`,
		userID, folder, now); err != nil {
		return fmt.Errorf("upsert ruleset: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM keywords WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	for i, kw := range keywords {
		if _, err := tx.Exec(
			`INSERT INTO keywords (user_id, position, keyword) VALUES (?, ?, ?)`,
			userID, i, kw); err != nil {
			return fmt.Errorf("insert keyword: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// Dedup store
// =============================================================================

// SeenMessage reports whether this exact event was already notified.
func (s *SQLite) SeenMessage(userID, chatID, messageID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM notified_messages WHERE user_id = ? AND chat_id = ? AND message_id = ?`,
		userID, chatID, messageID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// SeenContent reports whether this content hash is still on record for
// the user. Age is handled by ExpireContent, not here.
func (s *SQLite) SeenContent(userID int64, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM notified_content WHERE user_id = ? AND content_hash = ?`,
		userID, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// RecordMessage records a sent notification's identity triple.
func (s *SQLite) RecordMessage(userID, chatID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO notified_messages (user_id, chat_id, message_id, created_at) VALUES (?, ?, ?, ?)`,
		userID, chatID, messageID, time.Now().Unix())
	return err
}

// RecordContent records a sent notification's content hash.
func (s *SQLite) RecordContent(userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO notified_content (user_id, content_hash, created_at) VALUES (?, ?, ?)`,
		userID, hash, time.Now().Unix())
	return err
}

// ExpireContent drops content-hash records created before cutoff and
// returns how many were removed.
func (s *SQLite) ExpireContent(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`DELETE FROM notified_content WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("expire content: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// Block store
// =============================================================================

// IsBlocked reports whether the user blocked this author.
func (s *SQLite) IsBlocked(userID, authorID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM blocked_authors WHERE user_id = ? AND author_id = ?`,
		userID, authorID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Block adds an author to the user's blocklist. Returns false when the
// pair was already blocked.
func (s *SQLite) Block(userID, authorID int64, label string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO blocked_authors (user_id, author_id, label, blocked_at) VALUES (?, ?, ?, ?)`,
		userID, authorID, label, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("block author: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Unblock removes an author from the user's blocklist.
func (s *SQLite) Unblock(userID, authorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`DELETE FROM blocked_authors WHERE user_id = ? AND author_id = ?`,
		userID, authorID)
	return err
}

// Count returns the size of the user's blocklist.
func (s *SQLite) Count(userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM blocked_authors WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
