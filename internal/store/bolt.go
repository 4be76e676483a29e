package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for the Bolt backend.
var (
	bucketMessages = []byte("notified_messages")
	bucketContent  = []byte("notified_content")
	bucketBlocks   = []byte("blocked_authors")
)

// Bolt is the bbolt-backed dedup/block store for single-file deployments
// that do not want SQLite. Rulesets are not stored here; pair it with
// the file-backed ruleset store.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a Bolt store at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketMessages, bucketContent, bucketBlocks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func messageKey(userID, chatID, messageID int64) []byte {
	key := make([]byte, 24)
	binary.BigEndian.PutUint64(key[0:], uint64(userID))
	binary.BigEndian.PutUint64(key[8:], uint64(chatID))
	binary.BigEndian.PutUint64(key[16:], uint64(messageID))
	return key
}

func userKey(userID int64, rest []byte) []byte {
	key := make([]byte, 8, 8+len(rest))
	binary.BigEndian.PutUint64(key, uint64(userID))
	return append(key, rest...)
}

func timestamp(t time.Time) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(t.Unix()))
	return v
}

// SeenMessage reports whether this exact event was already notified.
func (b *Bolt) SeenMessage(userID, chatID, messageID int64) (bool, error) {
	var seen bool
	err := b.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketMessages).Get(messageKey(userID, chatID, messageID)) != nil
		return nil
	})
	return seen, err
}

// RecordMessage records a sent notification's identity triple.
func (b *Bolt) RecordMessage(userID, chatID, messageID int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMessages).Put(
			messageKey(userID, chatID, messageID), timestamp(time.Now()))
	})
}

// SeenContent reports whether this content hash is on record for the user.
func (b *Bolt) SeenContent(userID int64, hash string) (bool, error) {
	var seen bool
	err := b.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketContent).Get(userKey(userID, []byte(hash))) != nil
		return nil
	})
	return seen, err
}

// RecordContent records a sent notification's content hash.
func (b *Bolt) RecordContent(userID int64, hash string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContent).Put(
			userKey(userID, []byte(hash)), timestamp(time.Now()))
	})
}

// ExpireContent drops content-hash records created before cutoff and
// returns how many were removed.
func (b *Bolt) ExpireContent(cutoff time.Time) (int64, error) {
	limit := uint64(cutoff.Unix())
	var removed int64

	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketContent).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) == 8 && binary.BigEndian.Uint64(v) < limit {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("expire content: %w", err)
	}
	return removed, nil
}

// IsBlocked reports whether the user blocked this author.
func (b *Bolt) IsBlocked(userID, authorID int64) (bool, error) {
	var blocked bool
	err := b.db.View(func(tx *bolt.Tx) error {
		blocked = tx.Bucket(bucketBlocks).Get(blockKey(userID, authorID)) != nil
		return nil
	})
	return blocked, err
}

// Block adds an author to the user's blocklist. Returns false when the
// pair was already blocked.
func (b *Bolt) Block(userID, authorID int64, label string) (bool, error) {
	var added bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketBlocks)
		key := blockKey(userID, authorID)
		if bucket.Get(key) != nil {
			return nil
		}
		added = true
		return bucket.Put(key, append(timestamp(time.Now()), label...))
	})
	return added, err
}

// Unblock removes an author from the user's blocklist.
func (b *Bolt) Unblock(userID, authorID int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlocks).Delete(blockKey(userID, authorID))
	})
}

// Count returns the size of the user's blocklist.
func (b *Bolt) Count(userID int64) (int, error) {
	prefix := userKey(userID, nil)
	var n int

	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketBlocks).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func blockKey(userID, authorID int64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[0:], uint64(userID))
	binary.BigEndian.PutUint64(key[8:], uint64(authorID))
	return key
}
