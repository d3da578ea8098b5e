// Package cache provides a persistent transcript cache backed by badger.
//
// Keys are derived from the uploaded audio bytes and the language hint,
// so replaying the same recording never touches the model twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long cached transcripts are kept.
const DefaultTTL = 30 * 24 * time.Hour

// Entry is a cached transcription result.
type Entry struct {
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is a badger-backed key/value store for transcripts.
type Cache struct {
	db *badger.DB
}

// New opens (or creates) a cache at the given directory.
func New(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Key derives a cache key from raw audio bytes and the language hint
// the transcription ran under. A persistent cache may outlive a server
// restart with a different hint, so the hint is part of the identity.
func Key(audio []byte, language string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write(audio)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached entry for key, if present and unexpired.
func (c *Cache) Get(key string) (*Entry, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, false
	}
	return &entry, true
}

// Set stores an entry under key with the given TTL.
func (c *Cache) Set(key string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
