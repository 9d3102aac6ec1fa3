// Package cache holds the response cache used by the resilient request core.
// Entries are never removed on expiry: freshness is decided by the reader, and a
// stale entry stays readable as a fallback value.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when no entry exists for a key.
var ErrNotFound = errors.New("cache: entry not found")

// Entry is one cached, already transformed response.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Age returns how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Stale reports whether the entry is older than its TTL. An entry exactly TTL old is still fresh.
func (e *Entry) Stale(now time.Time) bool {
	return e.Age(now) > e.TTL
}

// Store is the key-value contract the request core depends on.
// Concurrent writes to the same key are last-writer-wins.
type Store interface {
	// Get returns the entry for key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put creates or overwrites the entry under entry.Key.
	Put(ctx context.Context, entry *Entry) error
}
