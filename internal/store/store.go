// Package store persists the record of published posts. It is the sole
// source of truth for whether a feed item has already been posted.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record describes one confirmed publication. A record exists iff the main
// post was confirmed live; it is written only after a successful publish.
type Record struct {
	SourceURL      string    `json:"url"`
	Title          string    `json:"title"`
	PostedAt       time.Time `json:"posted_at"`
	StyleTag       string    `json:"variant_used"`
	CommentMissing bool      `json:"comment_missing,omitempty"`
}

// Store is the dedup store contract. Implementations must make Record
// crash-atomic: a crash mid-write may not corrupt existing entries or leave
// a half-written entry readable as valid.
type Store interface {
	Has(fingerprint string) bool
	Record(fingerprint string, rec Record) error
	LoadAll() map[string]Record
	Close() error
}

// Open opens the configured store backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite":
		return OpenSQLite(path)
	default:
		return OpenFile(path)
	}
}

// Fingerprint derives the dedup key from an item's canonical URL. It is
// stable across runs and independent of the item's content, so edits to a
// published article do not trigger a re-post.
func Fingerprint(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}
