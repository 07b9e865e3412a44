package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores finished translations keyed by source text and target language.
type Cache interface {
	Get(ctx context.Context, text, lang string) (string, bool, error)
	Put(ctx context.Context, text, lang, translated string) error
}

// sourceHash keys a translation by the SHA-256 of its source text.
func sourceHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type lruKey struct {
	hash string
	lang string
}

// LRU is an in-process translation cache bounded by entry count.
type LRU struct {
	entries *lru.Cache[lruKey, string]
}

// NewLRU returns an LRU holding at most size entries; size <= 0 selects 1024.
func NewLRU(size int) *LRU {
	if size <= 0 {
		size = 1024
	}
	// lru.New only fails on a non-positive size.
	entries, _ := lru.New[lruKey, string](size)
	return &LRU{entries: entries}
}

// Get returns a cached translation and marks it recently used.
func (c *LRU) Get(_ context.Context, text, lang string) (string, bool, error) {
	v, ok := c.entries.Get(lruKey{hash: sourceHash(text), lang: lang})
	return v, ok, nil
}

// Put stores a translation, evicting the least recently used entry when full.
func (c *LRU) Put(_ context.Context, text, lang, translated string) error {
	c.entries.Add(lruKey{hash: sourceHash(text), lang: lang}, translated)
	return nil
}

// Len reports the number of cached entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}
