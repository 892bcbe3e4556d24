// Package explain generates and caches natural-language explanations
// of articles.
package explain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/logging"
	"github.com/abelbrown/newsdesk/internal/store"
	"github.com/abelbrown/newsdesk/internal/textutil"
)

// indexKey holds the set of live explanation keys. The store has no
// key-enumeration primitive, so the cache maintains its own index.
const indexKey = "explain:index"

// keyPrefix namespaces explanation entries in the shared store.
const keyPrefix = "explain:"

// Explanation is the structured payload shown to the reader.
type Explanation struct {
	Summary     string `json:"summary"`
	Why         string `json:"why"`
	Impact      string `json:"impact"`
	Credibility string `json:"credibility"`
}

// cachedEntry is an Explanation at rest, with enough metadata to
// expire it and to tell which URL it belongs to.
type cachedEntry struct {
	Explanation Explanation `json:"explanation"`
	Timestamp   time.Time   `json:"timestamp"`
	URL         string      `json:"url"`
}

// cacheIndex is the persisted key index. A corrupted read is treated
// as an empty index, never a propagated parse error.
type cacheIndex struct {
	Keys        []string  `json:"keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// CacheStats summarizes the live cache contents. OldestAgeDays is only
// meaningful when Count > 0.
type CacheStats struct {
	Count         int
	OldestAgeDays float64
}

// Cache stores explanations in the shared KV store with a TTL.
// Store failures are logged and degrade to cache misses or dropped
// writes; no method returns an error.
type Cache struct {
	kv  *store.KV
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a Cache with the given entry TTL.
func NewCache(kv *store.KV, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Cache{kv: kv, ttl: ttl, now: time.Now}
}

// Key returns the store key for an article's explanation.
func Key(article feeds.Article) string {
	return keyPrefix + textutil.Hash(article.URL)
}

// Get returns the cached explanation for an article, or nil. An entry
// past its TTL is deleted as a side effect of the read.
func (c *Cache) Get(ctx context.Context, article feeds.Article) *Explanation {
	key := Key(article)
	entry, ok := c.readEntry(ctx, key)
	if !ok {
		return nil
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		c.removeKey(ctx, key)
		return nil
	}
	return &entry.Explanation
}

// Set writes an explanation through to the store and records its key
// in the index exactly once.
func (c *Cache) Set(ctx context.Context, article feeds.Article, payload Explanation) {
	key := Key(article)
	entry := cachedEntry{
		Explanation: payload,
		Timestamp:   c.now(),
		URL:         article.URL,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		logging.Error("Explanation encode failed", "url", article.URL, "error", err)
		return
	}
	if err := c.kv.Set(ctx, key, string(data)); err != nil {
		logging.Error("Explanation cache write failed", "key", key, "error", err)
		return
	}

	idx := c.readIndex(ctx)
	for _, k := range idx.Keys {
		if k == key {
			return
		}
	}
	idx.Keys = append(idx.Keys, key)
	c.writeIndex(ctx, idx)
}

// Stats walks the index and reports entry count and the age of the
// oldest live entry.
func (c *Cache) Stats(ctx context.Context) CacheStats {
	idx := c.readIndex(ctx)
	stats := CacheStats{}
	var oldest time.Time

	for _, key := range idx.Keys {
		entry, ok := c.readEntry(ctx, key)
		if !ok {
			continue
		}
		stats.Count++
		if oldest.IsZero() || entry.Timestamp.Before(oldest) {
			oldest = entry.Timestamp
		}
	}
	if stats.Count > 0 {
		stats.OldestAgeDays = c.now().Sub(oldest).Hours() / 24
	}
	return stats
}

// ClearExpired deletes every entry older than the TTL and rewrites the
// index to exactly the surviving keys. Returns the number removed.
func (c *Cache) ClearExpired(ctx context.Context) int {
	idx := c.readIndex(ctx)
	survivors := make([]string, 0, len(idx.Keys))
	removed := 0

	for _, key := range idx.Keys {
		entry, ok := c.readEntry(ctx, key)
		if ok && c.now().Sub(entry.Timestamp) <= c.ttl {
			survivors = append(survivors, key)
			continue
		}
		if err := c.kv.Remove(ctx, key); err != nil {
			logging.Error("Explanation cache delete failed", "key", key, "error", err)
		}
		removed++
	}

	c.writeIndex(ctx, cacheIndex{Keys: survivors, LastCleanup: c.now()})
	logging.Info("Explanation cache cleanup", "removed", removed, "live", len(survivors))
	return removed
}

// ClearAll deletes every indexed entry and the index itself.
func (c *Cache) ClearAll(ctx context.Context) {
	idx := c.readIndex(ctx)
	for _, key := range idx.Keys {
		if err := c.kv.Remove(ctx, key); err != nil {
			logging.Error("Explanation cache delete failed", "key", key, "error", err)
		}
	}
	if err := c.kv.Remove(ctx, indexKey); err != nil {
		logging.Error("Explanation index delete failed", "error", err)
	}
}

func (c *Cache) readEntry(ctx context.Context, key string) (cachedEntry, bool) {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		logging.Error("Explanation cache read failed", "key", key, "error", err)
		return cachedEntry{}, false
	}
	if !ok {
		return cachedEntry{}, false
	}
	var entry cachedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logging.Warn("Explanation entry corrupt, discarding", "key", key, "error", err)
		c.removeKey(ctx, key)
		return cachedEntry{}, false
	}
	return entry, true
}

func (c *Cache) readIndex(ctx context.Context) cacheIndex {
	raw, ok, err := c.kv.Get(ctx, indexKey)
	if err != nil || !ok {
		return cacheIndex{}
	}
	var idx cacheIndex
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		logging.Warn("Explanation index corrupt, resetting", "error", err)
		return cacheIndex{}
	}
	if idx.Keys == nil {
		idx.Keys = []string{}
	}
	return idx
}

func (c *Cache) writeIndex(ctx context.Context, idx cacheIndex) {
	data, err := json.Marshal(idx)
	if err != nil {
		logging.Error("Explanation index encode failed", "error", err)
		return
	}
	if err := c.kv.Set(ctx, indexKey, string(data)); err != nil {
		logging.Error("Explanation index write failed", "error", err)
	}
}

func (c *Cache) removeKey(ctx context.Context, key string) {
	if err := c.kv.Remove(ctx, key); err != nil {
		logging.Error("Explanation cache delete failed", "key", key, "error", err)
	}
}
