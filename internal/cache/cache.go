package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
)

// Entry is a single cached value with its write timestamp.
type Entry struct {
	Key       string          `json:"key"`
	Category  Category        `json:"category"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Age returns the entry age relative to now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Decode unmarshals the entry payload into v.
func (e *Entry) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload for %s: %w", e.Category, e.Key, err)
	}
	return nil
}

// Store is the persistence backend behind the tiered cache. Implementations
// must isolate categories from one another: a corrupt or unavailable
// category must not affect reads or writes in any other category.
type Store interface {
	// Ensure prepares storage for a category. Called once per category at
	// process start.
	Ensure(category Category) error

	// Read returns the stored entry for (category, key), or ErrNotFound.
	Read(ctx context.Context, category Category, key string) (*Entry, error)

	// Write persists an entry, unconditionally overwriting any prior entry
	// for the same (category, key). The write must be durable before the
	// call returns.
	Write(ctx context.Context, entry *Entry) error

	// Close releases backend resources.
	Close() error
}

// Cache is the tiered age-bounded cache. Reads check entry age against the
// category TTL synchronously; writes overwrite wholesale. There is no
// eviction beyond TTL, no size bound, and no locking: concurrent writers to
// the same key race and the last completed write wins, which is acceptable
// under the low, human-triggered write concurrency this system sees.
type Cache struct {
	store  Store
	logger arbor.ILogger
	now    func() time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithClock overrides the cache's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a tiered cache over the given store and prepares every
// category partition.
func New(store Store, logger arbor.ILogger, opts ...Option) (*Cache, error) {
	c := &Cache{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, category := range Categories() {
		if err := store.Ensure(category); err != nil {
			return nil, fmt.Errorf("failed to prepare cache category %s: %w", category, err)
		}
	}

	return c, nil
}

// Get returns the entry for (category, key) if it exists and its age is
// within the category TTL. Absence, staleness, and read errors (including a
// corrupt stored payload) are all misses: the second return is false and the
// caller proceeds as though nothing were cached. Read errors are logged,
// never propagated.
func (c *Cache) Get(ctx context.Context, category Category, key string) (*Entry, bool) {
	entry, err := c.store.Read(ctx, category, key)
	if err != nil {
		if err != ErrNotFound {
			c.logger.Warn().
				Err(err).
				Str("category", string(category)).
				Str("key", key).
				Msg("Cache read failed, treating as miss")
		}
		return nil, false
	}

	age := entry.Age(c.now())
	if age > TTL(category) {
		c.logger.Debug().
			Str("category", string(category)).
			Str("key", key).
			Dur("age", age).
			Dur("ttl", TTL(category)).
			Msg("Cache entry expired")
		return nil, false
	}

	c.logger.Debug().
		Str("category", string(category)).
		Str("key", key).
		Dur("age", age).
		Msg("Cache hit")

	return entry, true
}

// GetInto is a convenience wrapper that decodes a fresh entry's payload
// into v. A payload that fails to decode is a miss, consistent with Get.
func (c *Cache) GetInto(ctx context.Context, category Category, key string, v interface{}) (time.Time, bool) {
	entry, ok := c.Get(ctx, category, key)
	if !ok {
		return time.Time{}, false
	}
	if err := entry.Decode(v); err != nil {
		c.logger.Warn().
			Err(err).
			Str("category", string(category)).
			Str("key", key).
			Msg("Cached payload malformed, treating as miss")
		return time.Time{}, false
	}
	return entry.CreatedAt, true
}

// Put persists payload under (category, key) with the current time as the
// write timestamp, overwriting any prior entry wholesale. There is no
// partial update and no merge. A successful return implies the entry is
// durable and retrievable.
func (c *Cache) Put(ctx context.Context, category Category, key string, payload interface{}) error {
	if !category.Valid() {
		return fmt.Errorf("unknown cache category %q", category)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload for %s: %w", category, key, err)
	}

	entry := &Entry{
		Key:       key,
		Category:  category,
		Payload:   raw,
		CreatedAt: c.now(),
	}

	if err := c.store.Write(ctx, entry); err != nil {
		return fmt.Errorf("failed to write %s cache entry for %s: %w", category, key, err)
	}

	c.logger.Debug().
		Str("category", string(category)).
		Str("key", key).
		Int("payload_bytes", len(raw)).
		Msg("Cache entry written")

	return nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
