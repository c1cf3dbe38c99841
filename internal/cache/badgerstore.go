package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// badgerRecord is the stored shape of a cache entry in Badger. The ID is
// "<category>/<key>" so lookups stay single-key.
type badgerRecord struct {
	ID        string `badgerhold:"key"`
	Category  string
	CacheKey  string
	Payload   []byte
	CreatedAt time.Time
}

// BadgerStore keeps cache entries in an embedded Badger database via
// badgerhold. Useful where a single-file deployment beats a cache directory.
type BadgerStore struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	stopGC chan struct{}
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) the Badger database at the given path.
func NewBadgerStore(path string, logger arbor.ILogger) (*BadgerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Badger cache store initialized")

	s := &BadgerStore{
		store:  store,
		logger: logger,
		stopGC: make(chan struct{}),
	}
	go s.runValueLogGC()

	return s, nil
}

// runValueLogGC reclaims value log space periodically. Badger does not do
// this on its own; without it the database only grows.
func (s *BadgerStore) runValueLogGC() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			for {
				err := s.store.Badger().RunValueLogGC(0.5)
				if err == badger.ErrNoRewrite {
					break
				}
				if err != nil {
					s.logger.Debug().Err(err).Msg("Badger value log GC skipped")
					break
				}
			}
		}
	}
}

// Ensure is a no-op for Badger; categories need no setup.
func (s *BadgerStore) Ensure(category Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown cache category %q", category)
	}
	return nil
}

func recordID(category Category, key string) string {
	return string(category) + "/" + key
}

// Read retrieves the entry for (category, key).
func (s *BadgerStore) Read(ctx context.Context, category Category, key string) (*Entry, error) {
	var rec badgerRecord
	err := s.store.Get(recordID(category, key), &rec)
	if err == badgerhold.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return &Entry{
		Key:       rec.CacheKey,
		Category:  Category(rec.Category),
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Write upserts the entry, replacing any prior value wholesale.
func (s *BadgerStore) Write(ctx context.Context, entry *Entry) error {
	rec := badgerRecord{
		ID:        recordID(entry.Category, entry.Key),
		Category:  string(entry.Category),
		CacheKey:  entry.Key,
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt,
	}

	if err := s.store.Upsert(rec.ID, &rec); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close stops background GC and closes the underlying database.
func (s *BadgerStore) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		s.stopGC = nil
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
