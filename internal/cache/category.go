// Package cache provides the tiered research cache: an age-bounded
// key/value store partitioned by semantic category, each category with its
// own time-to-live. Staleness is a cache miss, never an error; callers fall
// through to regeneration.
package cache

import (
	"errors"
	"time"
)

// Category is a named partition of the cache with its own TTL and payload shape.
type Category string

const (
	// CategoryReport holds generated memos (raw text + rendered HTML)
	CategoryReport Category = "report"
	// CategorySECFiling holds extracted 10-K filing sections
	CategorySECFiling Category = "sec-filing"
	// CategoryTranscript holds earnings-call transcripts
	CategoryTranscript Category = "earnings-transcript"
	// CategoryWebResearch holds assembled web research narratives
	CategoryWebResearch Category = "web-research"
	// CategoryFinancials holds computed financial snapshots
	CategoryFinancials Category = "financial-snapshot"
	// CategoryPortfolio holds computed market movers snapshots
	CategoryPortfolio Category = "portfolio-snapshot"
)

// ttls maps each category to its freshness window. Entries older than the
// window are treated as absent. The literal values are product decisions
// carried over unchanged.
var ttls = map[Category]time.Duration{
	CategoryReport:      30 * 24 * time.Hour,
	CategorySECFiling:   90 * 24 * time.Hour,
	CategoryTranscript:  30 * 24 * time.Hour,
	CategoryWebResearch: 7 * 24 * time.Hour,
	CategoryFinancials:  30 * 24 * time.Hour,
	CategoryPortfolio:   15 * time.Minute,
}

// Categories returns all known cache categories.
func Categories() []Category {
	return []Category{
		CategoryReport,
		CategorySECFiling,
		CategoryTranscript,
		CategoryWebResearch,
		CategoryFinancials,
		CategoryPortfolio,
	}
}

// TTL returns the freshness window for a category. Unknown categories get a
// zero TTL, which makes every read a miss.
func TTL(category Category) time.Duration {
	return ttls[category]
}

// Valid reports whether the category is one of the known partitions.
func (c Category) Valid() bool {
	_, ok := ttls[c]
	return ok
}

// ErrNotFound is returned by stores when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")
