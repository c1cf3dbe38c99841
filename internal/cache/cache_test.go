package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	store := NewFSStore(t.TempDir(), arbor.NewLogger())
	c, err := New(store, arbor.NewLogger(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, &now
}

type filingPayload struct {
	Ticker   string            `json:"ticker"`
	Sections map[string]string `json:"sections"`
}

func TestCachePutGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	payload := filingPayload{
		Ticker:   "AVGO",
		Sections: map[string]string{"1": "Business overview"},
	}
	require.NoError(t, c.Put(ctx, CategorySECFiling, "AVGO", payload))

	var got filingPayload
	_, ok := c.GetInto(ctx, CategorySECFiling, "AVGO", &got)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestCacheMissOnAbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), CategoryReport, "ZZZZ")
	assert.False(t, ok)
}

func TestCacheTTLBoundary(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CategoryReport, "AVGO", map[string]string{
		"ticker": "AVGO",
		"report": "## Investment Thesis\nBody.",
		"html":   "<div></div>",
	}))

	// Age exactly equal to the TTL is still fresh.
	*now = now.Add(TTL(CategoryReport))
	_, ok := c.Get(ctx, CategoryReport, "AVGO")
	assert.True(t, ok, "entry at exactly the TTL should be a hit")

	// One second past and it is gone.
	*now = now.Add(time.Second)
	_, ok = c.Get(ctx, CategoryReport, "AVGO")
	assert.False(t, ok, "entry past the TTL should be a miss")
}

func TestCacheCategoryTTLsDiffer(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CategorySECFiling, "AVGO", filingPayload{Ticker: "AVGO"}))
	require.NoError(t, c.Put(ctx, CategoryWebResearch, "AVGO", map[string]string{"narrative": "n"}))

	// 31 days: web research (7d) expired, filing (90d) still fresh.
	*now = now.Add(31 * 24 * time.Hour)

	_, ok := c.Get(ctx, CategorySECFiling, "AVGO")
	assert.True(t, ok)
	_, ok = c.Get(ctx, CategoryWebResearch, "AVGO")
	assert.False(t, ok)
}

func TestCacheOverwriteResetsAge(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CategoryFinancials, "AVGO", map[string]float64{"peRatio": 30}))

	*now = now.Add(29 * 24 * time.Hour)
	require.NoError(t, c.Put(ctx, CategoryFinancials, "AVGO", map[string]float64{"peRatio": 35}))

	// 2 more days: the first write would be expired, the second is not.
	*now = now.Add(2 * 24 * time.Hour)

	var got map[string]float64
	createdAt, ok := c.GetInto(ctx, CategoryFinancials, "AVGO", &got)
	require.True(t, ok)
	assert.Equal(t, 35.0, got["peRatio"])
	assert.Equal(t, 2*24*time.Hour, (*now).Sub(createdAt))
}

func TestCacheCategoryIsolation(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CategorySECFiling, "AVGO", filingPayload{Ticker: "AVGO"}))

	// Same key, different category: no cross-talk.
	_, ok := c.Get(ctx, CategoryTranscript, "AVGO")
	assert.False(t, ok)
}

func TestCachePutUnknownCategory(t *testing.T) {
	c, _ := newTestCache(t)

	err := c.Put(context.Background(), Category("nonsense"), "AVGO", "x")
	assert.Error(t, err)
}

func TestCacheGetIntoMalformedPayloadIsMiss(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	store := &stubStore{
		entry: &Entry{
			Key:       "AVGO",
			Category:  CategorySECFiling,
			Payload:   json.RawMessage(`{"ticker": 123}`),
			CreatedAt: now,
		},
	}
	c, err := New(store, arbor.NewLogger(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	var got filingPayload
	_, ok := c.GetInto(context.Background(), CategorySECFiling, "AVGO", &got)
	assert.False(t, ok)
}

func TestCacheReadErrorIsMiss(t *testing.T) {
	now := time.Now()
	store := &stubStore{readErr: assert.AnError}
	c, err := New(store, arbor.NewLogger(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, ok := c.Get(context.Background(), CategoryReport, "AVGO")
	assert.False(t, ok)
}

type stubStore struct {
	entry   *Entry
	readErr error
}

func (s *stubStore) Ensure(Category) error { return nil }

func (s *stubStore) Read(ctx context.Context, category Category, key string) (*Entry, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.entry == nil {
		return nil, ErrNotFound
	}
	return s.entry, nil
}

func (s *stubStore) Write(ctx context.Context, entry *Entry) error {
	s.entry = entry
	return nil
}

func (s *stubStore) Close() error { return nil }
