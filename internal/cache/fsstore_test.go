package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestFSStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	for _, category := range Categories() {
		require.NoError(t, store.Ensure(category))
	}

	cases := []struct {
		category Category
		key      string
		path     string
	}{
		{CategoryReport, "AVGO", "AVGO.json"},
		{CategorySECFiling, "AVGO", "sec/AVGO_10K.json"},
		{CategoryTranscript, "AVGO", "earnings/AVGO_earnings.json"},
		{CategoryWebResearch, "AVGO", "websearch/AVGO_research.json"},
		{CategoryFinancials, "AVGO", "alphavantage/AVGO_financials.json"},
		{CategoryPortfolio, "movers_2025-06-02", "portfolio/movers_2025-06-02.json"},
	}

	for _, tc := range cases {
		payload := json.RawMessage(`{"ticker":"AVGO","report":"r","html":"<div></div>"}`)
		if tc.category != CategoryReport {
			payload = json.RawMessage(`{"value":1}`)
		}
		err := store.Write(ctx, &Entry{
			Key:       tc.key,
			Category:  tc.category,
			Payload:   payload,
			CreatedAt: createdAt,
		})
		require.NoError(t, err, "write %s", tc.category)

		_, err = os.Stat(filepath.Join(dir, tc.path))
		assert.NoError(t, err, "expected file %s for category %s", tc.path, tc.category)
	}
}

func TestFSStoreReportFileShape(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	require.NoError(t, store.Ensure(CategoryReport))

	createdAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	err := store.Write(context.Background(), &Entry{
		Key:       "AVGO",
		Category:  CategoryReport,
		Payload:   json.RawMessage(`{"ticker":"AVGO","report":"## Investment Thesis\nBody.","html":"<div class=\"memo\"></div>"}`),
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "AVGO.json"))
	require.NoError(t, err)

	var file map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &file))
	assert.Equal(t, "AVGO", file["ticker"])
	assert.Equal(t, "## Investment Thesis\nBody.", file["report"])
	assert.Equal(t, `<div class="memo"></div>`, file["html"])
	assert.Equal(t, float64(createdAt.UnixMilli()), file["timestamp"])
	assert.Equal(t, "2025-06-02T10:00:00Z", file["generatedAt"])
}

func TestFSStoreDataFileShape(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	require.NoError(t, store.Ensure(CategoryTranscript))

	createdAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	err := store.Write(context.Background(), &Entry{
		Key:       "AVGO",
		Category:  CategoryTranscript,
		Payload:   json.RawMessage(`{"transcripts":[{"year":2025,"quarter":1}]}`),
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "earnings", "AVGO_earnings.json"))
	require.NoError(t, err)

	var file map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &file))
	assert.Equal(t, "AVGO", file["ticker"])
	assert.Equal(t, float64(createdAt.UnixMilli()), file["cachedAt"])
	assert.Contains(t, file, "data")
}

func TestFSStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	for _, category := range Categories() {
		require.NoError(t, store.Ensure(category))

		payload := json.RawMessage(`{"ticker":"MSFT","report":"text","html":"<p>x</p>"}`)
		if category != CategoryReport {
			payload = json.RawMessage(`{"n":42}`)
		}
		require.NoError(t, store.Write(ctx, &Entry{
			Key:       "MSFT",
			Category:  category,
			Payload:   payload,
			CreatedAt: createdAt,
		}))

		entry, err := store.Read(ctx, category, "MSFT")
		require.NoError(t, err, "read %s", category)
		assert.Equal(t, createdAt, entry.CreatedAt, "createdAt round trip for %s", category)
		assert.JSONEq(t, string(payload), string(entry.Payload), "payload round trip for %s", category)
	}
}

func TestFSStoreMissingFile(t *testing.T) {
	store := NewFSStore(t.TempDir(), arbor.NewLogger())
	require.NoError(t, store.Ensure(CategoryReport))

	_, err := store.Read(context.Background(), CategoryReport, "AVGO")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	require.NoError(t, store.Ensure(CategorySECFiling))

	path := filepath.Join(dir, "sec", "AVGO_10K.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.Read(context.Background(), CategorySECFiling, "AVGO")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFSStoreKeySanitization(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, arbor.NewLogger())
	require.NoError(t, store.Ensure(CategoryReport))

	err := store.Write(context.Background(), &Entry{
		Key:       "../escape",
		Category:  CategoryReport,
		Payload:   json.RawMessage(`{"ticker":"X","report":"r","html":"h"}`),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	// File lands inside the cache root, path traversal characters stripped.
	_, statErr := os.Stat(filepath.Join(dir, "escape.json"))
	assert.NoError(t, statErr)
}
