package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// categoryLayout describes where a category's files live and how they are
// named. The on-disk layout is load-bearing: files are shared with earlier
// tooling that expects these exact paths and field names.
type categoryLayout struct {
	subdir string
	suffix string // appended to the key before ".json"
}

var layouts = map[Category]categoryLayout{
	CategoryReport:      {subdir: "", suffix: ""},
	CategorySECFiling:   {subdir: "sec", suffix: "_10K"},
	CategoryTranscript:  {subdir: "earnings", suffix: "_earnings"},
	CategoryWebResearch: {subdir: "websearch", suffix: "_research"},
	CategoryFinancials:  {subdir: "alphavantage", suffix: "_financials"},
	CategoryPortfolio:   {subdir: "portfolio", suffix: ""},
}

// reportFile is the on-disk shape of a report cache entry.
type reportFile struct {
	ID          string `json:"id,omitempty"`
	Ticker      string `json:"ticker"`
	Report      string `json:"report"`
	HTML        string `json:"html"`
	Timestamp   int64  `json:"timestamp"`   // epoch milliseconds
	GeneratedAt string `json:"generatedAt"` // ISO-8601
}

// reportPayload mirrors the payload fields of a report entry.
type reportPayload struct {
	ID     string `json:"id,omitempty"`
	Ticker string `json:"ticker"`
	Report string `json:"report"`
	HTML   string `json:"html"`
}

// dataFile is the on-disk shape of every non-report category except the
// portfolio snapshot.
type dataFile struct {
	Ticker   string          `json:"ticker,omitempty"`
	Data     json.RawMessage `json:"data"`
	CachedAt int64           `json:"cachedAt"` // epoch milliseconds
}

// portfolioFile is the on-disk shape of a portfolio snapshot entry.
type portfolioFile struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
}

// FSStore persists cache entries as one JSON file per key under a directory
// per category. Stale files are never removed, only superseded; the working
// set of distinct keys is assumed small.
type FSStore struct {
	root   string
	logger arbor.ILogger
}

// Compile-time assertion
var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem store rooted at the given directory.
func NewFSStore(root string, logger arbor.ILogger) *FSStore {
	return &FSStore{
		root:   root,
		logger: logger,
	}
}

// Ensure creates the category directory if it does not exist.
func (s *FSStore) Ensure(category Category) error {
	layout, ok := layouts[category]
	if !ok {
		return fmt.Errorf("unknown cache category %q", category)
	}
	dir := filepath.Join(s.root, layout.subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return nil
}

// Read loads and decodes the entry file for (category, key).
func (s *FSStore) Read(ctx context.Context, category Category, key string) (*Entry, error) {
	path, err := s.entryPath(category, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}

	entry, err := decodeEntry(category, key, data)
	if err != nil {
		return nil, fmt.Errorf("malformed cache file %s: %w", path, err)
	}
	return entry, nil
}

// Write encodes the entry into its category file shape and persists it
// durably: the file is written to a temp name, synced, and renamed over any
// prior entry.
func (s *FSStore) Write(ctx context.Context, entry *Entry) error {
	path, err := s.entryPath(entry.Category, entry.Key)
	if err != nil {
		return err
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync cache file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file %s: %w", path, err)
	}

	return nil
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}

func (s *FSStore) entryPath(category Category, key string) (string, error) {
	layout, ok := layouts[category]
	if !ok {
		return "", fmt.Errorf("unknown cache category %q", category)
	}
	safe := sanitizeKey(key)
	if safe == "" {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.root, layout.subdir, safe+layout.suffix+".json"), nil
}

// sanitizeKey strips anything that could escape the category directory.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}

func encodeEntry(entry *Entry) ([]byte, error) {
	ms := entry.CreatedAt.UnixMilli()

	switch entry.Category {
	case CategoryReport:
		var p reportPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return nil, fmt.Errorf("report payload must have ticker/report/html fields: %w", err)
		}
		return json.MarshalIndent(reportFile{
			ID:          p.ID,
			Ticker:      p.Ticker,
			Report:      p.Report,
			HTML:        p.HTML,
			Timestamp:   ms,
			GeneratedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
		}, "", "  ")

	case CategoryPortfolio:
		return json.MarshalIndent(portfolioFile{
			Data:      entry.Payload,
			Timestamp: ms,
		}, "", "  ")

	default:
		return json.MarshalIndent(dataFile{
			Ticker:   entry.Key,
			Data:     entry.Payload,
			CachedAt: ms,
		}, "", "  ")
	}
}

func decodeEntry(category Category, key string, data []byte) (*Entry, error) {
	switch category {
	case CategoryReport:
		var f reportFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		payload, err := json.Marshal(reportPayload{
			ID:     f.ID,
			Ticker: f.Ticker,
			Report: f.Report,
			HTML:   f.HTML,
		})
		if err != nil {
			return nil, err
		}
		return &Entry{
			Key:       key,
			Category:  category,
			Payload:   payload,
			CreatedAt: time.UnixMilli(f.Timestamp).UTC(),
		}, nil

	case CategoryPortfolio:
		var f portfolioFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("missing data field")
		}
		return &Entry{
			Key:       key,
			Category:  category,
			Payload:   f.Data,
			CreatedAt: time.UnixMilli(f.Timestamp).UTC(),
		}, nil

	default:
		var f dataFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("missing data field")
		}
		return &Entry{
			Key:       key,
			Category:  category,
			Payload:   f.Data,
			CreatedAt: time.UnixMilli(f.CachedAt).UTC(),
		}, nil
	}
}
