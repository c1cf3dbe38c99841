package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResearchAssemblesNarrative(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>t</title></head><body>
			<nav>Site nav</nav>
			<article><h1>Broadcom AI momentum</h1><p>Custom silicon orders are <b>accelerating</b>.</p></article>
			<footer>footer junk</footer>
		</body></html>`))
	}))
	defer pages.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Contains(t, r.URL.Query().Get("q"), "AVGO")
		fmt.Fprintf(w, `{"web": {"results": [
			{"title": "Broadcom AI momentum", "url": %q, "description": "snippet one"},
			{"title": "Second take", "url": "http://127.0.0.1:1/unreachable", "description": "snippet two"}
		]}}`, pages.URL)
	}))
	defer search.Close()

	client := NewClient("test-key", WithBaseURL(search.URL), WithRateLimit(1000), WithMaxPages(2))
	data, err := client.Research(context.Background(), "AVGO", "Broadcom")
	require.NoError(t, err)

	require.Len(t, data.Sources, 2)
	assert.Equal(t, "Broadcom AI momentum", data.Sources[0].Title)

	// First page extracted: content present, chrome stripped, bold preserved.
	assert.Contains(t, data.Narrative, "accelerating")
	assert.NotContains(t, data.Narrative, "Site nav")
	assert.NotContains(t, data.Narrative, "footer junk")

	// Second page unreachable: its search snippet substitutes.
	assert.Contains(t, data.Narrative, "snippet two")
}

func TestResearchNoResults(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web": {"results": []}}`))
	}))
	defer search.Close()

	client := NewClient("test-key", WithBaseURL(search.URL), WithRateLimit(1000))
	_, err := client.Research(context.Background(), "ZZZZ", "")
	assert.Error(t, err)
}

func TestResearchSearchFailure(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer search.Close()

	client := NewClient("test-key", WithBaseURL(search.URL), WithRateLimit(1000))
	_, err := client.Research(context.Background(), "AVGO", "Broadcom")
	assert.Error(t, err)
}

func TestResearchNonHTMLPageUsesSnippet(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer pages.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"web": {"results": [{"title": "PDF result", "url": %q, "description": "pdf snippet"}]}}`, pages.URL)
	}))
	defer search.Close()

	client := NewClient("test-key", WithBaseURL(search.URL), WithRateLimit(1000))
	data, err := client.Research(context.Background(), "AVGO", "")
	require.NoError(t, err)
	assert.Contains(t, data.Narrative, "pdf snippet")
}
