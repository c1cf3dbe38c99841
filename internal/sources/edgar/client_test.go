package edgar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestTenK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var query filingQuery
			require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
			assert.Contains(t, query.Query, "ticker:AVGO")
			assert.Contains(t, query.Query, `formType:"10-K"`)

			json.NewEncoder(w).Encode(filingQueryResponse{Filings: []filing{{
				CompanyName:         "Broadcom Inc.",
				FiledAt:             "2024-12-20T16:30:00-05:00",
				PeriodOfReport:      "2024-11-03",
				LinkToFilingDetails: "https://www.sec.gov/Archives/avgo-10k.htm",
			}}})
			return
		}

		// Extractor endpoint.
		assert.Equal(t, "https://www.sec.gov/Archives/avgo-10k.htm", r.URL.Query().Get("url"))
		switch r.URL.Query().Get("item") {
		case "1":
			w.Write([]byte("Business section text."))
		case "1A":
			w.Write([]byte("Risk factors text."))
		case "7":
			w.WriteHeader(http.StatusInternalServerError)
		case "8":
			w.Write([]byte("Financial statements text."))
		}
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	data, err := client.LatestTenK(context.Background(), "AVGO")
	require.NoError(t, err)

	assert.Equal(t, "Broadcom Inc.", data.CompanyName)
	assert.Equal(t, "2024", data.FiscalYear)
	assert.Equal(t, "Business section text.", data.Sections["Business"])
	assert.Equal(t, "Risk factors text.", data.Sections["Risk Factors"])
	assert.Equal(t, "Financial statements text.", data.Sections["Financial Statements and Supplementary Data"])
	// Item 7 failed to extract; the filing still succeeds with what landed.
	assert.NotContains(t, data.Sections, "Management's Discussion and Analysis")
}

func TestLatestTenKNoFilings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(filingQueryResponse{})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	_, err := client.LatestTenK(context.Background(), "ZZZZ")
	assert.Error(t, err)
}

func TestLatestTenKAllSectionsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(filingQueryResponse{Filings: []filing{{
				CompanyName:         "Broadcom Inc.",
				LinkToFilingDetails: "https://example.com/f.htm",
			}}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	_, err := client.LatestTenK(context.Background(), "AVGO")
	assert.Error(t, err)
}

func TestLatestTenKQueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad token"))
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL), WithRateLimit(1000))
	_, err := client.LatestTenK(context.Background(), "AVGO")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
