package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "OVERVIEW":
			assert.Equal(t, "AVGO", r.URL.Query().Get("symbol"))
			w.Write([]byte(`{
				"Symbol": "AVGO",
				"Name": "Broadcom Inc",
				"Sector": "TECHNOLOGY",
				"Industry": "SEMICONDUCTORS",
				"MarketCapitalization": "800000000000",
				"PERatio": "35.2",
				"ForwardPE": "28.1",
				"ProfitMargin": "0.28",
				"QuarterlyRevenueGrowthYOY": "0.22",
				"DividendYield": "None",
				"52WeekHigh": "251.88",
				"52WeekLow": "119.76"
			}`))
		case "GLOBAL_QUOTE":
			w.Write([]byte(`{"Global Quote": {"05. price": "240.50", "10. change percent": "1.25%"}}`))
		default:
			t.Errorf("unexpected function %s", r.URL.Query().Get("function"))
		}
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	snapshot, err := client.Snapshot(context.Background(), "AVGO")
	require.NoError(t, err)

	assert.Equal(t, "Broadcom Inc", snapshot.CompanyName)
	assert.Equal(t, 35.2, snapshot.PERatio)
	assert.Equal(t, 0.22, snapshot.RevenueGrowthYoY)
	assert.Equal(t, 0.0, snapshot.DividendYield) // "None" parses to zero
	assert.Equal(t, 240.50, snapshot.LastPrice)
	assert.Equal(t, 1.25, snapshot.ChangePercent) // percent sign stripped
}

func TestSnapshotQuoteFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") == "OVERVIEW" {
			w.Write([]byte(`{"Symbol": "AVGO", "Name": "Broadcom Inc", "PERatio": "35.2"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	snapshot, err := client.Snapshot(context.Background(), "AVGO")
	require.NoError(t, err)
	assert.Equal(t, 35.2, snapshot.PERatio)
	assert.Zero(t, snapshot.LastPrice)
}

func TestSnapshotUnknownTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	_, err := client.Snapshot(context.Background(), "ZZZZ")
	assert.Error(t, err)
}

func TestMovers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TOP_GAINERS_LOSERS", r.URL.Query().Get("function"))
		w.Write([]byte(`{
			"last_updated": "2025-06-02 16:15:59 US/Eastern",
			"top_gainers": [
				{"ticker": "ABC", "price": "12.50", "change_amount": "2.50", "change_percentage": "25.0%", "volume": "1500000"}
			],
			"top_losers": [
				{"ticker": "XYZ", "price": "3.20", "change_amount": "-1.10", "change_percentage": "-25.58%", "volume": "900000"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	movers, err := client.Movers(context.Background())
	require.NoError(t, err)

	require.Len(t, movers.TopGainers, 1)
	assert.Equal(t, "ABC", movers.TopGainers[0].Ticker)
	assert.Equal(t, 25.0, movers.TopGainers[0].ChangePercent)
	assert.Equal(t, int64(1500000), movers.TopGainers[0].Volume)

	require.Len(t, movers.TopLosers, 1)
	assert.Equal(t, -25.58, movers.TopLosers[0].ChangePercent)
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 12.5, parseNumeric("12.5"))
	assert.Equal(t, 12.5, parseNumeric("12.5%"))
	assert.Equal(t, -3.1, parseNumeric("-3.1"))
	assert.Equal(t, 0.0, parseNumeric("None"))
	assert.Equal(t, 0.0, parseNumeric("-"))
	assert.Equal(t, 0.0, parseNumeric(""))
	assert.Equal(t, 0.0, parseNumeric("n/a"))
}
