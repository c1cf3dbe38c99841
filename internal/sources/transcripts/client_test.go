package transcripts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLatestCollectsRecentQuarters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "AVGO", r.URL.Query().Get("ticker"))

		// Only 2025 Q1 and 2024 Q4 have transcripts.
		year, quarter := r.URL.Query().Get("year"), r.URL.Query().Get("quarter")
		switch {
		case year == "2025" && quarter == "1":
			w.Write([]byte(`{"transcript": "Q1 2025 remarks."}`))
		case year == "2024" && quarter == "4":
			w.Write([]byte(`{"transcript": "Q4 2024 remarks."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(1000),
		WithClock(fixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))))

	data, err := client.Latest(context.Background(), "AVGO", 2)
	require.NoError(t, err)

	require.Len(t, data.Transcripts, 2)
	assert.Equal(t, 2025, data.Transcripts[0].Year)
	assert.Equal(t, 1, data.Transcripts[0].Quarter)
	assert.Equal(t, "Q1 2025 remarks.", data.Transcripts[0].Transcript)
	assert.Equal(t, 2024, data.Transcripts[1].Year)
	assert.Equal(t, 4, data.Transcripts[1].Quarter)
}

func TestLatestNoTranscriptsAnywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(1000),
		WithClock(fixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))))

	_, err := client.Latest(context.Background(), "ZZZZ", 2)
	assert.Error(t, err)
}

func TestLatestServerErrorsSkipQuarter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("quarter") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"transcript": "remarks"}`))
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(1000),
		WithClock(fixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))))

	data, err := client.Latest(context.Background(), "AVGO", 1)
	require.NoError(t, err)
	require.Len(t, data.Transcripts, 1)
	// 2025 Q1 errored; the next quarter back filled the slot.
	assert.Equal(t, 2024, data.Transcripts[0].Year)
	assert.Equal(t, 4, data.Transcripts[0].Quarter)
}

func TestPreviousQuarter(t *testing.T) {
	cases := []struct {
		at      time.Time
		year    int
		quarter int
	}{
		{time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 2025, 1},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 2024, 4},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 2025, 3},
	}
	for _, tc := range cases {
		year, quarter := previousQuarter(tc.at)
		assert.Equal(t, tc.year, year, "at %s", tc.at)
		assert.Equal(t, tc.quarter, quarter, "at %s", tc.at)
	}
}
