// Package models defines the data structures shared across services.
package models

import (
	"time"
)

// ReportPayload is the generated investment memo for a ticker.
// This is the payload stored under the report cache category.
type ReportPayload struct {
	// ID uniquely identifies a single generation run
	ID string `json:"id,omitempty"`
	// Ticker is the normalized ticker symbol the memo covers
	Ticker string `json:"ticker"`
	// Report is the raw memo text returned by the generation model
	Report string `json:"report"`
	// HTML is the rendered structured document
	HTML string `json:"html"`
}

// ReportResult is returned to callers requesting a memo.
type ReportResult struct {
	Payload *ReportPayload `json:"payload"`
	// Cached is true when the memo was served from the report cache
	Cached bool `json:"cached"`
	// GeneratedAt is when the memo was produced (cache write time for hits)
	GeneratedAt time.Time `json:"generated_at"`
}

// SourceStatus records which research sources contributed to a generation.
// A source that failed or returned nothing is simply omitted from the prompt.
type SourceStatus struct {
	Filings     bool `json:"filings"`
	Transcripts bool `json:"transcripts"`
	WebResearch bool `json:"web_research"`
	Financials  bool `json:"financials"`
}
