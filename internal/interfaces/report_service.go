package interfaces

import (
	"context"
	"time"

	"github.com/coverscribe/coverscribe/internal/models"
)

// ReportService produces and caches investment memos.
type ReportService interface {
	// GetCached returns the cached memo for a ticker, if present and fresh.
	GetCached(ctx context.Context, ticker string) (*models.ReportResult, bool)

	// Generate produces a memo for a ticker. When refresh is false a fresh
	// cached memo is returned as-is; when true all cache reads are bypassed
	// and every source is re-fetched.
	Generate(ctx context.Context, ticker string, refresh bool) (*models.ReportResult, error)
}

// PortfolioService serves the market movers snapshot.
type PortfolioService interface {
	// Movers returns the current market movers snapshot, cache-first.
	Movers(ctx context.Context, refresh bool) (*models.MarketMovers, error)
}

// PDFService exports rendered memos as PDF documents.
type PDFService interface {
	// ExportHTML renders a standalone HTML document to PDF bytes.
	ExportHTML(ctx context.Context, html, title string) ([]byte, error)

	// ExportMarkdown renders markdown text to PDF bytes without a browser.
	ExportMarkdown(markdown, title string) ([]byte, error)
}

// MailerService delivers finished memos by email.
type MailerService interface {
	// SendReport emails the memo HTML with an optional PDF attachment.
	SendReport(ctx context.Context, to, subject, htmlBody string, pdf []byte) error
}

// Event is a progress notification published during memo generation.
type Event struct {
	Type      string                 `json:"type"`
	Ticker    string                 `json:"ticker,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventPublisher broadcasts progress events to connected clients.
type EventPublisher interface {
	Publish(event Event)
}
