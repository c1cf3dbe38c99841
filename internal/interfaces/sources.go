package interfaces

import (
	"context"

	"github.com/coverscribe/coverscribe/internal/models"
)

// FilingSource fetches extracted SEC filing sections for a ticker.
type FilingSource interface {
	// LatestTenK returns the extracted sections of the company's most
	// recent 10-K filing.
	LatestTenK(ctx context.Context, ticker string) (*models.FilingData, error)
}

// TranscriptSource fetches earnings-call transcripts for a ticker.
type TranscriptSource interface {
	// Latest returns up to n most recent quarterly transcripts, newest first.
	Latest(ctx context.Context, ticker string, n int) (*models.TranscriptData, error)
}

// ResearchSource assembles a web research narrative for a ticker.
type ResearchSource interface {
	// Research searches the web for recent coverage of the company and
	// assembles a markdown narrative from result snippets and page content.
	Research(ctx context.Context, ticker, company string) (*models.ResearchData, error)
}

// FinancialSource fetches computed financial metrics and market data.
type FinancialSource interface {
	// Snapshot returns current financial ratios and quote data for a ticker.
	Snapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)

	// Movers returns the day's top gainers and losers.
	Movers(ctx context.Context) (*models.MarketMovers, error)
}
