// Package portfolio serves the daily market movers snapshot, cache-first
// with a short TTL so intraday views stay reasonably current.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/cache"
	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/models"
)

// Service implements interfaces.PortfolioService.
type Service struct {
	cache      *cache.Cache
	financials interfaces.FinancialSource
	logger     arbor.ILogger
	now        func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the service's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the portfolio service over the shared cache and the
// market data source.
func NewService(c *cache.Cache, financials interfaces.FinancialSource, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		cache:      c,
		financials: financials,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Movers returns the day's top gainers and losers. The cache key is derived
// from the trading day, so a request made before the market opens reuses the
// previous session's snapshot rather than fetching empty pre-open data.
func (s *Service) Movers(ctx context.Context, refresh bool) (*models.MarketMovers, error) {
	key := common.MarketSnapshotKey(s.now())

	if !refresh {
		var cached models.MarketMovers
		if _, ok := s.cache.GetInto(ctx, cache.CategoryPortfolio, key, &cached); ok {
			return &cached, nil
		}
	}

	movers, err := s.financials.Movers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market movers: %w", err)
	}
	movers.AsOf = common.MarketSnapshotDay(s.now()).Format("2006-01-02")

	if err := s.cache.Put(ctx, cache.CategoryPortfolio, key, movers); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("Failed to cache market movers snapshot")
	}

	s.logger.Info().
		Str("as_of", movers.AsOf).
		Int("gainers", len(movers.TopGainers)).
		Int("losers", len(movers.TopLosers)).
		Msg("Market movers refreshed")

	return movers, nil
}
