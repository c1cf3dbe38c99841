package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/models"
)

type stubPortfolio struct {
	movers  *models.MarketMovers
	err     error
	refresh bool
}

func (s *stubPortfolio) Movers(_ context.Context, refresh bool) (*models.MarketMovers, error) {
	s.refresh = refresh
	return s.movers, s.err
}

func TestMoversHandler(t *testing.T) {
	portfolio := &stubPortfolio{movers: &models.MarketMovers{
		AsOf:       "2025-06-02",
		TopGainers: []models.Mover{{Ticker: "UP", ChangePercent: 12.5}},
	}}
	h := NewPortfolioHandler(portfolio, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/portfolio/movers", nil)
	rec := httptest.NewRecorder()
	h.MoversHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var movers models.MarketMovers
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movers))
	assert.Equal(t, "2025-06-02", movers.AsOf)
	assert.False(t, portfolio.refresh)
}

func TestMoversHandlerRefresh(t *testing.T) {
	portfolio := &stubPortfolio{movers: &models.MarketMovers{}}
	h := NewPortfolioHandler(portfolio, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/portfolio/movers?refresh=true", nil)
	rec := httptest.NewRecorder()
	h.MoversHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, portfolio.refresh)
}

func TestMoversHandlerUpstreamFailure(t *testing.T) {
	portfolio := &stubPortfolio{err: fmt.Errorf("rate limited")}
	h := NewPortfolioHandler(portfolio, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/portfolio/movers", nil)
	rec := httptest.NewRecorder()
	h.MoversHandler(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
