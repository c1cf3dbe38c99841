package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// PortfolioHandler handles market movers requests.
type PortfolioHandler struct {
	portfolio interfaces.PortfolioService
	logger    arbor.ILogger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolio interfaces.PortfolioService, logger arbor.ILogger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		logger:    logger,
	}
}

// MoversHandler handles GET /api/portfolio/movers?refresh=true.
func (h *PortfolioHandler) MoversHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"

	movers, err := h.portfolio.Movers(r.Context(), refresh)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch market movers")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, movers)
}
