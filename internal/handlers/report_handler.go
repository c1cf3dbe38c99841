package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/memo"
)

// ReportHandler handles memo generation and export requests.
type ReportHandler struct {
	reports interfaces.ReportService
	pdf     interfaces.PDFService
	mailer  interfaces.MailerService
	logger  arbor.ILogger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports interfaces.ReportService, pdf interfaces.PDFService, mailer interfaces.MailerService, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		pdf:     pdf,
		mailer:  mailer,
		logger:  logger,
	}
}

// GetReportHandler handles GET /api/report?ticker=AAPL. Serves only the
// cache; it never triggers generation.
func (h *ReportHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}

	result, found := h.reports.GetCached(r.Context(), ticker)
	if !found {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("no cached memo for %s", ticker))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// GenerateReportHandler handles POST /api/report?ticker=AAPL&refresh=true.
// Generation is synchronous; progress streams over the websocket while the
// request is held open.
func (h *ReportHandler) GenerateReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	result, err := h.reports.Generate(r.Context(), ticker, refresh)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("ticker", ticker).
			Msg("Memo generation failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ReportPDFHandler handles GET /api/report/pdf?ticker=AAPL. The memo must
// already be cached; the handler exports, it does not generate.
func (h *ReportHandler) ReportPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}

	result, found := h.reports.GetCached(r.Context(), ticker)
	if !found {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("no cached memo for %s, generate one first", ticker))
		return
	}

	title := fmt.Sprintf("%s Initiation of Coverage", ticker)
	pdf, err := h.pdf.ExportHTML(r.Context(), memo.StandaloneHTML(title, result.Payload.HTML), title)
	if err != nil {
		// Chrome unavailable or render failure: fall back to the direct
		// markdown renderer so the export still succeeds.
		h.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Msg("HTML PDF export failed, falling back to markdown renderer")
		pdf, err = h.pdf.ExportMarkdown(result.Payload.Report, title)
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("ticker", ticker).
			Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, "failed to export PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-initiation.pdf\"", ticker))
	w.Write(pdf)
}

// EmailReportHandler handles POST /api/report/email?ticker=AAPL&to=a@b.com.
func (h *ReportHandler) EmailReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}

	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if to == "" || !strings.Contains(to, "@") {
		WriteError(w, http.StatusBadRequest, "valid 'to' address is required")
		return
	}

	result, found := h.reports.GetCached(r.Context(), ticker)
	if !found {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("no cached memo for %s, generate one first", ticker))
		return
	}

	title := fmt.Sprintf("%s Initiation of Coverage", ticker)

	// PDF attachment is best-effort; the HTML body alone is still a
	// complete memo.
	pdf, err := h.pdf.ExportHTML(r.Context(), memo.StandaloneHTML(title, result.Payload.HTML), title)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Msg("Skipping PDF attachment, export failed")
		pdf = nil
	}

	body := memo.StandaloneHTML(title, result.Payload.HTML)
	if err := h.mailer.SendReport(r.Context(), to, title, body, pdf); err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteSuccess(w, fmt.Sprintf("memo for %s sent to %s", ticker, to))
}

func (h *ReportHandler) tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ticker, err := common.ValidateTicker(r.URL.Query().Get("ticker"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return ticker, true
}
