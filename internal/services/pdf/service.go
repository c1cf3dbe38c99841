// Package pdf exports rendered memos as PDF documents. The primary path
// prints the styled HTML through headless Chrome; the fallback renders the
// raw memo markdown directly with fpdf when Chrome is unavailable.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// Service implements interfaces.PDFService.
type Service struct {
	config  *common.PDFConfig
	logger  arbor.ILogger
	timeout time.Duration
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service.
func NewService(config *common.PDFConfig, logger arbor.ILogger) *Service {
	timeout := common.ParseDurationOr(config.Timeout, 45*time.Second)
	return &Service{
		config:  config,
		logger:  logger,
		timeout: timeout,
	}
}

// ExportHTML prints a standalone HTML document to PDF through headless
// Chrome. The produced bytes are validated before being returned; a PDF
// that fails validation is an error, not a silently corrupt download.
func (s *Service) ExportHTML(ctx context.Context, html, title string) ([]byte, error) {
	if !s.config.ChromeEnabled {
		return nil, fmt.Errorf("HTML to PDF export requires Chrome (pdf.chrome_enabled=false)")
	}

	s.logger.Debug().
		Int("html_len", len(html)).
		Str("title", title).
		Msg("Printing HTML to PDF")

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(timeoutCtx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoFirstRun,
			chromedp.NoDefaultBrowserCheck,
			chromedp.Flag("disable-dev-shm-usage", true),
		)...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chrome PDF print failed")
		return nil, fmt.Errorf("failed to print HTML to PDF: %w", err)
	}

	if err := s.validate(pdf); err != nil {
		return nil, fmt.Errorf("printed PDF failed validation: %w", err)
	}

	s.logger.Debug().Int("pdf_size", len(pdf)).Msg("PDF printed successfully")
	return pdf, nil
}

// validate runs a pdfcpu structural validation over the produced bytes.
func (s *Service) validate(pdf []byte) error {
	conf := model.NewDefaultConfiguration()
	return api.Validate(bytes.NewReader(pdf), conf)
}
