// Package report orchestrates memo generation: research collection across
// the configured sources, prompt assembly, generation, parsing, and
// rendering, with every stage cache-first.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/cache"
	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/memo"
	"github.com/coverscribe/coverscribe/internal/models"
)

// defaultTranscriptQuarters is how many recent quarterly transcripts a
// generation pulls in.
const defaultTranscriptQuarters = 4

// Service implements interfaces.ReportService. Source failures degrade the
// prompt rather than failing the run; only a generation (LLM) failure
// aborts.
type Service struct {
	cache       *cache.Cache
	llm         interfaces.LLMService
	filings     interfaces.FilingSource
	transcripts interfaces.TranscriptSource
	research    interfaces.ResearchSource
	financials  interfaces.FinancialSource
	events      interfaces.EventPublisher
	logger      arbor.ILogger
	now         func() time.Time
	quarters    int
}

// Option configures the Service.
type Option func(*Service)

// WithTranscriptQuarters sets how many recent transcripts to collect.
func WithTranscriptQuarters(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.quarters = n
		}
	}
}

// NewService wires the memo generation pipeline. events may be nil when no
// progress streaming is wanted.
func NewService(c *cache.Cache, llm interfaces.LLMService, filings interfaces.FilingSource, transcripts interfaces.TranscriptSource, research interfaces.ResearchSource, financials interfaces.FinancialSource, events interfaces.EventPublisher, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		cache:       c,
		llm:         llm,
		filings:     filings,
		transcripts: transcripts,
		research:    research,
		financials:  financials,
		events:      events,
		logger:      logger,
		now:         time.Now,
		quarters:    defaultTranscriptQuarters,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCached returns the cached memo for a ticker without triggering
// generation.
func (s *Service) GetCached(ctx context.Context, ticker string) (*models.ReportResult, bool) {
	normalized, err := common.ValidateTicker(ticker)
	if err != nil {
		return nil, false
	}

	var payload models.ReportPayload
	createdAt, ok := s.cache.GetInto(ctx, cache.CategoryReport, normalized, &payload)
	if !ok {
		return nil, false
	}

	return &models.ReportResult{
		Payload:     &payload,
		Cached:      true,
		GeneratedAt: createdAt,
	}, true
}

// Generate produces a memo for a ticker. Cache-first unless refresh is set,
// in which case every cache read along the pipeline is bypassed (writes
// still happen, so a refresh repopulates the cache).
func (s *Service) Generate(ctx context.Context, ticker string, refresh bool) (*models.ReportResult, error) {
	normalized, err := common.ValidateTicker(ticker)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if result, ok := s.GetCached(ctx, normalized); ok {
			s.logger.Info().
				Str("ticker", normalized).
				Msg("Serving cached memo")
			return result, nil
		}
	}

	s.publish("generation_started", normalized, "Collecting research", nil)

	bundle, status := s.collectResearch(ctx, normalized, refresh)
	if !status.Filings && !status.Transcripts && !status.WebResearch && !status.Financials {
		// Source unavailability is never fatal; the memo just gets a bare
		// prompt. Only the generation call itself can fail the run.
		s.logger.Warn().
			Str("ticker", normalized).
			Msg("All research sources empty, generating with minimal context")
	}

	s.publish("research_complete", normalized, "Research collected, generating memo", map[string]interface{}{
		"filings":      status.Filings,
		"transcripts":  status.Transcripts,
		"web_research": status.WebResearch,
		"financials":   status.Financials,
	})

	prompt := buildPrompt(normalized, bundle.filing, bundle.transcripts, bundle.research, bundle.financials)
	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	report, err := s.llm.Chat(ctx, messages)
	if err != nil {
		s.publish("generation_failed", normalized, "Memo generation failed", nil)
		return nil, fmt.Errorf("memo generation failed for %s: %w", normalized, err)
	}

	generatedAt := s.now()
	doc := memo.Document{
		Ticker:      normalized,
		CompanyName: companyName(bundle.filing, bundle.financials),
		GeneratedAt: generatedAt.Format("January 2, 2006"),
		Blocks:      memo.Parse(report),
	}

	payload := &models.ReportPayload{
		ID:     uuid.New().String(),
		Ticker: normalized,
		Report: report,
		HTML:   memo.Render(doc),
	}

	if err := s.cache.Put(ctx, cache.CategoryReport, normalized, payload); err != nil {
		// The memo is in hand; a failed cache write costs the next caller a
		// regeneration, nothing more.
		s.logger.Warn().
			Err(err).
			Str("ticker", normalized).
			Msg("Failed to cache generated memo")
	}

	s.publish("generation_complete", normalized, "Memo ready", map[string]interface{}{
		"report_id": payload.ID,
	})

	s.logger.Info().
		Str("ticker", normalized).
		Str("report_id", payload.ID).
		Int("report_chars", len(report)).
		Msg("Memo generated")

	return &models.ReportResult{
		Payload:     payload,
		Cached:      false,
		GeneratedAt: generatedAt,
	}, nil
}

// researchBundle carries whatever the four sources produced. Nil fields
// mean the source failed or had nothing.
type researchBundle struct {
	filing      *models.FilingData
	transcripts *models.TranscriptData
	research    *models.ResearchData
	financials  *models.FinancialSnapshot
}

// collectResearch fetches all four sources concurrently, each cache-first.
// Each goroutine writes a distinct bundle field, so no locking is needed
// beyond the WaitGroup.
func (s *Service) collectResearch(ctx context.Context, ticker string, refresh bool) (*researchBundle, models.SourceStatus) {
	bundle := &researchBundle{}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		bundle.filing = fetchCached(ctx, s, cache.CategorySECFiling, ticker, refresh, func() (*models.FilingData, error) {
			return s.filings.LatestTenK(ctx, ticker)
		})
	}()

	go func() {
		defer wg.Done()
		bundle.financials = fetchCached(ctx, s, cache.CategoryFinancials, ticker, refresh, func() (*models.FinancialSnapshot, error) {
			return s.financials.Snapshot(ctx, ticker)
		})
	}()

	// Transcripts and web research want the company name when the filing or
	// financials have one, so they start after the first pair lands.
	wg.Wait()
	company := companyName(bundle.filing, bundle.financials)

	wg.Add(2)

	go func() {
		defer wg.Done()
		bundle.transcripts = fetchCached(ctx, s, cache.CategoryTranscript, ticker, refresh, func() (*models.TranscriptData, error) {
			return s.transcripts.Latest(ctx, ticker, s.quarters)
		})
	}()

	go func() {
		defer wg.Done()
		bundle.research = fetchCached(ctx, s, cache.CategoryWebResearch, ticker, refresh, func() (*models.ResearchData, error) {
			return s.research.Research(ctx, ticker, company)
		})
	}()

	wg.Wait()

	return bundle, models.SourceStatus{
		Filings:     bundle.filing != nil,
		Transcripts: bundle.transcripts != nil && len(bundle.transcripts.Transcripts) > 0,
		WebResearch: bundle.research != nil && bundle.research.Narrative != "",
		Financials:  bundle.financials != nil,
	}
}

// fetchCached runs the cache-first, write-back, soft-fail pattern shared by
// every research source. A fetch error logs a warning and yields nil.
func fetchCached[T any](ctx context.Context, s *Service, category cache.Category, ticker string, refresh bool, fetch func() (*T, error)) *T {
	if !refresh {
		var cached T
		if _, ok := s.cache.GetInto(ctx, category, ticker, &cached); ok {
			return &cached
		}
	}

	s.publish("source_fetch", ticker, fmt.Sprintf("Fetching %s", category), nil)

	fresh, err := fetch()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Str("category", string(category)).
			Msg("Research source failed, continuing without it")
		return nil
	}
	if fresh == nil {
		return nil
	}

	if err := s.cache.Put(ctx, category, ticker, fresh); err != nil {
		s.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Str("category", string(category)).
			Msg("Failed to cache research payload")
	}

	return fresh
}

func (s *Service) publish(eventType, ticker, message string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(interfaces.Event{
		Type:      eventType,
		Ticker:    ticker,
		Message:   message,
		Data:      data,
		Timestamp: s.now(),
	})
}
