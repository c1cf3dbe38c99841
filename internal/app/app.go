// Package app wires configuration, storage, services, and handlers into a
// runnable application.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/cache"
	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/handlers"
	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/services/llm"
	"github.com/coverscribe/coverscribe/internal/services/mailer"
	"github.com/coverscribe/coverscribe/internal/services/pdf"
	"github.com/coverscribe/coverscribe/internal/services/portfolio"
	"github.com/coverscribe/coverscribe/internal/services/report"
	"github.com/coverscribe/coverscribe/internal/services/scheduler"
	"github.com/coverscribe/coverscribe/internal/sources/alphavantage"
	"github.com/coverscribe/coverscribe/internal/sources/edgar"
	"github.com/coverscribe/coverscribe/internal/sources/transcripts"
	"github.com/coverscribe/coverscribe/internal/sources/websearch"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Cache
	Cache *cache.Cache

	// Core services
	LLMService       interfaces.LLMService
	ReportService    interfaces.ReportService
	PortfolioService interfaces.PortfolioService
	PDFService       interfaces.PDFService
	MailerService    interfaces.MailerService
	SchedulerService *scheduler.Service

	// Handlers
	ReportHandler    *handlers.ReportHandler
	PortfolioHandler *handlers.PortfolioHandler
	StatusHandler    *handlers.StatusHandler
	PageHandler      *handlers.PageHandler
	WSHandler        *handlers.WebSocketHandler
}

// New creates the application with all services wired.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.initCache(); err != nil {
		return nil, err
	}
	if err := a.initServices(); err != nil {
		return nil, err
	}
	a.initHandlers()

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialized")

	return a, nil
}

// initCache selects the cache store backend from configuration.
func (a *App) initCache() error {
	var store cache.Store
	switch a.Config.Storage.Type {
	case "badger":
		badgerStore, err := cache.NewBadgerStore(a.Config.Storage.BadgerPath, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to open badger store: %w", err)
		}
		store = badgerStore
	default:
		store = cache.NewFSStore(a.Config.Storage.CacheDir, a.Logger)
	}

	c, err := cache.New(store, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.Cache = c
	return nil
}

func (a *App) initServices() error {
	llmService, err := llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm service: %w", err)
	}
	a.LLMService = llmService

	a.WSHandler = handlers.NewWebSocketHandler(a.Logger)

	filings := edgar.NewClient(a.Config.Sources.SEC.APIKey,
		edgar.WithLogger(a.Logger),
		edgar.WithRateLimit(a.Config.Sources.SEC.RateLimit),
		edgar.WithHTTPClient(sourceHTTPClient(a.Config.Sources.SEC.Timeout)),
		edgar.WithBaseURL(a.Config.Sources.SEC.BaseURL),
	)
	transcriptSource := transcripts.NewClient(a.Config.Sources.Transcripts.APIKey,
		transcripts.WithLogger(a.Logger),
		transcripts.WithRateLimit(a.Config.Sources.Transcripts.RateLimit),
		transcripts.WithHTTPClient(sourceHTTPClient(a.Config.Sources.Transcripts.Timeout)),
		transcripts.WithBaseURL(a.Config.Sources.Transcripts.BaseURL),
	)
	research := websearch.NewClient(a.Config.Sources.WebSearch.APIKey,
		websearch.WithLogger(a.Logger),
		websearch.WithRateLimit(a.Config.Sources.WebSearch.RateLimit),
		websearch.WithHTTPClient(sourceHTTPClient(a.Config.Sources.WebSearch.Timeout)),
		websearch.WithBaseURL(a.Config.Sources.WebSearch.BaseURL),
		websearch.WithMaxPages(a.Config.Sources.WebSearch.MaxPages),
		websearch.WithMaxResults(a.Config.Sources.WebSearch.MaxResults),
	)
	financials := alphavantage.NewClient(a.Config.Sources.AlphaVantage.APIKey,
		alphavantage.WithLogger(a.Logger),
		alphavantage.WithRateLimit(a.Config.Sources.AlphaVantage.RateLimit),
		alphavantage.WithHTTPClient(sourceHTTPClient(a.Config.Sources.AlphaVantage.Timeout)),
		alphavantage.WithBaseURL(a.Config.Sources.AlphaVantage.BaseURL),
	)

	a.ReportService = report.NewService(a.Cache, a.LLMService, filings, transcriptSource, research, financials, a.WSHandler, a.Logger,
		report.WithTranscriptQuarters(a.Config.Sources.Transcripts.Quarters))
	a.PortfolioService = portfolio.NewService(a.Cache, financials, a.Logger)
	a.PDFService = pdf.NewService(&a.Config.PDF, a.Logger)
	a.MailerService = mailer.NewService(&a.Config.SMTP, a.Logger)
	a.SchedulerService = scheduler.NewService(&a.Config.Scheduler, a.PortfolioService, a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.PDFService, a.MailerService, a.Logger)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.PortfolioService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.Config, a.LLMService, a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.Config.Server.StaticDir, a.Logger)
}

// Start launches background jobs.
func (a *App) Start() error {
	return a.SchedulerService.Start()
}

// Close releases all resources in reverse dependency order.
func (a *App) Close() error {
	a.SchedulerService.Stop()
	a.WSHandler.Close()

	if err := a.LLMService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close llm service")
	}
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close cache")
		return err
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}

// sourceHTTPClient builds the HTTP client for a research source from its
// configured timeout.
func sourceHTTPClient(timeout string) *http.Client {
	return &http.Client{
		Timeout: common.ParseDurationOr(timeout, 30*time.Second),
	}
}
