// Package scheduler runs background refresh jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// Service keeps the market movers snapshot warm so the portfolio view never
// waits on the upstream API during trading hours.
type Service struct {
	config    *common.SchedulerConfig
	portfolio interfaces.PortfolioService
	logger    arbor.ILogger

	cron    *cron.Cron
	mu      sync.Mutex
	started bool
	lastRun time.Time
	lastErr error
}

// NewService creates the scheduler. Jobs are registered but not started.
func NewService(config *common.SchedulerConfig, portfolio interfaces.PortfolioService, logger arbor.ILogger) *Service {
	return &Service{
		config:    config,
		portfolio: portfolio,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start registers and starts the configured jobs. A disabled scheduler is a
// no-op so callers can wire it unconditionally.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}
	if s.started {
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.MoversSchedule, s.refreshMovers); err != nil {
		return fmt.Errorf("invalid movers schedule %q: %w", s.config.MoversSchedule, err)
	}

	s.cron.Start()
	s.started = true

	s.logger.Info().
		Str("movers_schedule", s.config.MoversSchedule).
		Msg("Scheduler started")

	return nil
}

// Stop halts the cron runner and waits for any running job to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.started = false

	s.logger.Info().Msg("Scheduler stopped")
}

// Status reports the last movers refresh outcome.
func (s *Service) Status() (lastRun time.Time, lastErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Service) refreshMovers() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// Weekends produce the same snapshot as Friday's close; skip the fetch.
	if !common.IsTradingDay(time.Now()) {
		return
	}

	_, err := s.portfolio.Movers(ctx, true)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled movers refresh failed")
		return
	}
	s.logger.Debug().Msg("Scheduled movers refresh complete")
}
