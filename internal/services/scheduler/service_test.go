package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/models"
)

type stubPortfolio struct {
	calls int
}

func (s *stubPortfolio) Movers(context.Context, bool) (*models.MarketMovers, error) {
	s.calls++
	return &models.MarketMovers{}, nil
}

func TestStartDisabledIsNoOp(t *testing.T) {
	svc := NewService(&common.SchedulerConfig{Enabled: false}, &stubPortfolio{}, arbor.NewLogger())

	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := &common.SchedulerConfig{Enabled: true, MoversSchedule: "not a schedule"}
	svc := NewService(cfg, &stubPortfolio{}, arbor.NewLogger())

	err := svc.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movers schedule")
}

func TestStartAndStop(t *testing.T) {
	cfg := &common.SchedulerConfig{Enabled: true, MoversSchedule: "*/15 * * * *"}
	svc := NewService(cfg, &stubPortfolio{}, arbor.NewLogger())

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start()) // idempotent
	svc.Stop()
	svc.Stop()
}

func TestRefreshMoversRecordsOutcome(t *testing.T) {
	portfolio := &stubPortfolio{}
	svc := NewService(&common.SchedulerConfig{}, portfolio, arbor.NewLogger())

	svc.refreshMovers()

	lastRun, lastErr := svc.Status()
	if portfolio.calls > 0 {
		assert.False(t, lastRun.IsZero())
		assert.NoError(t, lastErr)
	} else {
		// Weekend run skips the fetch entirely.
		assert.True(t, lastRun.IsZero())
	}
}
