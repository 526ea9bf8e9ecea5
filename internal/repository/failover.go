package repository

import (
	"context"
	"sync/atomic"
	"time"

	"eclat/internal/domain"
	"eclat/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the primary
// again after marking it down.
const recoveryInterval = time.Minute

// FailoverScheduleCache serves from the primary (redis) until it fails, then
// falls back to the in-process cache and periodically probes for recovery.
type FailoverScheduleCache struct {
	primary   domain.ScheduleCache
	fallback  domain.ScheduleCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverScheduleCache(primary, fallback domain.ScheduleCache, logger *zerolog.Logger) *FailoverScheduleCache {
	return &FailoverScheduleCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverScheduleCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary schedule cache failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverScheduleCache) shouldProbe() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > recoveryInterval
}

func (f *FailoverScheduleCache) GetDay(ctx context.Context, date string) (*models.DaySchedule, error) {
	if !f.isDown.Load() {
		day, err := f.primary.GetDay(ctx, date)
		if err == nil {
			return day, nil
		}
		f.markDown(err)
	} else if f.shouldProbe() {
		day, err := f.primary.GetDay(ctx, date)
		if err == nil {
			f.isDown.Store(false)
			return day, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.GetDay(ctx, date)
}

func (f *FailoverScheduleCache) SetDay(ctx context.Context, day *models.DaySchedule) error {
	if !f.isDown.Load() {
		err := f.primary.SetDay(ctx, day)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.SetDay(ctx, day)
}

func (f *FailoverScheduleCache) InvalidateDay(ctx context.Context, date string) error {
	// Invalidate both sides: a stale fallback entry must not resurface after a
	// primary outage.
	if !f.isDown.Load() {
		if err := f.primary.InvalidateDay(ctx, date); err != nil {
			f.markDown(err)
		}
	}
	return f.fallback.InvalidateDay(ctx, date)
}

func (f *FailoverScheduleCache) Flush(ctx context.Context) error {
	if !f.isDown.Load() {
		if err := f.primary.Flush(ctx); err != nil {
			f.markDown(err)
		}
	}
	return f.fallback.Flush(ctx)
}
