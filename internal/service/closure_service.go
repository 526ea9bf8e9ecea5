package service

import (
	"context"
	"time"

	"eclat/internal/domain"
	"eclat/internal/events"
	"eclat/internal/models"

	"github.com/rs/zerolog"
)

// ClosureService manages salon closure periods. Any change flushes the whole
// schedule cache, since one closure can cover an arbitrary range of days.
type ClosureService struct {
	store    domain.Store
	cache    domain.ScheduleCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewClosureService(store domain.Store, cache domain.ScheduleCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *ClosureService {
	return &ClosureService{store: store, cache: cache, eventBus: eventBus, logger: logger}
}

func (s *ClosureService) CreateClosure(ctx context.Context, closure *models.Closure) error {
	if err := s.store.CreateClosure(ctx, closure); err != nil {
		return err
	}

	s.flush(ctx)
	if s.eventBus != nil {
		payload := map[string]string{
			"start_date": closure.StartDate.Format(models.DateLayout),
			"end_date":   closure.EndDate.Format(models.DateLayout),
			"label":      closure.Label,
		}
		if err := s.eventBus.PublishJSON(events.EventClosureCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("closure_id", closure.ID).Msg("publish event error")
		}
	}
	return nil
}

func (s *ClosureService) GetClosures(ctx context.Context) ([]*models.Closure, error) {
	return s.store.GetClosures(ctx)
}

func (s *ClosureService) DeleteClosure(ctx context.Context, id int64) error {
	if err := s.store.DeleteClosure(ctx, id); err != nil {
		return err
	}
	s.flush(ctx)
	return nil
}

func (s *ClosureService) IsDateClosed(ctx context.Context, date time.Time) (bool, error) {
	return s.store.IsDateClosed(ctx, date)
}

func (s *ClosureService) flush(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Error().Err(err).Msg("schedule cache flush error")
	}
}
