package service

import (
	"context"
	"testing"

	"eclat/internal/database"
	"eclat/internal/events"
	"eclat/internal/logging"
	"eclat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosureServiceLifecycle(t *testing.T) {
	tb := newTestBooking(t)
	svc := NewClosureService(tb.store, tb.cache, tb.bus, logging.NewTestLogger())
	ctx := context.Background()

	var published int
	tb.bus.Subscribe(events.EventClosureCreated, func(*events.Event) error {
		published++
		return nil
	})

	start := bookingDate()
	closure := &models.Closure{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
		Label:     "fermeture annuelle",
	}
	require.NoError(t, svc.CreateClosure(ctx, closure))
	assert.NotZero(t, closure.ID)
	assert.Equal(t, 1, published)

	closed, err := svc.IsDateClosed(ctx, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, closed)

	closures, err := svc.GetClosures(ctx)
	require.NoError(t, err)
	require.Len(t, closures, 1)

	require.NoError(t, svc.DeleteClosure(ctx, closure.ID))
	closed, err = svc.IsDateClosed(ctx, start)
	require.NoError(t, err)
	assert.False(t, closed)

	assert.ErrorIs(t, svc.DeleteClosure(ctx, closure.ID), database.ErrNotFound)
}

func TestCreateClosureFlushesCache(t *testing.T) {
	tb := newTestBooking(t)
	svc := NewClosureService(tb.store, tb.cache, tb.bus, logging.NewTestLogger())
	ctx := context.Background()

	date := bookingDate()
	_, err := tb.svc.GetDaySchedule(ctx, date)
	require.NoError(t, err)

	cached, err := tb.cache.GetDay(ctx, date.Format(models.DateLayout))
	require.NoError(t, err)
	require.NotNil(t, cached)

	require.NoError(t, svc.CreateClosure(ctx, &models.Closure{StartDate: date, EndDate: date}))

	cached, err = tb.cache.GetDay(ctx, date.Format(models.DateLayout))
	require.NoError(t, err)
	assert.Nil(t, cached, "closure creation must flush cached day schedules")

	day, err := tb.svc.GetDaySchedule(ctx, date)
	require.NoError(t, err)
	assert.True(t, day.Closed)
}

func TestCreateClosureClampsEndDate(t *testing.T) {
	tb := newTestBooking(t)
	svc := NewClosureService(tb.store, tb.cache, tb.bus, logging.NewTestLogger())
	ctx := context.Background()

	start := bookingDate()
	closure := &models.Closure{StartDate: start, EndDate: start.AddDate(0, 0, -5)}
	require.NoError(t, svc.CreateClosure(ctx, closure))

	closures, err := svc.GetClosures(ctx)
	require.NoError(t, err)
	require.Len(t, closures, 1)
	assert.Equal(t,
		closures[0].StartDate.Format(models.DateLayout),
		closures[0].EndDate.Format(models.DateLayout))
}
