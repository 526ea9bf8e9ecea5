package database

import (
	"context"
	"testing"
	"time"

	"eclat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClosureClampsEndDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.Local)
	closure := &models.Closure{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -3),
		Label:     "Saisie inversée",
	}
	require.NoError(t, db.CreateClosure(ctx, closure))
	assert.Equal(t, start.Format(models.DateLayout), closure.EndDate.Format(models.DateLayout))

	// Re-reading yields the same clamped values, twice.
	for i := 0; i < 2; i++ {
		closures, err := db.GetClosures(ctx)
		require.NoError(t, err)
		require.Len(t, closures, 1)
		assert.Equal(t, start.Format(models.DateLayout), closures[0].StartDate.Format(models.DateLayout))
		assert.Equal(t, start.Format(models.DateLayout), closures[0].EndDate.Format(models.DateLayout))
	}
}

func TestIsDateClosedInclusiveBounds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2026, 12, 24, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 7)
	require.NoError(t, db.CreateClosure(ctx, &models.Closure{StartDate: start, EndDate: end, Label: "Fêtes"}))

	cases := []struct {
		date   time.Time
		closed bool
	}{
		{start.AddDate(0, 0, -1), false},
		{start, true},
		{start.AddDate(0, 0, 3), true},
		{end, true},
		{end.AddDate(0, 0, 1), false},
	}
	for _, tc := range cases {
		closed, err := db.IsDateClosed(ctx, tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.closed, closed, "date %s", tc.date.Format(models.DateLayout))
	}
}

func TestDeleteClosure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	closure := &models.Closure{StartDate: testDate(), EndDate: testDate(), Label: "Un jour"}
	require.NoError(t, db.CreateClosure(ctx, closure))

	require.NoError(t, db.DeleteClosure(ctx, closure.ID))

	closed, err := db.IsDateClosed(ctx, testDate())
	require.NoError(t, err)
	assert.False(t, closed)

	assert.ErrorIs(t, db.DeleteClosure(ctx, closure.ID), ErrNotFound)
}
