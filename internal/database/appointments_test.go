package database

import (
	"context"
	"os"
	"testing"
	"time"

	"eclat/internal/models"
	"eclat/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)

	grid, err := schedule.ParseGrid([]string{"09:00", "11:00", "14:00", "16:00", "18:00"})
	require.NoError(t, err)
	catalog, err := schedule.NewCatalog([]models.Service{
		{ID: "soin-eclat", Label: "Soin éclat du teint 45min", DurationMinutes: 45},
		{ID: "massage-relaxant", Label: "Massage relaxant 60min", DurationMinutes: 60},
		{ID: "rituel-signature", Label: "Rituel signature 90min", DurationMinutes: 90},
	})
	require.NoError(t, err)
	db.SetEngine(schedule.NewEngine(grid, catalog))

	t.Cleanup(func() { db.Close() })
	return db
}

func testAppointment(date time.Time, startTime, serviceID string) *models.Appointment {
	return &models.Appointment{
		Reference:   uuid.NewString(),
		Date:        date,
		StartTime:   startTime,
		ServiceID:   serviceID,
		ServiceName: serviceID,
		Status:      models.StatusPending,
		ClientName:  "Marie Dupont",
		ClientEmail: "marie@example.com",
		ClientPhone: "0612345678",
	}
}

func testDate() time.Time {
	return time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)
}

func TestCreateAppointmentWithLock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	apt := testAppointment(testDate(), "09:00", "massage-relaxant")
	err := db.CreateAppointmentWithLock(ctx, apt)
	require.NoError(t, err)
	assert.NotZero(t, apt.ID)
	assert.Equal(t, int64(1), apt.Version)

	got, err := db.GetAppointment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, testDate().Format(models.DateLayout), got.DateKey())
}

func TestCreateAppointmentWithLockExactCollision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "11:00", "soin-eclat")))

	err := db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "11:00", "soin-eclat"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateAppointmentWithLockIntervalOverlap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// 90-minute ritual at 14:00 blocks 16:00 as well.
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "14:00", "rituel-signature")))

	err := db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "16:00", "massage-relaxant"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// 18:00 is past the occupied window.
	assert.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "18:00", "massage-relaxant")))
}

func TestCreateAppointmentWithLockClosedDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateClosure(ctx, &models.Closure{
		StartDate: testDate(),
		EndDate:   testDate().AddDate(0, 0, 3),
		Label:     "Congés annuels",
	}))

	err := db.CreateAppointmentWithLock(ctx, testAppointment(testDate().AddDate(0, 0, 1), "09:00", "soin-eclat"))
	assert.ErrorIs(t, err, ErrClosedDate)
}

func TestCancellationFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	apt := testAppointment(testDate(), "11:00", "massage-relaxant")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, apt))

	// Slot is held.
	err := db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "11:00", "massage-relaxant"))
	require.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, db.UpdateAppointmentStatus(ctx, apt.ID, models.StatusCancelled))

	occupying, err := db.GetAppointmentsOnDate(ctx, testDate())
	require.NoError(t, err)
	assert.Empty(t, occupying)

	// And bookable again.
	assert.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(testDate(), "11:00", "massage-relaxant")))
}

func TestActiveSlotUniqueIndexBackstop(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Bypass the engine recheck entirely; the partial unique index must still
	// reject the second active appointment on the same slot.
	require.NoError(t, db.CreateAppointment(ctx, testAppointment(testDate(), "09:00", "soin-eclat")))

	err := db.CreateAppointment(ctx, testAppointment(testDate(), "09:00", "soin-eclat"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestGiftCardRecordNeverOccupiesSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	card := &models.Appointment{
		Reference:   uuid.NewString(),
		Status:      models.StatusPending,
		IsGiftCard:  true,
		ClientName:  "Luc Martin",
		ClientEmail: "luc@example.com",
	}
	require.NoError(t, db.CreateAppointment(ctx, card))

	// A second gift-card record must not trip the active-slot index either.
	card2 := &models.Appointment{
		Reference:   uuid.NewString(),
		Status:      models.StatusPending,
		IsGiftCard:  true,
		ClientName:  "Anne Petit",
		ClientEmail: "anne@example.com",
	}
	require.NoError(t, db.CreateAppointment(ctx, card2))

	occupying, err := db.GetAppointmentsOnDate(ctx, testDate())
	require.NoError(t, err)
	assert.Empty(t, occupying)
}

func TestGetAppointmentsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := testDate()
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(d, "14:00", "soin-eclat")))
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(d, "09:00", "soin-eclat")))
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(d.AddDate(0, 0, 2), "09:00", "soin-eclat")))

	got, err := db.GetAppointmentsByDateRange(ctx, d, d.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by date then start time.
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "14:00", got[1].StartTime)
}

func TestGetAppointmentsForReminder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := testDate()
	confirmed := testAppointment(d, "09:00", "soin-eclat")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, confirmed))
	require.NoError(t, db.UpdateAppointmentStatus(ctx, confirmed.ID, models.StatusConfirmed))

	cancelled := testAppointment(d, "11:00", "soin-eclat")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, cancelled))
	require.NoError(t, db.UpdateAppointmentStatus(ctx, cancelled.ID, models.StatusCancelled))

	due, err := db.GetAppointmentsForReminder(ctx, d)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, confirmed.ID, due[0].ID)
}

func TestUpdateAppointmentStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	apt := testAppointment(testDate(), "09:00", "soin-eclat")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, apt))

	require.NoError(t, db.UpdateAppointmentStatusWithVersion(ctx, apt.ID, 1, models.StatusConfirmed))

	// Stale version loses.
	err := db.UpdateAppointmentStatusWithVersion(ctx, apt.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestGetAppointmentByReference(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	apt := testAppointment(testDate(), "09:00", "soin-eclat")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, apt))

	got, err := db.GetAppointmentByReference(ctx, apt.Reference)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)

	_, err = db.GetAppointmentByReference(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
