package schedule

import (
	"testing"
	"time"

	"eclat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailableSlotsEmptyDay(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, []string{"09:00", "11:00", "14:00", "16:00", "18:00"}, e.ListAvailableSlots(nil))
}

func TestListAvailableSlotsSubtractsOccupiedUnion(t *testing.T) {
	e := newTestEngine(t)

	existing := []Existing{
		{StartTime: "14:00", ServiceID: "rituel-signature", ServiceName: "Rituel signature 90min"},
	}

	// The 90-minute ritual blocks 14:00 and 16:00.
	assert.Equal(t, []string{"09:00", "11:00", "18:00"}, e.ListAvailableSlots(existing))
	assert.Equal(t, []string{"14:00"}, e.ReservedSlots(existing))
}

func TestListAvailableSlotsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	existing := []Existing{
		{StartTime: "09:00", ServiceID: "massage-relaxant"},
		{StartTime: "16:00", ServiceID: "soin-eclat"},
	}

	first := e.ListAvailableSlots(existing)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.ListAvailableSlots(existing))
	}
}

func TestListAvailableSlotsForLongService(t *testing.T) {
	// Hourly grid: an existing 60-minute booking at 10:00 leaves 09:00 nominally
	// free, but a 90-minute service starting there would run into it.
	e := newTestEngine(t, "09:00", "10:00", "11:00")

	existing := []Existing{
		{StartTime: "10:00", ServiceID: "massage-relaxant", ServiceName: "Massage relaxant 60min"},
	}

	assert.Equal(t, []string{"09:00"}, e.ListAvailableSlots(existing))
	assert.Empty(t, e.ListAvailableSlotsFor("rituel-signature", "Rituel signature 90min", existing))
}

func TestIsSlotAvailableExactCollision(t *testing.T) {
	e := newTestEngine(t)

	// An identical start time is rejected before any interval math runs, even
	// for a start time the grid does not know.
	existing := []Existing{{StartTime: "11:00", ServiceID: "soin-eclat"}}
	assert.False(t, e.IsSlotAvailable("11:00", "soin-eclat", "", existing))

	existing = []Existing{{StartTime: "11:37", ServiceID: "soin-eclat"}}
	assert.False(t, e.IsSlotAvailable("11:37", "soin-eclat", "", existing))
}

func TestIsSlotAvailableIntervalOverlap(t *testing.T) {
	e := newTestEngine(t)

	existing := []Existing{
		{StartTime: "14:00", ServiceID: "rituel-signature", ServiceName: "Rituel signature 90min"},
	}

	// 16:00 sits inside the ritual's occupied window.
	assert.False(t, e.IsSlotAvailable("16:00", "massage-relaxant", "", existing))
	// 18:00 is past it.
	assert.True(t, e.IsSlotAvailable("18:00", "massage-relaxant", "", existing))
	// 11:00 ends well before 14:00.
	assert.True(t, e.IsSlotAvailable("11:00", "massage-relaxant", "", existing))
}

func TestListAndPointCheckAgree(t *testing.T) {
	// Self-consistency: every slot the service-aware list returns must also pass
	// the point check for the same service, and vice versa.
	grids := [][]string{
		{"09:00", "11:00", "14:00", "16:00", "18:00"},
		{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00"},
	}
	days := [][]Existing{
		nil,
		{{StartTime: "09:00", ServiceID: "massage-relaxant", ServiceName: "Massage relaxant 60min"}},
		{
			{StartTime: "10:00", ServiceID: "soin-eclat", ServiceName: "Soin éclat du teint 45min"},
			{StartTime: "14:00", ServiceID: "rituel-signature", ServiceName: "Rituel signature 90min"},
		},
	}

	for _, slots := range grids {
		e := newTestEngine(t, slots...)
		for _, existing := range days {
			for _, svc := range testServices() {
				listed := make(map[string]struct{})
				for _, slot := range e.ListAvailableSlotsFor(svc.ID, svc.Label, existing) {
					listed[slot] = struct{}{}
				}
				for _, slot := range e.Grid().Slots() {
					_, inList := listed[slot]
					point := e.IsSlotAvailable(slot, svc.ID, svc.Label, existing)
					assert.Equal(t, point, inList,
						"grid %v service %s slot %s existing %v", slots, svc.ID, slot, existing)
				}
			}
		}
	}
}

func TestExistingFromAppointmentsFilters(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)
	appointments := []*models.Appointment{
		{Date: date, StartTime: "09:00", ServiceID: "soin-eclat", Status: models.StatusConfirmed},
		{Date: date, StartTime: "11:00", ServiceID: "massage-relaxant", Status: models.StatusCancelled},
		{IsGiftCard: true, Status: models.StatusPending},
		{Date: date, StartTime: "14:00", ServiceID: "rituel-signature", Status: models.StatusPending},
	}

	existing := ExistingFromAppointments(appointments)
	require.Len(t, existing, 2)
	assert.Equal(t, "09:00", existing[0].StartTime)
	assert.Equal(t, "14:00", existing[1].StartTime)
}

func TestCancellationFreesSlot(t *testing.T) {
	e := newTestEngine(t)
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)

	apt := &models.Appointment{Date: date, StartTime: "11:00", ServiceID: "massage-relaxant", Status: models.StatusConfirmed}
	existing := ExistingFromAppointments([]*models.Appointment{apt})
	assert.NotContains(t, e.ListAvailableSlots(existing), "11:00")

	apt.Status = models.StatusCancelled
	existing = ExistingFromAppointments([]*models.Appointment{apt})
	assert.Contains(t, e.ListAvailableSlots(existing), "11:00")
}
