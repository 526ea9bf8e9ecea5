// Package schedule implements the slot-availability core: which start times are
// bookable on a salon day, and whether a candidate booking would overlap an
// existing one. The same engine backs the public availability endpoint and the
// authoritative write-path recheck, so the two can never drift.
package schedule

import "eclat/internal/models"

// Existing is the scheduling-relevant snapshot of an appointment already on the
// day. Callers pass only non-cancelled, non-gift-card records.
type Existing struct {
	StartTime   string
	ServiceID   string
	ServiceName string
}

// Engine computes availability over a fixed grid and service catalog. It is
// stateless and side-effect free; every method is a pure function of its inputs.
type Engine struct {
	grid    *Grid
	catalog *Catalog
}

func NewEngine(grid *Grid, catalog *Catalog) *Engine {
	return &Engine{grid: grid, catalog: catalog}
}

func (e *Engine) Grid() *Grid {
	return e.grid
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// occupiedUnion is the union of blocked-slot sets over all existing appointments.
func (e *Engine) occupiedUnion(existing []Existing) map[string]struct{} {
	occupied := make(map[string]struct{})
	for _, apt := range existing {
		for slot := range e.BlockedSlots(apt.StartTime, apt.ServiceID, apt.ServiceName) {
			occupied[slot] = struct{}{}
		}
	}
	return occupied
}

// ReservedSlots returns the start times actually held by existing appointments,
// in grid order. This is what the frontend shows as "taken".
func (e *Engine) ReservedSlots(existing []Existing) []string {
	starts := make(map[string]struct{}, len(existing))
	for _, apt := range existing {
		starts[apt.StartTime] = struct{}{}
	}
	reserved := make([]string, 0, len(starts))
	for _, slot := range e.grid.labels {
		if _, ok := starts[slot]; ok {
			reserved = append(reserved, slot)
		}
	}
	return reserved
}

// ListAvailableSlots returns the grid slots not covered by any existing
// appointment's occupied window, in grid order. This is the base availability
// used for display when no particular service has been chosen yet.
func (e *Engine) ListAvailableSlots(existing []Existing) []string {
	occupied := e.occupiedUnion(existing)
	available := make([]string, 0, e.grid.Len())
	for _, slot := range e.grid.labels {
		if _, taken := occupied[slot]; !taken {
			available = append(available, slot)
		}
	}
	return available
}

// ListAvailableSlotsFor narrows the base availability for a concrete service the
// caller intends to book. A slot survives only if booking the service there
// would not reach forward into a slot some existing appointment starts at: an
// early slot can be nominally free yet unusable for a long treatment that would
// run into a later booking.
func (e *Engine) ListAvailableSlotsFor(serviceID, serviceName string, existing []Existing) []string {
	starts := make(map[string]struct{}, len(existing))
	for _, apt := range existing {
		starts[apt.StartTime] = struct{}{}
	}

	base := e.ListAvailableSlots(existing)
	available := make([]string, 0, len(base))
	for _, slot := range base {
		if !intersects(e.BlockedSlots(slot, serviceID, serviceName), starts) {
			available = append(available, slot)
		}
	}
	return available
}

// IsSlotAvailable decides whether a candidate booking fits. The exact-slot check
// runs first and independently of the interval math: an appointment at the
// identical start time is rejected even if duration resolution would not flag
// the overlap. This is the predicate the write path re-evaluates inside the
// insert transaction.
func (e *Engine) IsSlotAvailable(startTime, serviceID, serviceName string, existing []Existing) bool {
	for _, apt := range existing {
		if apt.StartTime == startTime {
			return false
		}
	}

	candidate := e.BlockedSlots(startTime, serviceID, serviceName)
	for _, apt := range existing {
		if intersects(candidate, e.BlockedSlots(apt.StartTime, apt.ServiceID, apt.ServiceName)) {
			return false
		}
	}
	return true
}

// ExistingFromAppointments filters a day's appointments down to the records that
// occupy slots and projects them into engine input.
func ExistingFromAppointments(appointments []*models.Appointment) []Existing {
	existing := make([]Existing, 0, len(appointments))
	for _, apt := range appointments {
		if !apt.OccupiesSlot() {
			continue
		}
		existing = append(existing, Existing{
			StartTime:   apt.StartTime,
			ServiceID:   apt.ServiceID,
			ServiceName: apt.ServiceName,
		})
	}
	return existing
}

// Summaries projects occupying appointments into the public reserved view.
func Summaries(appointments []*models.Appointment) []models.ReservedSummary {
	out := make([]models.ReservedSummary, 0, len(appointments))
	for _, apt := range appointments {
		if !apt.OccupiesSlot() {
			continue
		}
		out = append(out, models.ReservedSummary{
			StartTime:   apt.StartTime,
			ServiceID:   apt.ServiceID,
			ServiceName: apt.ServiceName,
		})
	}
	return out
}
