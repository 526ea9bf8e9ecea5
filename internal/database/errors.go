package database

import "errors"

var (
	// ErrSlotTaken is the expected conflict outcome: the slot was available when
	// the client checked but no longer is at write time.
	ErrSlotTaken = errors.New("slot no longer available")

	// ErrClosedDate rejects bookings on closure days. Distinct from ErrSlotTaken
	// so the client can explain closed vs merely full.
	ErrClosedDate = errors.New("salon is closed on this date")

	ErrPastDate   = errors.New("date is in the past")
	ErrDateTooFar = errors.New("date is too far in the future")

	// ErrInvalidSlot rejects start times that are not members of the slot grid.
	// Existing off-grid records are tolerated on read, never on write.
	ErrInvalidSlot = errors.New("start time is not a bookable slot")

	ErrNotFound = errors.New("not found")

	ErrAlreadyRedeemed = errors.New("gift card already redeemed")

	ErrConcurrentModification = errors.New("record was modified concurrently")
)
