package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	GiftCardIssued   = "issued"
	GiftCardRedeemed = "redeemed"
)

const (
	// DateLayout is the storage and wire form of calendar dates.
	DateLayout = "2006-01-02"

	// TimeLayout is the wire form of slot start times.
	TimeLayout = "15:04"
)

const (
	// DefaultDurationMinutes is used when a service cannot be resolved.
	DefaultDurationMinutes = 60

	// DefaultScheduleTTL is the lifetime of a cached day schedule, in seconds.
	DefaultScheduleTTL = 5 * 60

	// ReminderHour is the local hour at which day-before reminders go out.
	ReminderHour = 9

	// WorkerQueueSize bounds the reminder worker queue.
	WorkerQueueSize = 1000

	// DefaultMaxBookingDays limits how far ahead a booking may be placed.
	DefaultMaxBookingDays = 90
)
