package models

// ReservedSummary is the minimal view of a booked appointment the public
// availability endpoint exposes (time and service only, no client data).
type ReservedSummary struct {
	StartTime   string `json:"start_time"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
}

// DaySchedule is the availability snapshot for one salon day. It is what the
// booking UI renders and what the day-schedule cache stores. When Closed is true,
// Available is empty regardless of existing bookings.
type DaySchedule struct {
	Date         string            `json:"date"`
	Closed       bool              `json:"closed"`
	Grid         []string          `json:"grid"`
	Available    []string          `json:"available"`
	Reserved     []string          `json:"reserved"`
	Appointments []ReservedSummary `json:"appointments"`
}
