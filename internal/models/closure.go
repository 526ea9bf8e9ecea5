package models

import "time"

// Closure is an admin-defined date range during which no bookings are accepted.
// Both ends are inclusive. An end before the start is clamped to the start when
// stored, so re-reading a closure always yields end >= start.
type Closure struct {
	ID        int64     `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the given day falls inside the closure.
func (c *Closure) Contains(date time.Time) bool {
	d := date.Format(DateLayout)
	return d >= c.StartDate.Format(DateLayout) && d <= c.EndDate.Format(DateLayout)
}
