package models

import "time"

type Appointment struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // "HH:MM", member of the slot grid
	ServiceID   string    `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Status      string    `json:"status"` // pending, confirmed, cancelled, completed
	IsGiftCard  bool      `json:"is_gift_card"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	ClientPhone string    `json:"client_phone"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"`
}

// OccupiesSlot reports whether the appointment counts against the day's slot grid.
// Gift-card records carry no date/time and cancelled appointments free their slot.
func (a *Appointment) OccupiesSlot() bool {
	return !a.IsGiftCard && a.Status != StatusCancelled
}

// DateKey returns the storage form of the appointment date.
func (a *Appointment) DateKey() string {
	return a.Date.Format(DateLayout)
}
