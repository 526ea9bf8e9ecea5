package models

// Service is a catalog entry. The catalog is static configuration shared by every
// call site that resolves a duration, so the availability check and the booking
// form can never disagree on how long a treatment blocks the agenda.
type Service struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64  `yaml:"price_cents" json:"price_cents"`
}
