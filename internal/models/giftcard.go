package models

import "time"

type GiftCard struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	AmountCents    int64      `json:"amount_cents"`
	PurchaserName  string     `json:"purchaser_name"`
	PurchaserEmail string     `json:"purchaser_email"`
	RecipientName  string     `json:"recipient_name"`
	Message        string     `json:"message"`
	Status         string     `json:"status"` // issued, redeemed
	CreatedAt      time.Time  `json:"created_at"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
}
