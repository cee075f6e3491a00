package models

import (
	"time"
)

// PaymentMethod is a stored reference to a card tokenized by Stripe. Only
// display metadata lives here, never card data.
type PaymentMethod struct {
	ID                    string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID                uint      `json:"userId" gorm:"not null;index"`
	StripePaymentMethodId string    `json:"stripePaymentMethodId" binding:"required" gorm:"not null"`
	Brand                 string    `json:"brand"`
	Last4                 string    `json:"last4"`
	ExpMonth              *int      `json:"expMonth"`
	ExpYear               *int      `json:"expYear"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// IsExpired is true once now is past the last instant of the expiry month.
// Missing or malformed expiry data yields false: the processor is the
// authority, this is only a display hint.
func (pm *PaymentMethod) IsExpired(now time.Time) bool {
	if pm.ExpMonth == nil || pm.ExpYear == nil {
		return false
	}
	month, year := *pm.ExpMonth, *pm.ExpYear
	if month < 1 || month > 12 || year < 1 {
		return false
	}
	// First instant of the month after expiry.
	boundary := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	return !now.Before(boundary)
}
