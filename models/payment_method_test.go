package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestPaymentMethodIsExpired(t *testing.T) {
	now := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

	pm := PaymentMethod{ExpMonth: intPtr(6), ExpYear: intPtr(2025)}
	assert.True(t, pm.IsExpired(now))

	// Valid through the last instant of the expiry month.
	pm = PaymentMethod{ExpMonth: intPtr(7), ExpYear: intPtr(2025)}
	assert.False(t, pm.IsExpired(now))
	assert.False(t, pm.IsExpired(time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, pm.IsExpired(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)))

	pm = PaymentMethod{ExpMonth: intPtr(12), ExpYear: intPtr(2030)}
	assert.False(t, pm.IsExpired(now))
}

func TestPaymentMethodIsExpired_FailSafe(t *testing.T) {
	now := time.Now()

	pm := PaymentMethod{}
	assert.False(t, pm.IsExpired(now))

	pm = PaymentMethod{ExpMonth: intPtr(6)}
	assert.False(t, pm.IsExpired(now))

	pm = PaymentMethod{ExpYear: intPtr(2020)}
	assert.False(t, pm.IsExpired(now))

	pm = PaymentMethod{ExpMonth: intPtr(13), ExpYear: intPtr(2020)}
	assert.False(t, pm.IsExpired(now))

	pm = PaymentMethod{ExpMonth: intPtr(0), ExpYear: intPtr(2020)}
	assert.False(t, pm.IsExpired(now))
}
