package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestPendingAmount_NoAmountReceived(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentDefault, PaymentRequiresAction, PaymentUnpaid, PaymentUnderpaid, PaymentFailed} {
		p := Payment{Amount: "1500.00", Status: status}
		assert.Equal(t, "1500.00", p.PendingAmount(), "status %s", status)
	}
}

func TestPendingAmount_Underpaid(t *testing.T) {
	p := Payment{
		Amount:         "1000.00",
		Status:         PaymentUnderpaid,
		AmountReceived: strPtr("500.00"),
	}

	assert.Equal(t, "500.00", p.PendingAmount())
	assert.Equal(t, "0.00", p.OverpaidAmount())
	assert.True(t, p.IsUnderPaid())
	assert.False(t, p.IsOverPaid())
}

func TestPendingAmount_NeverNegative(t *testing.T) {
	p := Payment{
		Amount:         "100.00",
		Status:         PaymentOverpaid,
		AmountReceived: strPtr("150.00"),
	}

	assert.Equal(t, "0.00", p.PendingAmount())
}

func TestOverpaidAmount_CentLevel(t *testing.T) {
	p := Payment{
		Amount:         "999.99",
		Status:         PaymentOverpaid,
		AmountReceived: strPtr("1000.00"),
	}

	assert.Equal(t, "0.01", p.OverpaidAmount())
	assert.Equal(t, "0.00", p.PendingAmount())
}

func TestOverpaidAmount_ZeroOutsideOverpaidStatus(t *testing.T) {
	p := Payment{
		Amount:         "100.00",
		Status:         PaymentPaid,
		AmountReceived: strPtr("150.00"),
	}
	assert.Equal(t, "0.00", p.OverpaidAmount())

	p.AmountReceived = nil
	p.Status = PaymentOverpaid
	assert.Equal(t, "0.00", p.OverpaidAmount())
}

func TestIsNonPaid(t *testing.T) {
	nonPaid := []PaymentStatus{PaymentDefault, PaymentRequiresAction, PaymentUnpaid, PaymentUnderpaid, PaymentFailed}
	paid := []PaymentStatus{PaymentSucceeded, PaymentPaid, PaymentOverpaid}

	for _, status := range nonPaid {
		p := Payment{Status: status}
		assert.True(t, p.IsNonPaid(), "status %s", status)
	}
	for _, status := range paid {
		p := Payment{Status: status}
		assert.False(t, p.IsNonPaid(), "status %s", status)
	}
}

func TestIsRecentPayment(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	recent := now.Add(-30 * time.Minute)
	p := Payment{CreatedAt: &recent}
	assert.True(t, p.IsRecentPayment(now))

	old := now.Add(-2 * time.Hour)
	p.CreatedAt = &old
	assert.False(t, p.IsRecentPayment(now))

	// A clock-skewed future timestamp is not "recent".
	future := now.Add(10 * time.Minute)
	p.CreatedAt = &future
	assert.False(t, p.IsRecentPayment(now))

	p.CreatedAt = nil
	assert.False(t, p.IsRecentPayment(now))
}
