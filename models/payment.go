package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentDefault        PaymentStatus = "DEFAULT"
	PaymentRequiresAction PaymentStatus = "REQUIRES_ACTION"
	PaymentSucceeded      PaymentStatus = "SUCCEEDED"
	PaymentPaid           PaymentStatus = "PAID"
	PaymentUnpaid         PaymentStatus = "UNPAID"
	PaymentUnderpaid      PaymentStatus = "UNDERPAID"
	PaymentOverpaid       PaymentStatus = "OVERPAID"
	PaymentFailed         PaymentStatus = "FAILED"
)

// nonPaidStatuses is the fixed set of states in which a payment still owes
// money. SUCCEEDED, PAID and OVERPAID are deliberately excluded.
var nonPaidStatuses = map[PaymentStatus]bool{
	PaymentDefault:        true,
	PaymentRequiresAction: true,
	PaymentUnpaid:         true,
	PaymentUnderpaid:      true,
	PaymentFailed:         true,
}

// RecentPaymentWindow gates the volatile "just submitted, awaiting
// confirmation" UI state.
const RecentPaymentWindow = time.Hour

// Payment is one billing instance linking a payer to a concept. Amounts are
// exact decimal strings; pending and overpaid amounts are always derived,
// never stored.
type Payment struct {
	ID                    string            `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ConceptName           string            `json:"conceptName" gorm:"not null"`
	Amount                string            `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status                PaymentStatus     `json:"status" gorm:"type:varchar(20);default:'DEFAULT'"`
	PaymentMethodDetail   datatypes.JSONMap `json:"paymentMethodDetail" gorm:"type:jsonb"`
	UserID                *uint             `json:"userId" gorm:"index"`
	ConceptID             *string           `json:"conceptId" gorm:"type:uuid;index"`
	PaymentMethodID       *string           `json:"paymentMethodId" gorm:"type:uuid"`
	StripePaymentMethodId string            `json:"stripePaymentMethodId"`
	AmountReceived        *string           `json:"amountReceived" gorm:"type:numeric(12,2)"`
	StripePaymentIntentId string            `json:"stripePaymentIntentId" gorm:"index"`
	CheckoutURL           string            `json:"checkoutUrl"`
	StripeSessionId       string            `json:"stripeSessionId" gorm:"index"`
	CreatedAt             *time.Time        `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// NonPaidStatuses returns the non-paid status set, for persistence-layer
// filters like the reconciliation sweep.
func NonPaidStatuses() []PaymentStatus {
	statuses := make([]PaymentStatus, 0, len(nonPaidStatuses))
	for s := range nonPaidStatuses {
		statuses = append(statuses, s)
	}
	return statuses
}

// IsNonPaid reports whether the payment still owes money.
func (p *Payment) IsNonPaid() bool {
	return nonPaidStatuses[p.Status]
}

func (p *Payment) IsOverPaid() bool  { return p.Status == PaymentOverpaid }
func (p *Payment) IsUnderPaid() bool { return p.Status == PaymentUnderpaid }

// PendingAmount returns the remaining unpaid portion as a 2-decimal string,
// clamped at zero. With no processor response yet the full amount is pending.
func (p *Payment) PendingAmount() string {
	amount := p.amountDecimal()
	if p.IsNonPaid() && (p.AmountReceived == nil || *p.AmountReceived == "") {
		return amount.StringFixed(2)
	}
	pending := amount.Sub(p.receivedDecimal())
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return pending.StringFixed(2)
}

// OverpaidAmount returns the excess received beyond the owed amount. Only
// meaningful in OVERPAID; zero everywhere else, clamped at zero.
func (p *Payment) OverpaidAmount() string {
	if p.Status != PaymentOverpaid || p.AmountReceived == nil {
		return decimal.Zero.StringFixed(2)
	}
	over := p.receivedDecimal().Sub(p.amountDecimal())
	if over.IsNegative() {
		over = decimal.Zero
	}
	return over.StringFixed(2)
}

// IsRecentPayment reports whether the payment was created within the recency
// window. A payment without a creation timestamp is never recent.
func (p *Payment) IsRecentPayment(now time.Time) bool {
	if p.CreatedAt == nil {
		return false
	}
	age := now.Sub(*p.CreatedAt)
	return age >= 0 && age <= RecentPaymentWindow
}

func (p *Payment) amountDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p *Payment) receivedDecimal() decimal.Decimal {
	if p.AmountReceived == nil || *p.AmountReceived == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*p.AmountReceived)
	if err != nil {
		return decimal.Zero
	}
	return d
}
