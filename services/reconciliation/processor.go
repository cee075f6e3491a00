package reconciliation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// ProcessorIntent is the authoritative snapshot of a payment intent as the
// processor sees it. AmountReceived is a decimal string in major units, nil
// when the processor did not report one.
type ProcessorIntent struct {
	ID             string
	Status         stripe.PaymentIntentStatus
	AmountReceived *string
	Currency       string
}

// ProcessorClient is the on-demand lookup side of the Stripe contract. The
// webhook side arrives through HandleWebhook payloads.
type ProcessorClient interface {
	GetPaymentIntent(ctx context.Context, intentID string) (*ProcessorIntent, error)
}

type stripeClient struct {
	timeout time.Duration
}

// NewStripeClient returns a ProcessorClient backed by the stripe-go package
// client. Every lookup is bounded by the given timeout.
func NewStripeClient(timeout time.Duration) ProcessorClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &stripeClient{timeout: timeout}
}

func (s *stripeClient) GetPaymentIntent(ctx context.Context, intentID string) (*ProcessorIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, err
	}

	intent := &ProcessorIntent{
		ID:       pi.ID,
		Status:   pi.Status,
		Currency: string(pi.Currency),
	}
	if pi.AmountReceived > 0 {
		received := MinorUnitsToAmount(pi.AmountReceived)
		intent.AmountReceived = &received
	}
	return intent, nil
}

// MinorUnitsToAmount converts Stripe's integer minor units (cents) to the
// exact decimal string used everywhere in this system.
func MinorUnitsToAmount(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-2).StringFixed(2)
}

// AmountToMinorUnits converts a decimal amount string to Stripe minor units.
func AmountToMinorUnits(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}
