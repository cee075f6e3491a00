// Package reconciliation bridges Stripe state to domain state exactly once
// per distinct processor event. Redelivered webhooks are recognized through
// the payment event ledger and its unique index on the Stripe event id.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// Outcome classifies one reconciliation attempt. The string value is what
// gets persisted under the "outcome" metadata key of reconciliation events.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeDataMissing Outcome = "stripe_data_missing"
	OutcomeError       Outcome = "error"
)

// WebhookPayload carries the fields the webhook handler extracted from the
// Stripe event body. Amounts are decimal strings in major units.
type WebhookPayload struct {
	PaymentID       *string
	PaymentIntentID *string
	SessionID       *string
	AmountReceived  *string
	Currency        string
	Metadata        map[string]interface{}
}

// Notifier is the notification collaborator. The engine only reports state
// changes; delivery tracking lives on the email events themselves.
type Notifier interface {
	PaymentStateChanged(payment *models.Payment)
}

// Engine applies processor state to payments idempotently.
type Engine struct {
	db         *gorm.DB
	processor  ProcessorClient
	notifier   Notifier
	maxRetries int
	staleAfter time.Duration
	now        func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(db *gorm.DB, processor ProcessorClient, opts ...Option) *Engine {
	e := &Engine{
		db:         db,
		processor:  processor,
		maxRetries: 5,
		staleAfter: 30 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleWebhook is the reconciliation entry point for one Stripe callback.
// The same stripe event id can arrive any number of times, concurrently
// included; exactly one delivery mutates domain state.
func (e *Engine) HandleWebhook(ctx context.Context, stripeEventID string, eventType models.PaymentEventType, payload WebhookPayload) (Outcome, error) {
	event, outcome, err := e.loadOrCreateWebhookEvent(ctx, stripeEventID, eventType, payload)
	if outcome == OutcomeDuplicate || err != nil {
		return outcome, err
	}

	payment, err := e.resolvePayment(ctx, payload)
	if err != nil {
		e.failEvent(ctx, event, fmt.Sprintf("payment not found: %v", err))
		return OutcomeError, err
	}

	received := payload.AmountReceived
	if received == nil && payload.PaymentIntentID != nil && eventNeedsAmount(eventType) {
		intent, ferr := e.processor.GetPaymentIntent(ctx, *payload.PaymentIntentID)
		if ferr != nil {
			e.failEvent(ctx, event, fmt.Sprintf("processor lookup failed: %v", ferr))
			return OutcomeError, ferr
		}
		received = intent.AmountReceived
	}

	if received == nil && eventNeedsAmount(eventType) {
		e.failEvent(ctx, event, string(OutcomeDataMissing))
		e.appendReconciliationEvent(ctx, payment.ID, string(OutcomeDataMissing), false, nil, nil)
		return OutcomeDataMissing, nil
	}

	if err := e.applyAndClose(ctx, payment, event, eventType, payload, received); err != nil {
		return OutcomeError, err
	}
	return OutcomeSuccess, nil
}

// Sweep re-reads authoritative processor state for stale non-paid payments
// that already have a payment intent. Each payment gets at most one attempt
// per pass and at most maxRetries failed passes overall.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	cutoff := e.now().Add(-e.staleAfter)

	var payments []models.Payment
	err := e.db.WithContext(ctx).
		Where("status IN ?", models.NonPaidStatuses()).
		Where("stripe_payment_intent_id <> ''").
		Where("created_at < ?", cutoff).
		Find(&payments).Error
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for i := range payments {
		if e.reconcilePayment(ctx, &payments[i]) {
			reconciled++
		}
	}
	return reconciled, nil
}

func (e *Engine) reconcilePayment(ctx context.Context, payment *models.Payment) bool {
	pending, err := e.pendingReconciliationEvent(ctx, payment.ID)
	if err != nil {
		utils.LogError(err, "Sweep: cannot read pending events for payment "+payment.ID)
		return false
	}
	if pending != nil && pending.RetryCount >= e.maxRetries {
		return false
	}

	intent, err := e.processor.GetPaymentIntent(ctx, payment.StripePaymentIntentId)
	if err != nil {
		e.recordSweepFailure(ctx, payment.ID, pending, fmt.Sprintf("processor lookup failed: %v", err))
		return false
	}
	if intent.AmountReceived == nil && intent.Status == stripe.PaymentIntentStatusSucceeded {
		e.recordSweepFailure(ctx, payment.ID, pending, string(OutcomeDataMissing))
		return false
	}

	newStatus := statusFromIntent(payment, intent)
	if newStatus == payment.Status && sameAmount(payment.AmountReceived, intent.AmountReceived) {
		// Authoritative state unchanged since the last pass: no ledger row,
		// no repeated notification.
		return false
	}
	if err := e.persistTransition(ctx, payment, newStatus, intent.AmountReceived); err != nil {
		e.recordSweepFailure(ctx, payment.ID, pending, fmt.Sprintf("persist failed: %v", err))
		return false
	}

	now := e.now()
	if pending != nil {
		pending.MarkProcessed(now, intent.AmountReceived, &payment.Status)
		if err := e.db.WithContext(ctx).Save(pending).Error; err != nil {
			utils.LogError(err, "Sweep: cannot close pending event for payment "+payment.ID)
		}
	}
	e.appendReconciliationEvent(ctx, payment.ID, string(OutcomeSuccess), true, intent.AmountReceived, &payment.Status)
	if e.notifier != nil {
		e.notifier.PaymentStateChanged(payment)
	}
	return true
}

// loadOrCreateWebhookEvent returns the ledger row for this stripe event id,
// creating it when first seen. A processed row, or an insert conflict on the
// unique event id index, means duplicate delivery.
func (e *Engine) loadOrCreateWebhookEvent(ctx context.Context, stripeEventID string, eventType models.PaymentEventType, payload WebhookPayload) (*models.PaymentEvent, Outcome, error) {
	var existing models.PaymentEvent
	err := e.db.WithContext(ctx).Where("stripe_event_id = ?", stripeEventID).First(&existing).Error
	if err == nil {
		if existing.Processed {
			utils.LogInfo("Duplicate Stripe event discarded: " + stripeEventID)
			return nil, OutcomeDuplicate, nil
		}
		return &existing, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, OutcomeError, err
	}

	event, err := models.NewWebhookEvent(stripeEventID, eventType, payload.PaymentID, payload.PaymentIntentID, payload.SessionID, payload.AmountReceived, payload.Metadata)
	if err != nil {
		return nil, OutcomeError, err
	}
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		if isUniqueViolation(err) {
			// A concurrent delivery of the same event won the insert race.
			utils.LogInfo("Concurrent duplicate Stripe event discarded: " + stripeEventID)
			return nil, OutcomeDuplicate, nil
		}
		return nil, OutcomeError, err
	}
	return event, "", nil
}

func (e *Engine) resolvePayment(ctx context.Context, payload WebhookPayload) (*models.Payment, error) {
	var payment models.Payment
	q := e.db.WithContext(ctx)

	switch {
	case payload.PaymentID != nil && *payload.PaymentID != "":
		q = q.Where("id = ?", *payload.PaymentID)
	case payload.PaymentIntentID != nil && *payload.PaymentIntentID != "":
		q = q.Where("stripe_payment_intent_id = ?", *payload.PaymentIntentID)
	case payload.SessionID != nil && *payload.SessionID != "":
		q = q.Where("stripe_session_id = ?", *payload.SessionID)
	default:
		return nil, fmt.Errorf("payload carries no payment reference")
	}

	if err := q.First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// applyAndClose runs the state transition, persists the payment and closes
// the webhook event, all in one transaction.
func (e *Engine) applyAndClose(ctx context.Context, payment *models.Payment, event *models.PaymentEvent, eventType models.PaymentEventType, payload WebhookPayload, received *string) error {
	newStatus := NextStatus(payment.Status, eventType, payment.Amount, received)
	now := e.now()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": newStatus}
		if received != nil {
			updates["amount_received"] = *received
		}
		if payload.PaymentIntentID != nil && payment.StripePaymentIntentId == "" {
			updates["stripe_payment_intent_id"] = *payload.PaymentIntentID
		}
		if err := tx.Model(payment).Updates(updates).Error; err != nil {
			return err
		}

		paymentID := payment.ID
		event.PaymentID = &paymentID
		event.MarkProcessed(now, received, &newStatus)
		if err := tx.Save(event).Error; err != nil {
			return err
		}

		recEvent, err := models.NewReconciliationEvent(payment.ID, string(OutcomeSuccess), true, received, &newStatus, nil, now)
		if err != nil {
			return err
		}
		return tx.Create(recEvent).Error
	})
	if err != nil {
		e.failEvent(ctx, event, fmt.Sprintf("apply failed: %v", err))
		return err
	}

	payment.Status = newStatus
	if received != nil {
		payment.AmountReceived = received
	}
	if e.notifier != nil {
		e.notifier.PaymentStateChanged(payment)
	}
	return nil
}

func (e *Engine) persistTransition(ctx context.Context, payment *models.Payment, newStatus models.PaymentStatus, received *string) error {
	updates := map[string]interface{}{"status": newStatus}
	if received != nil {
		updates["amount_received"] = *received
	}
	if err := e.db.WithContext(ctx).Model(payment).Updates(updates).Error; err != nil {
		return err
	}
	payment.Status = newStatus
	if received != nil {
		payment.AmountReceived = received
	}
	return nil
}

func (e *Engine) pendingReconciliationEvent(ctx context.Context, paymentID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	err := e.db.WithContext(ctx).
		Where("payment_id = ? AND event_type = ? AND processed = ?", paymentID, models.EventReconciliationRun, false).
		Order("created_at desc").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// recordSweepFailure keeps one open reconciliation event per payment and
// bumps its retry count instead of stacking new records.
func (e *Engine) recordSweepFailure(ctx context.Context, paymentID string, pending *models.PaymentEvent, message string) {
	if pending != nil {
		pending.RecordFailure(message)
		if err := e.db.WithContext(ctx).Save(pending).Error; err != nil {
			utils.LogError(err, "Sweep: cannot update failed event for payment "+paymentID)
		}
		return
	}

	event, err := models.NewReconciliationEvent(paymentID, message, false, nil, nil, nil, e.now())
	if err != nil {
		utils.LogError(err, "Sweep: cannot build failure event for payment "+paymentID)
		return
	}
	event.RecordFailure(message)
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		utils.LogError(err, "Sweep: cannot persist failure event for payment "+paymentID)
	}
}

func (e *Engine) appendReconciliationEvent(ctx context.Context, paymentID, outcome string, processed bool, received *string, status *models.PaymentStatus) {
	event, err := models.NewReconciliationEvent(paymentID, outcome, processed, received, status, nil, e.now())
	if err != nil {
		utils.LogError(err, "Cannot build reconciliation event for payment "+paymentID)
		return
	}
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		utils.LogError(err, "Cannot persist reconciliation event for payment "+paymentID)
	}
}

func (e *Engine) failEvent(ctx context.Context, event *models.PaymentEvent, message string) {
	event.RecordFailure(message)
	if err := e.db.WithContext(ctx).Save(event).Error; err != nil {
		utils.LogError(err, "Cannot persist failed payment event")
	}
}

func eventNeedsAmount(eventType models.PaymentEventType) bool {
	switch eventType {
	case models.EventSessionCompleted, models.EventSessionAsyncCompleted, models.EventPaymentSucceeded:
		return true
	default:
		return false
	}
}

// NextStatus is the state transition policy: exact decimal comparison of
// received against owed, with failure and requires-action short circuits.
// A terminal success state is never reverted by a later non-success read.
func NextStatus(current models.PaymentStatus, eventType models.PaymentEventType, amount string, received *string) models.PaymentStatus {
	next := computeStatus(eventType, amount, received)
	if isTerminalSuccess(current) && !isTerminalSuccess(next) {
		return current
	}
	return next
}

func computeStatus(eventType models.PaymentEventType, amount string, received *string) models.PaymentStatus {
	switch eventType {
	case models.EventPaymentFailed:
		return models.PaymentFailed
	case models.EventRequiresAction:
		return models.PaymentRequiresAction
	}

	owed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.PaymentUnpaid
	}
	var got decimal.Decimal
	if received != nil {
		if d, err := decimal.NewFromString(*received); err == nil {
			got = d
		}
	}

	switch {
	case got.IsZero():
		return models.PaymentUnpaid
	case got.Equal(owed):
		if eventType == models.EventPaymentSucceeded {
			return models.PaymentSucceeded
		}
		return models.PaymentPaid
	case got.GreaterThan(owed):
		return models.PaymentOverpaid
	default:
		return models.PaymentUnderpaid
	}
}

func statusFromIntent(payment *models.Payment, intent *ProcessorIntent) models.PaymentStatus {
	var eventType models.PaymentEventType
	switch intent.Status {
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		eventType = models.EventRequiresAction
	case stripe.PaymentIntentStatusCanceled:
		eventType = models.EventPaymentFailed
	default:
		eventType = models.EventPaymentSucceeded
	}
	return NextStatus(payment.Status, eventType, payment.Amount, intent.AmountReceived)
}

func isTerminalSuccess(status models.PaymentStatus) bool {
	switch status {
	case models.PaymentSucceeded, models.PaymentPaid, models.PaymentOverpaid:
		return true
	default:
		return false
	}
}

// sameAmount compares two decimal-string amounts by value, nil meaning "no
// amount reported".
func sameAmount(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	da, errA := decimal.NewFromString(*a)
	db, errB := decimal.NewFromString(*b)
	if errA != nil || errB != nil {
		return *a == *b
	}
	return da.Equal(db)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
