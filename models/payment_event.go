package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type PaymentEventType string

const (
	// Stripe webhook subtypes.
	EventSessionCompleted      PaymentEventType = "checkout.session.completed"
	EventSessionAsyncCompleted PaymentEventType = "checkout.session.async_payment_succeeded"
	EventPaymentSucceeded      PaymentEventType = "payment_intent.succeeded"
	EventPaymentFailed         PaymentEventType = "payment_intent.payment_failed"
	EventRequiresAction        PaymentEventType = "payment_intent.requires_action"

	// Internal reconciliation pass.
	EventReconciliationRun PaymentEventType = "reconciliation.run"

	// Email notification subtypes.
	EventEmailPaymentCreated  PaymentEventType = "email.payment_created"
	EventEmailPaymentReceived PaymentEventType = "email.payment_received"
	EventEmailPaymentFailed   PaymentEventType = "email.payment_failed"
	EventEmailPaymentReminder PaymentEventType = "email.payment_reminder"
)

var webhookEventTypes = map[PaymentEventType]bool{
	EventSessionCompleted:      true,
	EventSessionAsyncCompleted: true,
	EventPaymentSucceeded:      true,
	EventPaymentFailed:         true,
	EventRequiresAction:        true,
}

var emailEventTypes = map[PaymentEventType]bool{
	EventEmailPaymentCreated:  true,
	EventEmailPaymentReceived: true,
	EventEmailPaymentFailed:   true,
	EventEmailPaymentReminder: true,
}

func (t PaymentEventType) IsWebhook() bool { return webhookEventTypes[t] }
func (t PaymentEventType) IsEmail() bool   { return emailEventTypes[t] }

// OutcomeKey is the fixed metadata key under which a reconciliation event
// records its outcome string.
const OutcomeKey = "outcome"

const EmailStatusPending = "pending"
const EmailStatusDelivered = "delivered"
const EmailStatusFailed = "failed"

// PaymentEvent is the append-only ledger behind idempotent reconciliation.
// The unique index on stripe_event_id is the dedup mechanism for redelivered
// webhooks: an insert conflict means "already seen", not an error. Rows are
// never mutated after creation except through MarkProcessed / RecordFailure.
type PaymentEvent struct {
	ID                    string            `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PaymentID             *string           `json:"paymentId" gorm:"type:uuid;index"`
	StripeEventID         *string           `json:"stripeEventId" gorm:"uniqueIndex"`
	StripePaymentIntentId *string           `json:"stripePaymentIntentId" gorm:"index"`
	StripeSessionId       *string           `json:"stripeSessionId"`
	EventType             PaymentEventType  `json:"eventType" gorm:"type:varchar(60);not null;index"`
	Metadata              datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	AmountReceived        *string           `json:"amountReceived" gorm:"type:numeric(12,2)"`
	Status                *PaymentStatus    `json:"status" gorm:"type:varchar(20)"`
	Processed             bool              `json:"processed" gorm:"default:false;index"`
	ErrorMessage          *string           `json:"errorMessage"`
	RetryCount            int               `json:"retryCount" gorm:"default:0"`
	ProcessedAt           *time.Time        `json:"processedAt"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// NewWebhookEvent records one Stripe callback. It always starts unprocessed;
// applying it to domain state is the reconciliation engine's job.
func NewWebhookEvent(stripeEventID string, eventType PaymentEventType, paymentID, intentID, sessionID *string, amountReceived *string, metadata map[string]interface{}) (*PaymentEvent, error) {
	if stripeEventID == "" {
		return nil, fmt.Errorf("webhook event requires a stripe event id")
	}
	if !eventType.IsWebhook() {
		return nil, fmt.Errorf("event type %s is not a webhook event type", eventType)
	}

	return &PaymentEvent{
		StripeEventID:         &stripeEventID,
		PaymentID:             paymentID,
		StripePaymentIntentId: intentID,
		StripeSessionId:       sessionID,
		EventType:             eventType,
		Metadata:              datatypes.JSONMap(metadata),
		AmountReceived:        amountReceived,
		Processed:             false,
		RetryCount:            0,
	}, nil
}

// NewReconciliationEvent records the outcome of one reconciliation pass.
// Unless the caller asks for an unprocessed record (replay/backfill tooling),
// the event is born processed with processedAt set to creation time.
func NewReconciliationEvent(paymentID string, outcome string, processed bool, amountReceived *string, status *PaymentStatus, metadata map[string]interface{}, now time.Time) (*PaymentEvent, error) {
	if outcome == "" {
		return nil, fmt.Errorf("reconciliation event requires an outcome")
	}

	meta := map[string]interface{}{}
	for k, v := range metadata {
		meta[k] = v
	}
	meta[OutcomeKey] = outcome

	ev := &PaymentEvent{
		PaymentID:      &paymentID,
		EventType:      EventReconciliationRun,
		Metadata:       datatypes.JSONMap(meta),
		AmountReceived: amountReceived,
		Status:         status,
		Processed:      processed,
	}
	if processed {
		processedAt := now
		ev.ProcessedAt = &processedAt
	}
	return ev, nil
}

// NewEmailEvent records a notification attempt. Metadata is seeded with the
// delivery-tracking schema; caller-supplied extras win on key collision.
// An initial status of "delivered" marks the event processed immediately.
func NewEmailEvent(eventType PaymentEventType, paymentID *string, recipientEmail, initialStatus string, extra map[string]interface{}, now time.Time) (*PaymentEvent, error) {
	if !eventType.IsEmail() {
		return nil, fmt.Errorf("event type %s is not an email event type", eventType)
	}
	if initialStatus == "" {
		initialStatus = EmailStatusPending
	}

	meta := map[string]interface{}{
		"email_status":    initialStatus,
		"recipient_email": recipientEmail,
		"initial_status":  initialStatus,
		"created_at":      now.Format(time.RFC3339),
		"attempt_count":   0,
		"last_attempt_at": nil,
		"delivered_at":    nil,
		"failed_at":       nil,
	}
	for k, v := range extra {
		meta[k] = v
	}

	ev := &PaymentEvent{
		PaymentID: paymentID,
		EventType: eventType,
		Metadata:  datatypes.JSONMap(meta),
		Processed: false,
	}
	if initialStatus == EmailStatusDelivered {
		processedAt := now
		ev.Processed = true
		ev.ProcessedAt = &processedAt
	}
	return ev, nil
}

// MarkProcessed closes the event, snapshotting the resulting amount and
// status when the caller has them.
func (ev *PaymentEvent) MarkProcessed(now time.Time, amountReceived *string, status *PaymentStatus) {
	ev.Processed = true
	ev.ProcessedAt = &now
	if amountReceived != nil {
		ev.AmountReceived = amountReceived
	}
	if status != nil {
		ev.Status = status
	}
	ev.ErrorMessage = nil
}

// RecordFailure keeps the event open for a later retry instead of creating a
// duplicate record for the same processor event. The retry count starts at 0
// and only grows on attempts after the first recorded failure.
func (ev *PaymentEvent) RecordFailure(message string) {
	if ev.ErrorMessage != nil {
		ev.RetryCount++
	}
	ev.Processed = false
	ev.ErrorMessage = &message
}
