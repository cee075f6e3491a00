package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookEvent(t *testing.T) {
	intentID := "pi_123"
	event, err := NewWebhookEvent("evt_123", EventPaymentSucceeded, nil, &intentID, nil, strPtr("500.00"), map[string]interface{}{"currency": "mxn"})

	require.NoError(t, err)
	assert.Equal(t, "evt_123", *event.StripeEventID)
	assert.False(t, event.Processed)
	assert.Nil(t, event.Status)
	assert.Equal(t, 0, event.RetryCount)
	assert.Equal(t, "mxn", event.Metadata["currency"])
}

func TestNewWebhookEvent_Invalid(t *testing.T) {
	_, err := NewWebhookEvent("", EventPaymentSucceeded, nil, nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewWebhookEvent("evt_123", EventEmailPaymentCreated, nil, nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewWebhookEvent("evt_123", EventReconciliationRun, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestNewReconciliationEvent_DefaultProcessed(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	status := PaymentPaid

	event, err := NewReconciliationEvent("payment-1", "success", true, strPtr("1000.00"), &status, nil, now)

	require.NoError(t, err)
	assert.True(t, event.Processed)
	require.NotNil(t, event.ProcessedAt)
	assert.Equal(t, now, *event.ProcessedAt)
	assert.Equal(t, "success", event.Metadata[OutcomeKey])
	assert.Equal(t, PaymentPaid, *event.Status)
}

func TestNewReconciliationEvent_Unprocessed(t *testing.T) {
	now := time.Now()

	event, err := NewReconciliationEvent("payment-1", "stripe_data_missing", false, nil, nil, nil, now)

	require.NoError(t, err)
	assert.False(t, event.Processed)
	assert.Nil(t, event.ProcessedAt)
	assert.Equal(t, "stripe_data_missing", event.Metadata[OutcomeKey])
}

func TestNewReconciliationEvent_RequiresOutcome(t *testing.T) {
	_, err := NewReconciliationEvent("payment-1", "", true, nil, nil, nil, time.Now())
	assert.Error(t, err)
}

func TestNewEmailEvent_SeedsMetadata(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	paymentID := "payment-1"

	event, err := NewEmailEvent(EventEmailPaymentCreated, &paymentID, "alumno@cbta71.edu.mx", "", nil, now)

	require.NoError(t, err)
	assert.False(t, event.Processed)
	assert.Equal(t, EmailStatusPending, event.Metadata["email_status"])
	assert.Equal(t, "alumno@cbta71.edu.mx", event.Metadata["recipient_email"])
	assert.Equal(t, EmailStatusPending, event.Metadata["initial_status"])
	assert.Equal(t, 0, event.Metadata["attempt_count"])
	assert.Contains(t, event.Metadata, "last_attempt_at")
	assert.Contains(t, event.Metadata, "delivered_at")
	assert.Contains(t, event.Metadata, "failed_at")
}

func TestNewEmailEvent_CallerKeysWin(t *testing.T) {
	event, err := NewEmailEvent(EventEmailPaymentFailed, nil, "alumno@cbta71.edu.mx", "", map[string]interface{}{
		"attempt_count": 3,
		"concept_name":  "Inscripción",
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 3, event.Metadata["attempt_count"])
	assert.Equal(t, "Inscripción", event.Metadata["concept_name"])
}

func TestNewEmailEvent_DeliveredIsProcessed(t *testing.T) {
	now := time.Now()

	event, err := NewEmailEvent(EventEmailPaymentReceived, nil, "alumno@cbta71.edu.mx", EmailStatusDelivered, nil, now)

	require.NoError(t, err)
	assert.True(t, event.Processed)
	require.NotNil(t, event.ProcessedAt)
}

func TestNewEmailEvent_RejectsNonEmailType(t *testing.T) {
	_, err := NewEmailEvent(EventPaymentSucceeded, nil, "alumno@cbta71.edu.mx", "", nil, time.Now())
	assert.Error(t, err)

	_, err = NewEmailEvent(EventReconciliationRun, nil, "alumno@cbta71.edu.mx", "", nil, time.Now())
	assert.Error(t, err)
}

func TestMarkProcessed(t *testing.T) {
	event, err := NewWebhookEvent("evt_99", EventSessionCompleted, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	now := time.Now()
	status := PaymentPaid
	event.MarkProcessed(now, strPtr("250.00"), &status)

	assert.True(t, event.Processed)
	assert.Equal(t, now, *event.ProcessedAt)
	assert.Equal(t, "250.00", *event.AmountReceived)
	assert.Equal(t, PaymentPaid, *event.Status)
	assert.Nil(t, event.ErrorMessage)
}

func TestRecordFailure_RetryCountGrowsOnLaterAttempts(t *testing.T) {
	event, err := NewWebhookEvent("evt_77", EventPaymentSucceeded, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	event.RecordFailure("processor timeout")
	assert.False(t, event.Processed)
	assert.Equal(t, 0, event.RetryCount)
	assert.Equal(t, "processor timeout", *event.ErrorMessage)

	event.RecordFailure("processor timeout")
	assert.Equal(t, 1, event.RetryCount)

	event.RecordFailure("stripe_data_missing")
	assert.Equal(t, 2, event.RetryCount)
	assert.Equal(t, "stripe_data_missing", *event.ErrorMessage)
}

func TestEventTypeClassification(t *testing.T) {
	assert.True(t, EventSessionCompleted.IsWebhook())
	assert.True(t, EventSessionAsyncCompleted.IsWebhook())
	assert.False(t, EventReconciliationRun.IsWebhook())
	assert.False(t, EventEmailPaymentCreated.IsWebhook())

	assert.True(t, EventEmailPaymentReminder.IsEmail())
	assert.False(t, EventPaymentFailed.IsEmail())
}
