package stripe

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/services/notifications"
	"github.com/AngelLY12/CBTa71-sub002/services/reconciliation"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// eventTypeMapping restricts processing to the Stripe events the
// reconciliation engine understands. Everything else is acknowledged and
// ignored so Stripe stops redelivering.
var eventTypeMapping = map[stripe.EventType]models.PaymentEventType{
	"checkout.session.completed":               models.EventSessionCompleted,
	"checkout.session.async_payment_succeeded": models.EventSessionAsyncCompleted,
	"payment_intent.succeeded":                 models.EventPaymentSucceeded,
	"payment_intent.payment_failed":            models.EventPaymentFailed,
	"payment_intent.requires_action":           models.EventRequiresAction,
}

// StripeWebhookHandler is the reconciliation entry point for processor
// callbacks. Stripe may deliver the same event several times, concurrently
// included; duplicates are answered 200 without a second domain mutation.
func StripeWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cannot read the request body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe signature verification failed"})
		return
	}

	eventType, handled := eventTypeMapping[event.Type]
	if !handled {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	enginePayload, err := extractPayload(event)
	if err != nil {
		utils.LogError(err, "Cannot parse Stripe event "+event.ID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot parse the event payload"})
		return
	}

	engine := reconciliation.NewEngine(
		db.DB,
		reconciliation.NewStripeClient(0),
		reconciliation.WithNotifier(notifications.NewService(db.DB)),
	)

	outcome, err := engine.HandleWebhook(c.Request.Context(), event.ID, eventType, *enginePayload)
	switch outcome {
	case reconciliation.OutcomeDuplicate:
		c.JSON(http.StatusOK, gin.H{"message": "Duplicate event ignored"})
	case reconciliation.OutcomeSuccess:
		c.JSON(http.StatusOK, gin.H{"message": "Event processed"})
	case reconciliation.OutcomeDataMissing:
		// Recorded in the ledger for operators; Stripe should not retry.
		c.JSON(http.StatusOK, gin.H{"message": "Event recorded, processor data missing"})
	default:
		utils.LogError(err, "Reconciliation failed for Stripe event "+event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing the event"})
	}
}

// extractPayload pulls the payment reference and authoritative amounts out
// of the raw event body. Amounts become exact decimal strings immediately.
func extractPayload(event stripe.Event) (*reconciliation.WebhookPayload, error) {
	out := &reconciliation.WebhookPayload{
		Metadata: map[string]interface{}{"stripe_event_type": string(event.Type)},
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, err
		}
		if session.ID != "" {
			out.SessionID = &session.ID
		}
		if session.ClientReferenceID != "" {
			ref := session.ClientReferenceID
			out.PaymentID = &ref
		}
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			out.PaymentIntentID = &session.PaymentIntent.ID
		}
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid && session.AmountTotal > 0 {
			amount := reconciliation.MinorUnitsToAmount(session.AmountTotal)
			out.AmountReceived = &amount
		}
		out.Currency = string(session.Currency)

	default:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, err
		}
		if pi.ID != "" {
			out.PaymentIntentID = &pi.ID
		}
		if pi.AmountReceived > 0 {
			amount := reconciliation.MinorUnitsToAmount(pi.AmountReceived)
			out.AmountReceived = &amount
		}
		out.Currency = string(pi.Currency)
	}

	return out, nil
}
