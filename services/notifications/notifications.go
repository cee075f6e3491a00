// Package notifications turns payment state changes into email PaymentEvents
// and tracks delivery on the event metadata.
package notifications

import (
	"fmt"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/utils"
	mailsmodels "github.com/AngelLY12/CBTa71-sub002/utils/mails-models"

	"gorm.io/gorm"
)

// Sender abstracts the smtp transport so tests can capture outgoing mail.
type Sender func(email string, message []byte) error

type Service struct {
	db   *gorm.DB
	send Sender
	now  func() time.Time
}

type Option func(*Service)

func WithSender(s Sender) Option {
	return func(svc *Service) { svc.send = s }
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	svc := &Service{
		db:   db,
		send: utils.SendMail,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Notify creates the email event, attempts delivery once and records the
// result on the event metadata. Failed sends stay pending for the operator;
// they are visible in the ledger, never silently dropped.
func (s *Service) Notify(eventType models.PaymentEventType, payment *models.Payment, recipient string) error {
	paymentID := payment.ID
	event, err := models.NewEmailEvent(eventType, &paymentID, recipient, models.EmailStatusPending, map[string]interface{}{
		"concept_name": payment.ConceptName,
		"amount":       payment.Amount,
	}, s.now())
	if err != nil {
		return err
	}
	if err := s.db.Create(event).Error; err != nil {
		return err
	}

	body, err := renderBody(eventType, payment)
	if err != nil {
		s.recordFailure(event, err)
		return err
	}

	now := s.now()
	event.Metadata["attempt_count"] = attemptCount(event) + 1
	event.Metadata["last_attempt_at"] = now.Format(time.RFC3339)

	if err := s.send(recipient, body); err != nil {
		s.recordFailure(event, err)
		return err
	}

	event.Metadata["email_status"] = models.EmailStatusDelivered
	event.Metadata["delivered_at"] = now.Format(time.RFC3339)
	event.MarkProcessed(now, nil, nil)
	if err := s.db.Save(event).Error; err != nil {
		utils.LogError(err, "Cannot persist delivered email event")
		return err
	}
	return nil
}

// PaymentStateChanged implements the reconciliation engine's Notifier. The
// recipient email travels on the payment method detail snapshot when the
// payer record is not loaded; otherwise callers use Notify directly.
func (s *Service) PaymentStateChanged(payment *models.Payment) {
	if payment.UserID == nil {
		return
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", *payment.UserID).Error; err != nil {
		utils.LogError(err, "Notification skipped: payer not found for payment "+payment.ID)
		return
	}

	eventType := models.EventEmailPaymentReceived
	if payment.Status == models.PaymentFailed {
		eventType = models.EventEmailPaymentFailed
	}
	if err := s.Notify(eventType, payment, user.Email); err != nil {
		utils.LogError(err, "Notification failed for payment "+payment.ID)
	}
}

func (s *Service) recordFailure(event *models.PaymentEvent, cause error) {
	now := s.now()
	event.Metadata["email_status"] = models.EmailStatusFailed
	event.Metadata["failed_at"] = now.Format(time.RFC3339)
	event.RecordFailure(cause.Error())
	if err := s.db.Save(event).Error; err != nil {
		utils.LogError(err, "Cannot persist failed email event")
	}
}

func renderBody(eventType models.PaymentEventType, payment *models.Payment) ([]byte, error) {
	switch eventType {
	case models.EventEmailPaymentCreated:
		return mailsmodels.PaymentCreated(payment.ConceptName, payment.Amount, payment.CheckoutURL), nil
	case models.EventEmailPaymentReceived:
		return mailsmodels.PaymentReceived(payment.ConceptName, payment.Amount, payment.PendingAmount()), nil
	case models.EventEmailPaymentFailed:
		return mailsmodels.PaymentFailed(payment.ConceptName, payment.Amount), nil
	case models.EventEmailPaymentReminder:
		return mailsmodels.PaymentReminder(payment.ConceptName, payment.PendingAmount()), nil
	default:
		return nil, fmt.Errorf("no mail body for event type %s", eventType)
	}
}

func attemptCount(event *models.PaymentEvent) int {
	switch v := event.Metadata["attempt_count"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
