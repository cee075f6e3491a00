package payments

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/services/eligibility"
	"github.com/AngelLY12/CBTa71-sub002/services/notifications"
	"github.com/AngelLY12/CBTa71-sub002/services/reconciliation"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"gorm.io/gorm"
)

// @Summary Create a Stripe Checkout session for a concept
// @Description Start a Stripe payment for a billable concept the payer is eligible for. Returns the Checkout URL.
// @Tags payments
// @Produce json
// @Param conceptId path string true "ID of the payment concept"
// @Security BearerAuth
// @Success 201 {object} map[string]string "paymentId, sessionId, url"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Concept does not apply"
// @Failure 404 {object} map[string]string "error: Concept not found"
// @Failure 500 {object} map[string]string "error: Stripe error or server error"
// @Router /payments/checkout/{conceptId} [post]
func CreateCheckoutSession(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var payer models.User
	if err := db.DB.First(&payer, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in CreateCheckoutSession")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var concept models.PaymentConcept
	if err := db.DB.First(&concept, "id = ?", c.Param("conceptId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Concept not found"})
		return
	}

	if !eligibility.Applies(&concept, eligibility.CandidateFromUser(&payer), time.Now()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This concept does not apply to you"})
		return
	}

	// One open billing instance per payer and concept.
	var dup models.Payment
	err := db.DB.Where("user_id = ? AND concept_id = ? AND status IN ?",
		payer.ID, concept.ID,
		[]models.PaymentStatus{models.PaymentDefault, models.PaymentRequiresAction}).
		First(&dup).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending payment for this concept", "paymentId": dup.ID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogErrorWithUser(userID, err, "Error checking open payments in CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking existing payments"})
		return
	}

	if payer.StripeCustomerId != "" {
		if _, err := customer.Get(payer.StripeCustomerId, nil); err != nil {
			payer.StripeCustomerId = ""
		}
	}
	if payer.StripeCustomerId == "" {
		cust, err := customer.New(&stripe.CustomerParams{
			Name:  stripe.String(payer.FullName),
			Email: stripe.String(payer.Email),
		})
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Error creating Stripe customer in CreateCheckoutSession")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the Stripe customer"})
			return
		}
		db.DB.Model(&payer).Update("stripe_customer_id", cust.ID)
		payer.StripeCustomerId = cust.ID
	}

	unitAmount, err := reconciliation.AmountToMinorUnits(concept.Amount)
	if err != nil {
		utils.LogError(err, "Invalid concept amount in CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid concept amount"})
		return
	}

	createdAt := time.Now()
	payment := models.Payment{
		ConceptName: concept.Name,
		Amount:      concept.Amount,
		Status:      models.PaymentDefault,
		UserID:      &payer.ID,
		ConceptID:   &concept.ID,
		CreatedAt:   &createdAt,
	}
	if err := db.DB.Create(&payment).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating payment in CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the payment"})
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(payer.StripeCustomerId),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID:  stripe.String(payment.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("mxn"),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(concept.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontend + "/payments/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(frontend + "/payments/cancel"),
	}
	// One retry of this request must not open a second session.
	params.SetIdempotencyKey(uuid.NewString())

	sess, err := session.New(params)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating Stripe Checkout session in CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the Checkout session"})
		return
	}

	db.DB.Model(&payment).Updates(map[string]interface{}{
		"stripe_session_id": sess.ID,
		"checkout_url":      sess.URL,
	})
	payment.StripeSessionId = sess.ID
	payment.CheckoutURL = sess.URL

	notifier := notifications.NewService(db.DB)
	if err := notifier.Notify(models.EventEmailPaymentCreated, &payment, payer.Email); err != nil {
		utils.LogErrorWithUser(userID, err, "Payment-created email failed in CreateCheckoutSession")
	}

	utils.LogSuccessWithUser(userID, "Checkout session created for concept "+concept.Name)
	c.JSON(http.StatusCreated, gin.H{
		"paymentId": payment.ID,
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

// @Summary List my payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Payment
// @Router /payments [get]
func GetMyPayments(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var payments []models.Payment
	if err := db.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payments"})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary Payment summary
// @Description Pending amount, overpaid amount and current status for one payment
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "status, pendingAmount, overpaidAmount"
// @Failure 404 {object} map[string]string "error: Payment not found"
// @Router /payments/{id}/summary [get]
func GetPaymentSummary(c *gin.Context) {
	var payment models.Payment
	if err := db.DB.First(&payment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         payment.Status,
		"amount":         payment.Amount,
		"pendingAmount":  payment.PendingAmount(),
		"overpaidAmount": payment.OverpaidAmount(),
		"recent":         payment.IsRecentPayment(time.Now()),
	})
}
