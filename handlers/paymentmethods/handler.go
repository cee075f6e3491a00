package paymentmethods

import (
	"net/http"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
)

type paymentMethodInput struct {
	StripePaymentMethodId string `json:"stripePaymentMethodId" binding:"required"`
	Brand                 string `json:"brand"`
	Last4                 string `json:"last4"`
	ExpMonth              *int   `json:"expMonth"`
	ExpYear               *int   `json:"expYear"`
}

// @Summary Register a payment method
// @Description Store the reference of a card tokenized by Stripe
// @Tags payment-methods
// @Accept json
// @Produce json
// @Param method body paymentMethodInput true "Tokenized card reference"
// @Security BearerAuth
// @Success 201 {object} models.PaymentMethod
// @Failure 400 {object} map[string]string "error: token required"
// @Router /payment-methods [post]
func CreatePaymentMethod(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input paymentMethodInput
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	var payer models.User
	if err := db.DB.First(&payer, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	method := models.PaymentMethod{
		UserID:                payer.ID,
		StripePaymentMethodId: input.StripePaymentMethodId,
		Brand:                 input.Brand,
		Last4:                 input.Last4,
		ExpMonth:              input.ExpMonth,
		ExpYear:               input.ExpYear,
	}
	if err := db.DB.Create(&method).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating payment method in CreatePaymentMethod")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error storing the payment method"})
		return
	}

	c.JSON(http.StatusCreated, method)
}

// @Summary List my payment methods
// @Tags payment-methods
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PaymentMethod
// @Router /payment-methods [get]
func GetMyPaymentMethods(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var methods []models.PaymentMethod
	if err := db.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&methods).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payment methods"})
		return
	}
	c.JSON(http.StatusOK, methods)
}

// @Summary Delete a payment method
// @Tags payment-methods
// @Produce json
// @Param id path string true "Payment method ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Payment method deleted"
// @Failure 404 {object} map[string]string "error: Payment method not found"
// @Router /payment-methods/{id} [delete]
func DeletePaymentMethod(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var method models.PaymentMethod
	if err := db.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&method).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
		return
	}

	if err := db.DB.Delete(&method).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting the payment method"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
}
