package routes

import (
	stripeHandler "github.com/AngelLY12/CBTa71-sub002/handlers/stripe"

	"github.com/gin-gonic/gin"
)

func StripeRoutes(r *gin.Engine) {
	// Authenticated by signature, not by JWT
	r.POST("/stripe/webhook", stripeHandler.StripeWebhookHandler)
}
