package routes

import (
	"github.com/AngelLY12/CBTa71-sub002/handlers/payments"
	"github.com/AngelLY12/CBTa71-sub002/middleware"

	"github.com/gin-gonic/gin"
)

func PaymentsRoutes(r *gin.Engine) {
	paymentRoutes := r.Group("/payments")
	paymentRoutes.Use(middleware.JWTAuth())
	{
		paymentRoutes.POST("/checkout/:conceptId", payments.CreateCheckoutSession)
		paymentRoutes.GET("", payments.GetMyPayments)
		paymentRoutes.GET("/:id/summary", payments.GetPaymentSummary)
	}
}
