package routes

import (
	"github.com/AngelLY12/CBTa71-sub002/handlers/paymentmethods"
	"github.com/AngelLY12/CBTa71-sub002/middleware"

	"github.com/gin-gonic/gin"
)

func PaymentMethodsRoutes(r *gin.Engine) {
	methodRoutes := r.Group("/payment-methods")
	methodRoutes.Use(middleware.JWTAuth())
	{
		methodRoutes.POST("", paymentmethods.CreatePaymentMethod)
		methodRoutes.GET("", paymentmethods.GetMyPaymentMethods)
		methodRoutes.DELETE("/:id", paymentmethods.DeletePaymentMethod)
	}
}
