package routes

import (
	"github.com/AngelLY12/CBTa71-sub002/handlers/auth"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)
}
