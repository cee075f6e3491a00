package routes

import (
	"github.com/AngelLY12/CBTa71-sub002/handlers/ping"

	"github.com/gin-gonic/gin"
)

func PingRoutes(r *gin.Engine) {
	r.GET("/ping", ping.Ping)
}
