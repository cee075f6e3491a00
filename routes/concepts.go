package routes

import (
	"github.com/AngelLY12/CBTa71-sub002/handlers/concepts"
	"github.com/AngelLY12/CBTa71-sub002/middleware"

	"github.com/gin-gonic/gin"
)

func ConceptsRoutes(r *gin.Engine) {
	// Authenticated reads
	conceptsPublicRoutes := r.Group("/concepts")
	conceptsPublicRoutes.Use(middleware.JWTAuth())
	{
		conceptsPublicRoutes.GET("", concepts.GetAllConcepts)
		conceptsPublicRoutes.GET("/:id/applies", concepts.CheckApplies)
	}

	// Admin-only writes
	conceptsAdminRoutes := r.Group("/concepts")
	conceptsAdminRoutes.Use(middleware.JWTAuth())
	conceptsAdminRoutes.Use(middleware.AdminAuth())
	{
		conceptsAdminRoutes.POST("", concepts.CreateConcept)
		conceptsAdminRoutes.PATCH("/:id/:action", concepts.UpdateConceptStatus)
	}
}
