package routes

import (
	"cleanstreet-be/controllers"
	"cleanstreet-be/middlewares"
	"cleanstreet-be/models"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin-only routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin",
		middlewares.AuthMiddleware(),
		middlewares.RequireRole(models.RoleAdmin, models.RoleGlobalAdmin))
	{
		admin.GET("/users", controllers.ListUsers)
		admin.GET("/analytics", controllers.GetIssueAnalytics)
	}
}
