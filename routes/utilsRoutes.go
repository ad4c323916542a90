package routes

import (
	"cleanstreet-be/controllers"

	"github.com/gin-gonic/gin"
)

// UtilsRoutes sets up the geocoding proxy routes
func UtilsRoutes(r *gin.Engine) {
	utils := r.Group("/api/utils")
	{
		utils.GET("/forward", controllers.ForwardGeocode)
		utils.GET("/reverse", controllers.ReverseGeocode)
	}
}
