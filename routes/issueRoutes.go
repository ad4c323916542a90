package routes

import (
	"cleanstreet-be/controllers"
	"cleanstreet-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issues", middlewares.AuthMiddleware())
	{
		issue.POST("", middlewares.IssueRateLimiter(5), controllers.ReportIssue)
		issue.GET("", controllers.GetAllIssues)
		issue.GET("/mine", controllers.GetMyIssues)
		issue.GET("/:id", controllers.GetIssue)
		issue.PUT("/:id", controllers.UpdateIssue)
		issue.DELETE("/:id", controllers.DeleteIssue)
		issue.POST("/:id/vote/:type", controllers.ToggleVote)
		issue.POST("/:id/comments", controllers.AddComment)
		issue.DELETE("/:id/comments/:commentId", controllers.DeleteComment)
	}
}
