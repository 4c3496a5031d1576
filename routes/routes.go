package routes

import (
	"dataset-review-api/controllers"
	"dataset-review-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Dataset Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Datasets
			datasets := protected.Group("/datasets")
			{
				datasets.POST("", controllers.CreateDataset)
				datasets.GET("", controllers.ListDatasetsForReview)
				datasets.GET("/:id", controllers.GetDataset)
				datasets.PUT("/:id", controllers.UpdateDataset)

				// Reviewer capability is checked in the service, not here:
				// non-admin reviewers hold a flag, not a role.
				datasets.POST("/:id/review", controllers.ReviewDataset)
			}

			// Reviewer capability management
			reviewers := protected.Group("/reviewers")
			{
				reviewers.GET("/:user", controllers.CheckReviewer)

				// Only admins can list, grant and revoke
				reviewers.GET("", middleware.RequireAdmin(), controllers.ListReviewers)
				reviewers.POST("/:user", middleware.RequireAdmin(), controllers.GrantReviewer)
				reviewers.DELETE("/:user", middleware.RequireAdmin(), controllers.RevokeReviewer)
			}

			// In-app notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}
	}
}
