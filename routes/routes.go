package routes

import (
	"journal-management-api/controllers"
	"journal-management-api/middleware"
	"journal-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Submissions and the editorial pipeline. Editor capability per
			// journal is resolved inside the services; the route guard only
			// keeps authors out of the editorial endpoints.
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/decisions", controllers.GetSubmissionDecisions)

				editorial := submissions.Group("")
				editorial.Use(middleware.RequireRole(models.RoleEditor, models.RoleSuperAdmin))
				{
					editorial.POST("/:id/decision", controllers.DecideSubmission)
					editorial.POST("/:id/publish", controllers.PublishSubmission)
				}
			}

			// Articles: DOI registration retry and attempt history
			articles := protected.Group("/articles")
			{
				articles.GET("/:id/registrations", controllers.GetArticleRegistrations)
				articles.POST("/:id/register-doi",
					middleware.RequireRole(models.RoleEditor, models.RoleSuperAdmin),
					controllers.RetryDOIRegistration)
			}

			// Issues
			issues := protected.Group("/issues")
			{
				issues.POST("", middleware.RequireRole(models.RoleEditor, models.RoleSuperAdmin), controllers.CreateIssue)
				issues.PUT("/:id", middleware.RequireRole(models.RoleEditor, models.RoleSuperAdmin), controllers.UpdateIssue)
			}

			// Journal issue listing
			journals := protected.Group("/journals")
			{
				journals.GET("/:id/issues", controllers.GetJournalIssues)
			}
		}
	}
}
