package routes

import (
	"net/http"

	"quizbox/handlers"
	"quizbox/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	attemptHandler *handlers.AttemptHandler,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public quiz catalog (correct answers stripped)
		quizzes := api.Group("/quizzes")
		{
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.GET("/:id", quizHandler.GetQuiz)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/logout", authHandler.Logout)

			// Attempt routes
			attempts := protected.Group("/attempts")
			{
				attempts.GET("", attemptHandler.MyAttempts)
				attempts.POST("", attemptHandler.StartAttempt)
				attempts.POST("/:id/submit", attemptHandler.SubmitAttempt)
				attempts.GET("/:id/result", attemptHandler.GetResult)
			}

			// Admin routes (quiz/question authoring)
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/quizzes", quizHandler.AdminListQuizzes)
				admin.POST("/quizzes", quizHandler.CreateQuiz)
				admin.GET("/quizzes/:id", quizHandler.AdminGetQuiz)
				admin.PUT("/quizzes/:id", quizHandler.UpdateQuiz)
				admin.DELETE("/quizzes/:id", quizHandler.DeleteQuiz)
				admin.POST("/quizzes/:id/questions", quizHandler.CreateQuestion)
				admin.DELETE("/questions/:id", quizHandler.DeleteQuestion)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
