package main

import (
	"flag"
	"log"

	"quizbox/config"
	"quizbox/handlers"
	"quizbox/middleware"
	"quizbox/models"
	"quizbox/routes"
	"quizbox/seed"
	"quizbox/services"

	"github.com/gin-gonic/gin"
)

func main() {
	runSeed := flag.Bool("seed", false, "seed the database with demo data and exit")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.AnswerOption{},
		&models.Attempt{},
		&models.UserAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if *runSeed {
		if err := seed.Run(db); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
		log.Println("Database seeded")
		return
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	quizService := services.NewQuizService(db, redisClient)
	attemptService := services.NewAttemptService(db, redisClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)

	// Setup Gin router
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, quizHandler, attemptHandler, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
