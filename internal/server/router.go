package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dustinober1/pmp-application-sub002/internal/handlers"
	"github.com/dustinober1/pmp-application-sub002/internal/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	MasteryHandler   *handlers.MasteryHandler
	PracticeHandler  *handlers.PracticeHandler
	FlashcardHandler *handlers.FlashcardHandler
	InsightHandler   *handlers.InsightHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	api.POST("/logout", cfg.AuthHandler.Logout)
	// Mastery + gaps
	api.GET("/mastery", cfg.MasteryHandler.GetAllMastery)
	api.POST("/mastery/:domainID/recalculate", cfg.MasteryHandler.Recalculate)
	api.GET("/gaps", cfg.MasteryHandler.GetGaps)
	// Practice
	api.POST("/practice/select", cfg.PracticeHandler.SelectQuestions)
	api.POST("/practice/answers", cfg.PracticeHandler.SubmitAnswer)
	// Flashcards
	api.GET("/flashcards/due", cfg.FlashcardHandler.GetDueCards)
	api.POST("/flashcards/:id/review", cfg.FlashcardHandler.SubmitReview)
	// Insights
	api.GET("/insights", cfg.InsightHandler.GetRecent)
	api.POST("/insights/generate", cfg.InsightHandler.Generate)
	api.POST("/insights/:id/read", cfg.InsightHandler.MarkRead)

	return router
}
