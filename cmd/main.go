package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustinober1/pmp-application-sub002/internal/clients/redis"
	"github.com/dustinober1/pmp-application-sub002/internal/db"
	"github.com/dustinober1/pmp-application-sub002/internal/handlers"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/middleware"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/server"
	"github.com/dustinober1/pmp-application-sub002/internal/services"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
	"github.com/dustinober1/pmp-application-sub002/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	policy := policyFromEnv(log)

	// Database
	dbService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Database auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	userTokenRepo := repos.NewUserTokenRepo(theDB, log)
	domainRepo := repos.NewExamDomainRepo(theDB, log)
	questionRepo := repos.NewQuestionRepo(theDB, log)
	attemptRepo := repos.NewAttemptRepo(theDB, log)
	masteryRepo := repos.NewMasteryRepo(theDB, log)
	flashcardRepo := repos.NewFlashcardRepo(theDB, log)
	reviewRepo := repos.NewReviewRepo(theDB, log)
	insightRepo := repos.NewInsightRepo(theDB, log)

	// Insight bus
	var insightBus redis.InsightBus
	if os.Getenv("REDIS_ADDR") != "" {
		insightBus, err = redis.NewInsightBus(log)
		if err != nil {
			log.Warn("Could not init redis insight bus, falling back to no-op", "error", err)
			insightBus = redis.NewNoopInsightBus()
		}
	} else {
		insightBus = redis.NewNoopInsightBus()
	}
	defer insightBus.Close()

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(theDB, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	masteryService := services.NewMasteryService(theDB, log, policy, domainRepo, masteryRepo, attemptRepo)
	gapService := services.NewGapService(log, policy, domainRepo, masteryService)
	selectorService := services.NewSelectorService(log, policy, questionRepo, attemptRepo, masteryService, gapService)
	attemptService := services.NewAttemptService(theDB, log, questionRepo, attemptRepo, userRepo, masteryService)
	flashcardService := services.NewFlashcardService(theDB, log, flashcardRepo, reviewRepo, userRepo)
	insightService := services.NewInsightService(log, policy, userRepo, domainRepo, attemptRepo, masteryRepo, insightRepo, insightBus)

	// Periodic insight sweep
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweepHours := utils.GetEnvAsInt("INSIGHT_SWEEP_HOURS", 6, log)
	go runInsightSweep(sweepCtx, log, insightService, time.Duration(sweepHours)*time.Hour)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	masteryHandler := handlers.NewMasteryHandler(log, masteryService, gapService)
	practiceHandler := handlers.NewPracticeHandler(log, selectorService, attemptService)
	flashcardHandler := handlers.NewFlashcardHandler(log, flashcardService)
	insightHandler := handlers.NewInsightHandler(log, insightService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		MasteryHandler:   masteryHandler,
		PracticeHandler:  practiceHandler,
		FlashcardHandler: flashcardHandler,
		InsightHandler:   insightHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

func runInsightSweep(ctx context.Context, log *logger.Logger, insightService services.InsightService, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := insightService.GenerateInsightsForAllUsers(ctx)
			if err != nil {
				log.Warn("Insight sweep failed", "error", err)
				continue
			}
			log.Info("Insight sweep complete", "created", count)
		}
	}
}

func policyFromEnv(log *logger.Logger) types.PracticePolicy {
	p := types.DefaultPracticePolicy()
	p.TargetThreshold = utils.GetEnvAsFloat("MASTERY_TARGET_THRESHOLD", p.TargetThreshold, log)
	p.StretchThreshold = utils.GetEnvAsFloat("MASTERY_STRETCH_THRESHOLD", p.StretchThreshold, log)
	p.WindowDays = utils.GetEnvAsInt("MASTERY_WINDOW_DAYS", p.WindowDays, log)
	p.WindowMaxAttempts = utils.GetEnvAsInt("MASTERY_WINDOW_MAX_ATTEMPTS", p.WindowMaxAttempts, log)
	p.ExcludeRecentDays = utils.GetEnvAsInt("SELECT_EXCLUDE_RECENT_DAYS", p.ExcludeRecentDays, log)
	p.StreakLength = utils.GetEnvAsInt("SELECT_STREAK_LENGTH", p.StreakLength, log)
	p.AccuracyDropAlert = utils.GetEnvAsFloat("INSIGHT_ACCURACY_DROP_ALERT", p.AccuracyDropAlert, log)
	p.AccuracyDropMinAttempts = utils.GetEnvAsInt("INSIGHT_ACCURACY_DROP_MIN_ATTEMPTS", p.AccuracyDropMinAttempts, log)
	return p
}
