package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/db"
	"github.com/pathwise/engage-backend/internal/handlers"
	"github.com/pathwise/engage-backend/internal/jobs"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/middleware"
	"github.com/pathwise/engage-backend/internal/observability"
	"github.com/pathwise/engage-backend/internal/realtime"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/server"
	"github.com/pathwise/engage-backend/internal/services"
	"github.com/pathwise/engage-backend/internal/utils"
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

	// Tracing
	ctx := context.Background()
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "engage-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(ctx) }()
	}

	// Engine config
	engineCfg, err := config.Load(utils.GetEnv("ENGINE_CONFIG_PATH", "", log))
	if err != nil {
		log.Warn("Engine config load failed, using defaults", "error", err)
	}

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	gdb := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	progressionRepo := repos.NewUserProgressionRepo(gdb, log)
	streakRepo := repos.NewUserStreakRepo(gdb, log)
	masteryRepo := repos.NewConceptMasteryRepo(gdb, log)
	momentumRepo := repos.NewUserMomentumRepo(gdb, log)
	nudgeRepo := repos.NewNudgeStateRepo(gdb, log)
	sessionRepo := repos.NewLearningSessionRepo(gdb, log)
	rewardRepo := repos.NewRewardEventRepo(gdb, log)
	challengeRepo := repos.NewQuickChallengeRepo(gdb, log)
	attemptRepo := repos.NewChallengeAttemptRepo(gdb, log)
	eventRepo := repos.NewEngagementEventRepo(gdb, log)
	focusRepo := repos.NewUserFocusRepo(gdb, log)

	// Realtime
	log.Info("Setting up reward fan-out now...")
	hub := realtime.NewHub()
	var publisher services.RewardPublisher
	bus, err := realtime.NewRedisRewardBus(log)
	if err != nil {
		log.Warn("Redis reward bus unavailable, rewards stay local", "error", err)
	} else {
		publisher = bus
		defer bus.Close()
		if err := bus.StartForwarder(ctx, hub.Dispatch); err != nil {
			log.Warn("Reward forwarder failed to start", "error", err)
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	userLock := services.NewKeyedLock()
	sessionLock := services.NewKeyedLock()
	momentumService := services.NewMomentumService(gdb, log, engineCfg.Momentum, momentumRepo)
	rewardService := services.NewRewardService(gdb, log, engineCfg.Reward, rewardRepo, nudgeRepo, publisher, userLock)
	progressionService := services.NewProgressionService(gdb, log, engineCfg.XP, progressionRepo, streakRepo, eventRepo, momentumService, rewardService, userLock)
	streakService := services.NewStreakService(gdb, log, engineCfg.Streak, streakRepo, progressionService, userLock)
	masteryService := services.NewMasteryService(gdb, log, engineCfg.Mastery, engineCfg.Prerequisites, masteryRepo, userLock)
	sessionService := services.NewSessionService(gdb, log, engineCfg.Session, sessionRepo, eventRepo, progressionService, rewardService, sessionLock, userLock)
	challengeService := services.NewChallengeService(gdb, log, engineCfg.Mastery, challengeRepo, attemptRepo, masteryRepo, eventRepo, masteryService, progressionService, momentumService, userLock)
	patternsService := services.NewPatternsService(gdb, log, engineCfg.Patterns, sessionRepo)
	focusService := services.NewFocusService(gdb, log, focusRepo, progressionService, userLock)
	progressCopyService := services.NewProgressCopyService(gdb, log, momentumService, streakRepo)
	statsService := services.NewUserStatsService(gdb, log, progressionService, streakService, momentumService, patternsService, sessionRepo, rewardRepo, focusRepo)

	// Jobs
	sweeper := jobs.NewSessionSweeper(log, engineCfg.Session, sessionRepo)
	if err := sweeper.Start(); err != nil {
		log.Warn("Session sweeper failed to start", "error", err)
	}
	defer sweeper.Stop()

	// Handlers
	log.Info("Setting up handlers from main...")
	progressionHandler := handlers.NewProgressionHandler(progressionService, streakService, momentumService, statsService, progressCopyService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	masteryHandler := handlers.NewMasteryHandler(masteryService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	patternsHandler := handlers.NewPatternsHandler(patternsService)
	focusHandler := handlers.NewFocusHandler(focusService)
	streamHandler := handlers.NewStreamHandler(hub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		ProgressionHandler: progressionHandler,
		SessionHandler:     sessionHandler,
		ChallengeHandler:   challengeHandler,
		MasteryHandler:     masteryHandler,
		RewardHandler:      rewardHandler,
		PatternsHandler:    patternsHandler,
		FocusHandler:       focusHandler,
		StreamHandler:      streamHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
