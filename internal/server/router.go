package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pathwise/engage-backend/internal/handlers"
	"github.com/pathwise/engage-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	ProgressionHandler *handlers.ProgressionHandler
	SessionHandler     *handlers.SessionHandler
	ChallengeHandler   *handlers.ChallengeHandler
	MasteryHandler     *handlers.MasteryHandler
	RewardHandler      *handlers.RewardHandler
	PatternsHandler    *handlers.PatternsHandler
	FocusHandler       *handlers.FocusHandler
	StreamHandler      *handlers.StreamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("engage-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-ID"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Progression
	api.POST("/award-xp", cfg.ProgressionHandler.AwardXP)
	api.POST("/update-streak", cfg.ProgressionHandler.UpdateStreak)
	api.GET("/momentum", cfg.ProgressionHandler.GetMomentum)
	api.GET("/user-stats", cfg.ProgressionHandler.GetUserStats)
	api.GET("/progress-copy/:roadmap_id", cfg.ProgressionHandler.GetProgressCopy)
	// Sessions
	api.POST("/session/create", cfg.SessionHandler.Create)
	api.POST("/session/transition", cfg.SessionHandler.Transition)
	api.GET("/session/:id", cfg.SessionHandler.Get)
	// Challenges
	api.GET("/challenges/warmup/:subtopic_id", cfg.ChallengeHandler.GetWarmup)
	api.POST("/challenges/attempt", cfg.ChallengeHandler.Attempt)
	// Mastery
	api.GET("/elo-ratings", cfg.MasteryHandler.GetRatings)
	api.POST("/update-elo", cfg.MasteryHandler.UpdateElo)
	api.GET("/prerequisites/:subtopic_id", cfg.MasteryHandler.GetPrerequisites)
	// Rewards
	api.GET("/rewards/recent", cfg.RewardHandler.ListRecent)
	api.POST("/rewards/engage", cfg.RewardHandler.Engage)
	api.GET("/rewards/stream", cfg.StreamHandler.RewardStream)
	// Nudges
	api.POST("/nudge/interaction", cfg.RewardHandler.NudgeInteraction)
	api.GET("/nudge/should-show/:nudge_type", cfg.RewardHandler.ShouldShowNudge)
	// Patterns
	api.GET("/learning-patterns/optimal-time", cfg.PatternsHandler.GetOptimalTime)
	// Focus
	api.POST("/focus/toggle", cfg.FocusHandler.Toggle)

	return router
}
