package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/db"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

type testEnv struct {
	ctx context.Context
	db  *gorm.DB
	cfg config.Config

	userID uuid.UUID

	progressionRepo repos.UserProgressionRepo
	streakRepo      repos.UserStreakRepo
	masteryRepo     repos.ConceptMasteryRepo
	momentumRepo    repos.UserMomentumRepo
	nudgeRepo       repos.NudgeStateRepo
	sessionRepo     repos.LearningSessionRepo
	rewardRepo      repos.RewardEventRepo
	challengeRepo   repos.QuickChallengeRepo
	attemptRepo     repos.ChallengeAttemptRepo
	eventRepo       repos.EngagementEventRepo
	focusRepo       repos.UserFocusRepo

	momentum     MomentumService
	reward       RewardService
	progression  ProgressionService
	streak       StreakService
	mastery      MasteryService
	session      SessionService
	challenge    ChallengeService
	patterns     PatternsService
	focus        FocusService
	progressCopy ProgressCopyService
	stats        UserStatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	svc, err := db.NewInMemory(log)
	if err != nil {
		t.Fatalf("db.NewInMemory: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	gdb := svc.DB()
	cfg := config.Default()
	cfg.Prerequisites = map[string][]string{
		"subtopic-pointers": {"variables", "memory-model"},
	}

	userID := uuid.New()
	env := &testEnv{
		ctx:    authedCtx(userID),
		db:     gdb,
		cfg:    cfg,
		userID: userID,

		progressionRepo: repos.NewUserProgressionRepo(gdb, log),
		streakRepo:      repos.NewUserStreakRepo(gdb, log),
		masteryRepo:     repos.NewConceptMasteryRepo(gdb, log),
		momentumRepo:    repos.NewUserMomentumRepo(gdb, log),
		nudgeRepo:       repos.NewNudgeStateRepo(gdb, log),
		sessionRepo:     repos.NewLearningSessionRepo(gdb, log),
		rewardRepo:      repos.NewRewardEventRepo(gdb, log),
		challengeRepo:   repos.NewQuickChallengeRepo(gdb, log),
		attemptRepo:     repos.NewChallengeAttemptRepo(gdb, log),
		eventRepo:       repos.NewEngagementEventRepo(gdb, log),
		focusRepo:       repos.NewUserFocusRepo(gdb, log),
	}

	userLock := NewKeyedLock()
	sessionLock := NewKeyedLock()

	env.momentum = NewMomentumService(gdb, log, cfg.Momentum, env.momentumRepo)
	env.reward = NewRewardService(gdb, log, cfg.Reward, env.rewardRepo, env.nudgeRepo, nil, userLock)
	env.progression = NewProgressionService(gdb, log, cfg.XP, env.progressionRepo, env.streakRepo, env.eventRepo, env.momentum, env.reward, userLock)
	env.streak = NewStreakService(gdb, log, cfg.Streak, env.streakRepo, env.progression, userLock)
	env.mastery = NewMasteryService(gdb, log, cfg.Mastery, cfg.Prerequisites, env.masteryRepo, userLock)
	env.session = NewSessionService(gdb, log, cfg.Session, env.sessionRepo, env.eventRepo, env.progression, env.reward, sessionLock, userLock)
	env.challenge = NewChallengeService(gdb, log, cfg.Mastery, env.challengeRepo, env.attemptRepo, env.masteryRepo, env.eventRepo, env.mastery, env.progression, env.momentum, userLock)
	env.patterns = NewPatternsService(gdb, log, cfg.Patterns, env.sessionRepo)
	env.focus = NewFocusService(gdb, log, env.focusRepo, env.progression, userLock)
	env.progressCopy = NewProgressCopyService(gdb, log, env.momentum, env.streakRepo)
	env.stats = NewUserStatsService(gdb, log, env.progression, env.streak, env.momentum, env.patterns, env.sessionRepo, env.rewardRepo, env.focusRepo)

	return env
}
