package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

type EngagementStats struct {
	SessionsLast30Days   int     `json:"sessions_last_30_days"`
	CompletedLast30Days  int     `json:"completed_last_30_days"`
	CompletionRate       float64 `json:"completion_rate"`
	RewardEngagementRate float64 `json:"reward_engagement_rate"`
	MomentumScore        float64 `json:"momentum_score"`
	MomentumLevel        string  `json:"momentum_level"`
	TotalFocusMinutes    int     `json:"total_focus_minutes"`
}

type UserBehaviorStats struct {
	XPStats          *XPAwardResult     `json:"xp_stats"`
	StreakStats      *StreakState       `json:"streak_stats"`
	EngagementStats  *EngagementStats   `json:"engagement_stats"`
	LearningPatterns *OptimalTimeResult `json:"learning_patterns"`
}

type UserStatsService interface {
	Stats(ctx context.Context) (*UserBehaviorStats, error)
}

type userStatsService struct {
	db          *gorm.DB
	log         *logger.Logger
	progression ProgressionService
	streak      StreakService
	momentum    MomentumService
	patterns    PatternsService
	sessionRepo repos.LearningSessionRepo
	rewardRepo  repos.RewardEventRepo
	focusRepo   repos.UserFocusRepo
}

func NewUserStatsService(db *gorm.DB, baseLog *logger.Logger, progression ProgressionService, streak StreakService, momentum MomentumService, patterns PatternsService, sessionRepo repos.LearningSessionRepo, rewardRepo repos.RewardEventRepo, focusRepo repos.UserFocusRepo) UserStatsService {
	return &userStatsService{
		db:          db,
		log:         baseLog.With("service", "UserStatsService"),
		progression: progression,
		streak:      streak,
		momentum:    momentum,
		patterns:    patterns,
		sessionRepo: sessionRepo,
		rewardRepo:  rewardRepo,
		focusRepo:   focusRepo,
	}
}

// Stats fans the independent reads out concurrently; they touch disjoint
// tables and none of them mutates state.
func (s *userStatsService) Stats(ctx context.Context) (*UserBehaviorStats, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	userID := rd.UserID

	out := &UserBehaviorStats{EngagementStats: &EngagementStats{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		xp, err := s.progression.GetProgress(gctx, nil)
		if err != nil {
			return err
		}
		out.XPStats = xp
		return nil
	})

	g.Go(func() error {
		streak, err := s.streak.GetStreak(gctx, nil)
		if err != nil {
			return err
		}
		out.StreakStats = streak
		return nil
	})

	g.Go(func() error {
		patterns, err := s.patterns.OptimalTime(gctx, nil)
		if err != nil {
			return err
		}
		out.LearningPatterns = patterns
		return nil
	})

	g.Go(func() error {
		momentum, err := s.momentum.Get(gctx, nil)
		if err != nil {
			return err
		}
		out.EngagementStats.MomentumScore = momentum.MomentumScore
		out.EngagementStats.MomentumLevel = momentum.MomentumLevel
		return nil
	})

	g.Go(func() error {
		since := time.Now().UTC().AddDate(0, 0, -30)
		sessions, err := s.sessionRepo.ListByUser(gctx, nil, userID, since, 0)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		completed := 0
		for _, row := range sessions {
			if sessionCompleted(row) {
				completed++
			}
		}
		out.EngagementStats.SessionsLast30Days = len(sessions)
		out.EngagementStats.CompletedLast30Days = completed
		if len(sessions) > 0 {
			out.EngagementStats.CompletionRate = float64(completed) / float64(len(sessions))
		}
		return nil
	})

	g.Go(func() error {
		rewards, err := s.rewardRepo.ListRecentByUser(gctx, nil, userID, 100)
		if err != nil {
			return fmt.Errorf("load rewards: %w", err)
		}
		if len(rewards) == 0 {
			return nil
		}
		engaged := 0
		for _, row := range rewards {
			if row.Engaged {
				engaged++
			}
		}
		out.EngagementStats.RewardEngagementRate = float64(engaged) / float64(len(rewards))
		return nil
	})

	g.Go(func() error {
		focus, err := s.focusRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load focus state: %w", err)
		}
		if focus != nil {
			out.EngagementStats.TotalFocusMinutes = focus.TotalFocusMinutes
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
