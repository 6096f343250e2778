package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/engagement"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
	"github.com/pathwise/engage-backend/internal/types"
)

type StreakState struct {
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	GraceDaysRemaining int        `json:"grace_days_remaining"`
	LastQualifyingDay  *time.Time `json:"last_qualifying_day,omitempty"`
	StreakExtended     bool       `json:"streak_extended"`
	BonusXPAwarded     int        `json:"bonus_xp_awarded,omitempty"`
}

type StreakService interface {
	// UpdateStreak records qualifying activity for today. Idempotent per
	// calendar day: the second call on the same day changes nothing.
	UpdateStreak(ctx context.Context) (*StreakState, error)
	GetStreak(ctx context.Context, tx *gorm.DB) (*StreakState, error)
}

type streakService struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         config.StreakConfig
	streakRepo  repos.UserStreakRepo
	progression ProgressionService
	userLock    *KeyedLock
}

func NewStreakService(db *gorm.DB, baseLog *logger.Logger, cfg config.StreakConfig, streakRepo repos.UserStreakRepo, progression ProgressionService, userLock *KeyedLock) StreakService {
	return &streakService{
		db:          db,
		log:         baseLog.With("service", "StreakService"),
		cfg:         cfg,
		streakRepo:  streakRepo,
		progression: progression,
		userLock:    userLock,
	}
}

func snapshotFromRow(row *types.UserStreak) engagement.StreakSnapshot {
	s := engagement.StreakSnapshot{
		CurrentStreak:      row.CurrentStreak,
		LongestStreak:      row.LongestStreak,
		GraceDaysRemaining: row.GraceDaysRemaining,
		QualifyingDays:     row.QualifyingDays,
	}
	if row.LastQualifyingDay != nil {
		s.LastQualifyingDay = *row.LastQualifyingDay
	}
	return s
}

func (s *streakService) UpdateStreak(ctx context.Context) (*StreakState, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *StreakState
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.streakRepo.Ensure(ctx, tx, userID); err != nil {
			return fmt.Errorf("ensure streak: %w", err)
		}
		row, err := s.streakRepo.GetByUserID(ctx, tx, userID)
		if err != nil || row == nil {
			return fmt.Errorf("load streak: %w", err)
		}

		prior := snapshotFromRow(row)
		next := engagement.ApplyDay(prior, time.Now().UTC(), s.cfg.GraceDayCap, s.cfg.ReplenishEveryDays)

		extended := next.LastQualifyingDay != prior.LastQualifyingDay
		bonusXP := 0
		if extended {
			day := next.LastQualifyingDay
			if err := s.streakRepo.UpdateFields(ctx, tx, userID, map[string]any{
				"current_streak":       next.CurrentStreak,
				"longest_streak":       next.LongestStreak,
				"grace_days_remaining": next.GraceDaysRemaining,
				"qualifying_days":      next.QualifyingDays,
				"last_qualifying_day":  day,
			}); err != nil {
				return fmt.Errorf("update streak: %w", err)
			}
			award, err := s.progression.AwardXPInTx(ctx, tx, userID, XPAwardInput{
				ActivityType: "streak_bonus",
				Accuracy:     -1,
				Context:      map[string]any{"current_streak": next.CurrentStreak},
			})
			if err != nil {
				return err
			}
			bonusXP = award.XPAwarded
		}

		last := next.LastQualifyingDay
		out = &StreakState{
			CurrentStreak:      next.CurrentStreak,
			LongestStreak:      next.LongestStreak,
			GraceDaysRemaining: next.GraceDaysRemaining,
			LastQualifyingDay:  &last,
			StreakExtended:     extended,
			BonusXPAwarded:     bonusXP,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *streakService) GetStreak(ctx context.Context, tx *gorm.DB) (*StreakState, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	row, err := s.streakRepo.GetByUserID(ctx, tx, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if row == nil {
		return &StreakState{}, nil
	}
	return &StreakState{
		CurrentStreak:      row.CurrentStreak,
		LongestStreak:      row.LongestStreak,
		GraceDaysRemaining: row.GraceDaysRemaining,
		LastQualifyingDay:  row.LastQualifyingDay,
	}, nil
}
