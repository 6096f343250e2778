package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/engagement"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
	"github.com/pathwise/engage-backend/internal/types"
)

type XPAwardInput struct {
	ActivityType        string         `json:"activity_type"`
	ResponseTimeSeconds float64        `json:"response_time_seconds,omitempty"`
	Context             map[string]any `json:"context,omitempty"`

	// Accuracy in [0,1] when the caller just graded an attempt; negative
	// means unknown.
	Accuracy float64 `json:"-"`
}

type XPAwardResult struct {
	XPAwarded          int                  `json:"xp_awarded"`
	TotalXP            int                  `json:"total_xp"`
	Level              engagement.LevelInfo `json:"level"`
	LevelUpOccurred    bool                 `json:"level_up_occurred"`
	NewLevel           int                  `json:"new_level,omitempty"`
	MilestoneCompleted bool                 `json:"milestone_completed,omitempty"`
	MomentumScore      float64              `json:"momentum_score"`
	Reward             *types.RewardEvent   `json:"reward,omitempty"`
}

type ProgressionService interface {
	AwardXP(ctx context.Context, input XPAwardInput) (*XPAwardResult, error)
	GetProgress(ctx context.Context, tx *gorm.DB) (*XPAwardResult, error)

	// AwardXPInTx runs the award inside an existing transaction. The caller
	// must hold the user's keyed lock.
	AwardXPInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input XPAwardInput) (*XPAwardResult, error)
}

type progressionService struct {
	db              *gorm.DB
	log             *logger.Logger
	cfg             config.XPConfig
	progressionRepo repos.UserProgressionRepo
	streakRepo      repos.UserStreakRepo
	eventRepo       repos.EngagementEventRepo
	momentum        MomentumService
	reward          RewardService
	userLock        *KeyedLock
}

func NewProgressionService(db *gorm.DB, baseLog *logger.Logger, cfg config.XPConfig, progressionRepo repos.UserProgressionRepo, streakRepo repos.UserStreakRepo, eventRepo repos.EngagementEventRepo, momentum MomentumService, reward RewardService, userLock *KeyedLock) ProgressionService {
	return &progressionService{
		db:              db,
		log:             baseLog.With("service", "ProgressionService"),
		cfg:             cfg,
		progressionRepo: progressionRepo,
		streakRepo:      streakRepo,
		eventRepo:       eventRepo,
		momentum:        momentum,
		reward:          reward,
		userLock:        userLock,
	}
}

func (s *progressionService) validate(input XPAwardInput) (int, error) {
	base, ok := s.cfg.BaseValues[input.ActivityType]
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity type %q", ErrValidation, input.ActivityType)
	}
	rt := input.ResponseTimeSeconds
	if rt < 0 || math.IsNaN(rt) || math.IsInf(rt, 0) {
		return 0, fmt.Errorf("%w: response_time_seconds must be a finite value >= 0", ErrValidation)
	}
	return base, nil
}

func (s *progressionService) AwardXP(ctx context.Context, input XPAwardInput) (*XPAwardResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if _, err := s.validate(input); err != nil {
		return nil, err
	}
	if input.Accuracy == 0 {
		input.Accuracy = -1
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *XPAwardResult
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		res, err := s.AwardXPInTx(ctx, tx, userID, input)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *progressionService) AwardXPInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input XPAwardInput) (*XPAwardResult, error) {
	base, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	if err := s.progressionRepo.Ensure(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("ensure progression: %w", err)
	}
	before, err := s.progressionRepo.GetByUserID(ctx, tx, userID)
	if err != nil || before == nil {
		return nil, fmt.Errorf("load progression: %w", err)
	}

	streakRow, err := s.streakRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	streak := 0
	if streakRow != nil {
		streak = streakRow.CurrentStreak
	}

	effectiveMomentum, err := s.momentum.EffectiveInTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	peak := s.momentum.IsPeak(effectiveMomentum)

	speedFactor := engagement.SpeedBonusFactor(
		input.ResponseTimeSeconds,
		s.cfg.FastAnswerSeconds, s.cfg.QuickAnswerSeconds,
		s.cfg.FastBonusFactor, s.cfg.QuickBonusFactor,
	)
	awarded := engagement.ComputeAwardXP(base, streak, speedFactor, peak, s.cfg.PeakMomentumFactor)

	if err := s.progressionRepo.AddXP(ctx, tx, userID, awarded); err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}
	totalXP := before.TotalXP + awarded

	levelBefore := engagement.CalculateLevel(before.TotalXP)
	levelAfter := engagement.CalculateLevel(totalXP)
	levelUp := levelAfter.Level > levelBefore.Level

	newMomentum, err := s.momentum.BoostInTx(ctx, tx, userID, awarded, streak, input.Accuracy)
	if err != nil {
		return nil, err
	}

	eventData, _ := json.Marshal(map[string]any{
		"activity_type": input.ActivityType,
		"xp_awarded":    awarded,
		"context":       input.Context,
	})
	if err := s.eventRepo.Create(ctx, tx, &types.EngagementEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       "xp_awarded",
		Data:       datatypes.JSON(eventData),
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("record engagement event: %w", err)
	}

	out := &XPAwardResult{
		XPAwarded:       awarded,
		TotalXP:         totalXP,
		Level:           levelAfter,
		LevelUpOccurred: levelUp,
		MomentumScore:   newMomentum,
	}
	if levelUp {
		out.NewLevel = levelAfter.Level
		rewardRow, _, err := s.reward.EmitInTx(ctx, tx, userID, engagement.RewardMilestone, "level_up", map[string]any{
			"new_level": levelAfter.Level,
			"total_xp":  totalXP,
		})
		if err != nil {
			return nil, err
		}
		out.Reward = rewardRow
		out.MilestoneCompleted = rewardRow != nil
	}
	return out, nil
}

func (s *progressionService) GetProgress(ctx context.Context, tx *gorm.DB) (*XPAwardResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	row, err := s.progressionRepo.GetByUserID(ctx, tx, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load progression: %w", err)
	}
	totalXP := 0
	if row != nil {
		totalXP = row.TotalXP
	}
	return &XPAwardResult{
		TotalXP: totalXP,
		Level:   engagement.CalculateLevel(totalXP),
	}, nil
}
