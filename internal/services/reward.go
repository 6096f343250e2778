package services

import (
	"context"
	"encoding/json"
	"fmt"
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

// Nudge categories the scheduler knows about. Anything else is rejected as
// a validation error before any state moves.
var knownNudgeTypes = map[string]bool{
	"streak_reminder": true,
	"review_prompt":   true,
	"comeback":        true,
	"new_challenge":   true,
}

const defaultNudgeIntensity = 0.5

// RewardPublisher fans a freshly created reward out to connected clients.
// Delivery is fire-and-forget: a publish failure never fails the operation
// that produced the reward.
type RewardPublisher interface {
	PublishReward(ctx context.Context, userID uuid.UUID, event *types.RewardEvent) error
}

type NudgeInteractionResult struct {
	NudgeType    string  `json:"nudge_type"`
	Interaction  string  `json:"interaction"`
	NewIntensity float64 `json:"new_intensity"`
}

type RewardService interface {
	// EmitInTx records a reward if the anti-fatigue throttle allows it.
	// Returns (nil, false, nil) when the throttle suppressed it.
	EmitInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rewardType, trigger string, content map[string]any) (*types.RewardEvent, bool, error)

	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.RewardEvent, error)
	RecordEngagement(ctx context.Context, rewardID uuid.UUID, engaged bool, engagementSeconds *float64) error

	NudgeInteraction(ctx context.Context, nudgeType, interaction string) (*NudgeInteractionResult, error)
	ShouldShowNudge(ctx context.Context, nudgeType string) (bool, error)
}

type rewardService struct {
	db         *gorm.DB
	log        *logger.Logger
	cfg        config.RewardConfig
	rewardRepo repos.RewardEventRepo
	nudgeRepo  repos.NudgeStateRepo
	publisher  RewardPublisher
	userLock   *KeyedLock
}

func NewRewardService(db *gorm.DB, baseLog *logger.Logger, cfg config.RewardConfig, rewardRepo repos.RewardEventRepo, nudgeRepo repos.NudgeStateRepo, publisher RewardPublisher, userLock *KeyedLock) RewardService {
	return &rewardService{
		db:         db,
		log:        baseLog.With("service", "RewardService"),
		cfg:        cfg,
		rewardRepo: rewardRepo,
		nudgeRepo:  nudgeRepo,
		publisher:  publisher,
		userLock:   userLock,
	}
}

func (s *rewardService) EmitInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rewardType, trigger string, content map[string]any) (*types.RewardEvent, bool, error) {
	now := time.Now().UTC()

	latest, err := s.rewardRepo.LatestByUserAndType(ctx, tx, userID, rewardType)
	if err != nil {
		return nil, false, fmt.Errorf("load latest reward: %w", err)
	}
	lastShown := time.Time{}
	if latest != nil {
		lastShown = latest.CreatedAt
	}
	minInterval := time.Duration(s.cfg.MinIntervalMinutes) * time.Minute
	if !engagement.ShouldShowReward(rewardType, lastShown, now, minInterval) {
		return nil, false, nil
	}

	var payload datatypes.JSON
	if content != nil {
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, false, fmt.Errorf("marshal reward content: %w", err)
		}
		payload = datatypes.JSON(raw)
	}
	row := &types.RewardEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      rewardType,
		Content:   payload,
		Trigger:   trigger,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rewardRepo.Create(ctx, tx, row); err != nil {
		return nil, false, fmt.Errorf("create reward: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReward(ctx, userID, row); err != nil {
			s.log.Warn("Reward publish failed", "reward_id", row.ID, "error", err)
		}
	}
	return row, true, nil
}

func (s *rewardService) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.RewardEvent, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.rewardRepo.ListRecentByUser(ctx, tx, rd.UserID, limit)
}

func (s *rewardService) RecordEngagement(ctx context.Context, rewardID uuid.UUID, engaged bool, engagementSeconds *float64) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return ErrUnauthenticated
	}
	if rewardID == uuid.Nil {
		return fmt.Errorf("%w: reward_id is required", ErrValidation)
	}
	if engagementSeconds != nil && *engagementSeconds < 0 {
		return fmt.Errorf("%w: engagement_time_seconds must be >= 0", ErrValidation)
	}
	row, err := s.rewardRepo.GetByID(ctx, nil, rewardID)
	if err != nil {
		return fmt.Errorf("load reward: %w", err)
	}
	if row == nil || row.UserID != rd.UserID {
		return fmt.Errorf("%w: reward %s", ErrNotFound, rewardID)
	}
	return s.rewardRepo.SetEngaged(ctx, nil, rewardID, engaged, engagementSeconds)
}

func (s *rewardService) nudgeDeltas() engagement.NudgeDeltas {
	return engagement.NudgeDeltas{
		Engaged:   s.cfg.NudgeEngagedDelta,
		Dismissed: s.cfg.NudgeDismissedDelta,
		Ignored:   s.cfg.NudgeIgnoredDelta,
		Floor:     s.cfg.NudgeIntensityFloor,
	}
}

func (s *rewardService) NudgeInteraction(ctx context.Context, nudgeType, interaction string) (*NudgeInteractionResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !knownNudgeTypes[nudgeType] {
		return nil, fmt.Errorf("%w: unknown nudge type %q", ErrValidation, nudgeType)
	}
	switch interaction {
	case engagement.NudgeEngaged, engagement.NudgeDismissed, engagement.NudgeIgnored:
	default:
		return nil, fmt.Errorf("%w: unknown nudge interaction %q", ErrValidation, interaction)
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *NudgeInteractionResult
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.nudgeRepo.Ensure(ctx, tx, userID, nudgeType, defaultNudgeIntensity); err != nil {
			return fmt.Errorf("ensure nudge state: %w", err)
		}
		row, err := s.nudgeRepo.GetByUserAndType(ctx, tx, userID, nudgeType)
		if err != nil || row == nil {
			return fmt.Errorf("load nudge state: %w", err)
		}
		next, err := engagement.ApplyNudgeInteraction(row.Intensity, interaction, s.nudgeDeltas())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err := s.nudgeRepo.UpdateFields(ctx, tx, userID, nudgeType, map[string]any{
			"intensity":        next,
			"last_interaction": interaction,
		}); err != nil {
			return fmt.Errorf("update nudge state: %w", err)
		}
		out = &NudgeInteractionResult{
			NudgeType:    nudgeType,
			Interaction:  interaction,
			NewIntensity: next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ShouldShowNudge answers the scheduler gate. A true answer stamps
// last_shown_at, because the caller is about to surface the nudge.
func (s *rewardService) ShouldShowNudge(ctx context.Context, nudgeType string) (bool, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return false, ErrUnauthenticated
	}
	if !knownNudgeTypes[nudgeType] {
		return false, fmt.Errorf("%w: unknown nudge type %q", ErrValidation, nudgeType)
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	show := false
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.nudgeRepo.Ensure(ctx, tx, userID, nudgeType, defaultNudgeIntensity); err != nil {
			return fmt.Errorf("ensure nudge state: %w", err)
		}
		row, err := s.nudgeRepo.GetByUserAndType(ctx, tx, userID, nudgeType)
		if err != nil || row == nil {
			return fmt.Errorf("load nudge state: %w", err)
		}
		now := time.Now().UTC()
		lastShown := time.Time{}
		if row.LastShownAt != nil {
			lastShown = *row.LastShownAt
		}
		base := time.Duration(s.cfg.NudgeBaseMinutes) * time.Minute
		show = engagement.ShouldShowNudge(row.Intensity, lastShown, now, base)
		if !show {
			return nil
		}
		return s.nudgeRepo.UpdateFields(ctx, tx, userID, nudgeType, map[string]any{
			"last_shown_at": now,
		})
	})
	if err != nil {
		return false, err
	}
	return show, nil
}
