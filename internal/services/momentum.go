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
)

type MomentumState struct {
	MomentumScore float64 `json:"momentum_score"`
	MomentumLevel string  `json:"momentum_level"`
}

type MomentumService interface {
	Get(ctx context.Context, tx *gorm.DB) (*MomentumState, error)

	// IsPeak reports whether a score sits in the peak band.
	IsPeak(score float64) bool
	// EffectiveInTx returns the decayed score without persisting anything.
	EffectiveInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (float64, error)
	// RecordAttemptInTx folds a graded attempt into the rolling accuracy
	// window and returns the updated accuracy in [0,1].
	RecordAttemptInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, correct bool) (float64, error)
	// BoostInTx folds a qualifying activity into the decayed score and
	// persists the result. accuracy < 0 means unknown.
	BoostInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, xpEarned, streak int, accuracy float64) (float64, error)
}

type momentumService struct {
	db           *gorm.DB
	log          *logger.Logger
	cfg          config.MomentumConfig
	momentumRepo repos.UserMomentumRepo
}

func NewMomentumService(db *gorm.DB, baseLog *logger.Logger, cfg config.MomentumConfig, momentumRepo repos.UserMomentumRepo) MomentumService {
	return &momentumService{
		db:           db,
		log:          baseLog.With("service", "MomentumService"),
		cfg:          cfg,
		momentumRepo: momentumRepo,
	}
}

func (s *momentumService) Get(ctx context.Context, tx *gorm.DB) (*MomentumState, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	score, err := s.EffectiveInTx(ctx, tx, rd.UserID)
	if err != nil {
		return nil, err
	}
	return &MomentumState{
		MomentumScore: score,
		MomentumLevel: engagement.MomentumLevel(score, s.cfg.MediumBandMin, s.cfg.PeakBandMin),
	}, nil
}

func (s *momentumService) IsPeak(score float64) bool {
	return score >= s.cfg.PeakBandMin
}

func (s *momentumService) EffectiveInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (float64, error) {
	row, err := s.momentumRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("load momentum: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return engagement.EffectiveMomentum(row.Score, row.LastUpdateAt, time.Now().UTC(), s.cfg.HalfLifeHours), nil
}

func (s *momentumService) RecordAttemptInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, correct bool) (float64, error) {
	if err := s.momentumRepo.Ensure(ctx, tx, userID); err != nil {
		return 0, fmt.Errorf("ensure momentum: %w", err)
	}
	row, err := s.momentumRepo.GetByUserID(ctx, tx, userID)
	if err != nil || row == nil {
		return 0, fmt.Errorf("load momentum: %w", err)
	}

	attempts := row.RecentAttempts + 1
	correctCount := row.RecentCorrect
	if correct {
		correctCount++
	}
	// Keep the window bounded so old history stops dominating accuracy.
	if attempts > 20 {
		attempts = attempts / 2
		correctCount = correctCount / 2
	}
	if err := s.momentumRepo.UpdateFields(ctx, tx, userID, map[string]any{
		"recent_attempts": attempts,
		"recent_correct":  correctCount,
	}); err != nil {
		return 0, fmt.Errorf("update momentum window: %w", err)
	}
	return float64(correctCount) / float64(attempts), nil
}

func (s *momentumService) BoostInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, xpEarned, streak int, accuracy float64) (float64, error) {
	if err := s.momentumRepo.Ensure(ctx, tx, userID); err != nil {
		return 0, fmt.Errorf("ensure momentum: %w", err)
	}
	row, err := s.momentumRepo.GetByUserID(ctx, tx, userID)
	if err != nil || row == nil {
		return 0, fmt.Errorf("load momentum: %w", err)
	}

	now := time.Now().UTC()
	effective := engagement.EffectiveMomentum(row.Score, row.LastUpdateAt, now, s.cfg.HalfLifeHours)
	next := engagement.BoostMomentum(effective, xpEarned, streak, accuracy, engagement.MomentumWeights{
		Velocity: s.cfg.VelocityWeight,
		Streak:   s.cfg.StreakWeight,
		Accuracy: s.cfg.AccuracyWeight,
	})
	if err := s.momentumRepo.UpdateFields(ctx, tx, userID, map[string]any{
		"score":          next,
		"last_update_at": now,
	}); err != nil {
		return 0, fmt.Errorf("update momentum: %w", err)
	}
	return next, nil
}
