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

const (
	patternLookbackDays = 60
	patternMaxSessions  = 500
)

type OptimalTimeResult struct {
	OptimalWindows []engagement.BucketStat `json:"optimal_windows"`
	BestWindow     *engagement.BucketStat  `json:"best_window,omitempty"`
}

type PatternsService interface {
	OptimalTime(ctx context.Context, tx *gorm.DB) (*OptimalTimeResult, error)
}

type patternsService struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         config.PatternsConfig
	sessionRepo repos.LearningSessionRepo
}

func NewPatternsService(db *gorm.DB, baseLog *logger.Logger, cfg config.PatternsConfig, sessionRepo repos.LearningSessionRepo) PatternsService {
	return &patternsService{
		db:          db,
		log:         baseLog.With("service", "PatternsService"),
		cfg:         cfg,
		sessionRepo: sessionRepo,
	}
}

func sessionCompleted(row *types.LearningSession) bool {
	return row.CompletedAt != nil || row.RewardDone
}

// OptimalTime folds recent session history into per-bucket completion rates
// and recommends the strongest window. Buckets below the sample floor are
// reported but never recommended, so thin data cannot produce a confident
// answer.
func (s *patternsService) OptimalTime(ctx context.Context, tx *gorm.DB) (*OptimalTimeResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	since := time.Now().UTC().AddDate(0, 0, -patternLookbackDays)
	sessions, err := s.sessionRepo.ListByUser(ctx, tx, rd.UserID, since, patternMaxSessions)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	buckets := make([]string, 0, len(sessions))
	completed := make([]bool, 0, len(sessions))
	for _, row := range sessions {
		buckets = append(buckets, row.TimeBucket)
		completed = append(completed, sessionCompleted(row))
	}

	stats := engagement.AggregateBuckets(buckets, completed)
	out := &OptimalTimeResult{OptimalWindows: stats}
	if best, ok := engagement.BestWindow(stats, s.cfg.MinSamplesPerBucket); ok {
		out.BestWindow = &best
	}
	return out, nil
}
