package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/engagement"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

type ProgressCopy struct {
	Copy string `json:"copy"`
	Type string `json:"type"`
}

type ProgressCopyService interface {
	// Select picks a motivational line keyed off the user's momentum band
	// and streak. The wording is deliberately plain; richer copy belongs to
	// the presentation layer.
	Select(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, copyType string) (*ProgressCopy, error)
}

type progressCopyService struct {
	db         *gorm.DB
	log        *logger.Logger
	momentum   MomentumService
	streakRepo repos.UserStreakRepo
}

func NewProgressCopyService(db *gorm.DB, baseLog *logger.Logger, momentum MomentumService, streakRepo repos.UserStreakRepo) ProgressCopyService {
	return &progressCopyService{
		db:         db,
		log:        baseLog.With("service", "ProgressCopyService"),
		momentum:   momentum,
		streakRepo: streakRepo,
	}
}

var copyTable = map[string]map[string]string{
	"encouragement": {
		engagement.MomentumPeak:   "You're on fire. Keep the run going.",
		engagement.MomentumMedium: "Solid pace. One more push gets you to peak momentum.",
		engagement.MomentumLow:    "Every session counts. Start small and build back up.",
	},
	"progress": {
		engagement.MomentumPeak:   "Peak momentum and climbing. Your pace is paying off.",
		engagement.MomentumMedium: "Steady progress on this roadmap. You're building real ground.",
		engagement.MomentumLow:    "Progress is progress. Pick up where you left off.",
	},
	"streak": {
		engagement.MomentumPeak:   "Streak plus momentum. This is the zone.",
		engagement.MomentumMedium: "Your streak is working for you. Don't break the chain.",
		engagement.MomentumLow:    "A quick session today keeps your streak alive.",
	},
}

func (s *progressCopyService) Select(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, copyType string) (*ProgressCopy, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if roadmapID == uuid.Nil {
		return nil, fmt.Errorf("%w: roadmap_id is required", ErrValidation)
	}
	if copyType == "" {
		copyType = "encouragement"
	}
	variants, ok := copyTable[copyType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown copy type %q", ErrValidation, copyType)
	}

	state, err := s.momentum.Get(ctx, tx)
	if err != nil {
		return nil, err
	}
	band := state.MomentumLevel

	// A live streak beats a cold momentum read for streak copy.
	if copyType == "streak" && band == engagement.MomentumLow {
		row, err := s.streakRepo.GetByUserID(ctx, tx, rd.UserID)
		if err != nil {
			return nil, fmt.Errorf("load streak: %w", err)
		}
		if row != nil && row.CurrentStreak >= 3 {
			band = engagement.MomentumMedium
		}
	}

	return &ProgressCopy{Copy: variants[band], Type: copyType}, nil
}
