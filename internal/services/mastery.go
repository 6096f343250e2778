package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/engagement"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

type EloUpdateResult struct {
	ConceptTag string  `json:"concept_tag"`
	OldRating  float64 `json:"old_rating"`
	NewRating  float64 `json:"new_rating"`
	Attempts   int     `json:"attempts"`
	Mastered   bool    `json:"mastered"`
}

type PrerequisiteCheck struct {
	ConceptTag string  `json:"concept_tag"`
	Rating     float64 `json:"rating"`
	Attempts   int     `json:"attempts"`
	Satisfied  bool    `json:"satisfied"`
}

type PrerequisiteStatus struct {
	Prerequisites     []PrerequisiteCheck `json:"prerequisites"`
	AllSatisfied      bool                `json:"allSatisfied"`
	WeakPrerequisites []string            `json:"weakPrerequisites"`
}

type MasteryService interface {
	UpdateElo(ctx context.Context, conceptTag string, outcome, itemDifficulty, confidence float64) (*EloUpdateResult, error)
	Ratings(ctx context.Context, tx *gorm.DB) (map[string]float64, error)
	PrerequisiteStatus(ctx context.Context, tx *gorm.DB, subtopicID string) (*PrerequisiteStatus, error)

	// UpdateEloInTx runs the rating update inside an existing transaction.
	// The caller must hold the user's keyed lock.
	UpdateEloInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptTag string, outcome, itemDifficulty, confidence float64) (*EloUpdateResult, error)
}

type masteryService struct {
	db            *gorm.DB
	log           *logger.Logger
	cfg           config.MasteryConfig
	prerequisites map[string][]string
	masteryRepo   repos.ConceptMasteryRepo
	userLock      *KeyedLock
}

func NewMasteryService(db *gorm.DB, baseLog *logger.Logger, cfg config.MasteryConfig, prerequisites map[string][]string, masteryRepo repos.ConceptMasteryRepo, userLock *KeyedLock) MasteryService {
	return &masteryService{
		db:            db,
		log:           baseLog.With("service", "MasteryService"),
		cfg:           cfg,
		prerequisites: prerequisites,
		masteryRepo:   masteryRepo,
		userLock:      userLock,
	}
}

func (s *masteryService) UpdateElo(ctx context.Context, conceptTag string, outcome, itemDifficulty, confidence float64) (*EloUpdateResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *EloUpdateResult
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		res, err := s.UpdateEloInTx(ctx, tx, userID, conceptTag, outcome, itemDifficulty, confidence)
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

func (s *masteryService) UpdateEloInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptTag string, outcome, itemDifficulty, confidence float64) (*EloUpdateResult, error) {
	if conceptTag == "" {
		return nil, fmt.Errorf("%w: concept_tag is required", ErrValidation)
	}
	if outcome < 0 || outcome > 1 || math.IsNaN(outcome) {
		return nil, fmt.Errorf("%w: outcome must be in [0,1]", ErrValidation)
	}
	if itemDifficulty <= 0 || math.IsNaN(itemDifficulty) || math.IsInf(itemDifficulty, 0) {
		return nil, fmt.Errorf("%w: item_difficulty must be positive", ErrValidation)
	}
	if confidence < 0 || confidence > 1 || math.IsNaN(confidence) {
		return nil, fmt.Errorf("%w: confidence must be in [0,1]", ErrValidation)
	}

	row, err := s.masteryRepo.GetByUserAndTag(ctx, tx, userID, conceptTag)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}
	oldRating := s.cfg.InitialRating
	attempts := 0
	if row != nil {
		oldRating = row.Rating
		attempts = row.Attempts
	}

	newRating := engagement.UpdateElo(oldRating, outcome, itemDifficulty, attempts, confidence, s.cfg.BaseK, s.cfg.MinK)
	now := time.Now().UTC()
	if err := s.masteryRepo.Upsert(ctx, tx, userID, conceptTag, newRating, attempts+1, now); err != nil {
		return nil, fmt.Errorf("upsert mastery: %w", err)
	}

	return &EloUpdateResult{
		ConceptTag: conceptTag,
		OldRating:  oldRating,
		NewRating:  newRating,
		Attempts:   attempts + 1,
		Mastered:   newRating >= s.cfg.MasteryThreshold,
	}, nil
}

// Ratings returns the user's full rating map. A user with no history gets an
// empty map, not an error.
func (s *masteryService) Ratings(ctx context.Context, tx *gorm.DB) (map[string]float64, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	rows, err := s.masteryRepo.GetByUserID(ctx, tx, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.ConceptTag] = row.Rating
	}
	return out, nil
}

// PrerequisiteStatus checks the configured prerequisite concepts for a
// subtopic against the mastery threshold. A concept never attempted counts
// as weak.
func (s *masteryService) PrerequisiteStatus(ctx context.Context, tx *gorm.DB, subtopicID string) (*PrerequisiteStatus, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	tags := s.prerequisites[subtopicID]
	out := &PrerequisiteStatus{
		Prerequisites:     make([]PrerequisiteCheck, 0, len(tags)),
		AllSatisfied:      true,
		WeakPrerequisites: []string{},
	}
	if len(tags) == 0 {
		return out, nil
	}

	rows, err := s.masteryRepo.GetByUserAndTags(ctx, tx, rd.UserID, tags)
	if err != nil {
		return nil, fmt.Errorf("load prerequisite ratings: %w", err)
	}
	byTag := map[string]PrerequisiteCheck{}
	for _, row := range rows {
		byTag[row.ConceptTag] = PrerequisiteCheck{
			ConceptTag: row.ConceptTag,
			Rating:     row.Rating,
			Attempts:   row.Attempts,
		}
	}
	for _, tag := range tags {
		check, ok := byTag[tag]
		if !ok {
			check = PrerequisiteCheck{ConceptTag: tag, Rating: s.cfg.InitialRating}
		}
		check.Satisfied = check.Attempts > 0 && check.Rating >= s.cfg.MasteryThreshold
		if !check.Satisfied {
			out.AllSatisfied = false
			out.WeakPrerequisites = append(out.WeakPrerequisites, tag)
		}
		out.Prerequisites = append(out.Prerequisites, check)
	}
	return out, nil
}
