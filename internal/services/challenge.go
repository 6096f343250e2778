package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
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

type ChallengeAttemptInput struct {
	ChallengeID         uuid.UUID `json:"challenge_id"`
	UserAnswer          string    `json:"user_answer"`
	ResponseTimeSeconds float64   `json:"response_time_seconds"`
	ConfidenceLevel     *float64  `json:"confidence_level,omitempty"`
}

type ChallengeResult struct {
	Correct       bool    `json:"correct"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation,omitempty"`
	XPEarned      int     `json:"xp_earned"`
	NewRating     float64 `json:"new_rating"`
	MomentumBonus bool    `json:"momentum_bonus"`
}

type ChallengeService interface {
	// WarmupChallenge picks the warm-up item whose difficulty sits closest
	// to the user's current rating for its concept.
	WarmupChallenge(ctx context.Context, subtopicID uuid.UUID) (*types.QuickChallenge, error)
	Attempt(ctx context.Context, input ChallengeAttemptInput) (*ChallengeResult, error)
	SeedChallenges(ctx context.Context, rows []*types.QuickChallenge) error
}

type challengeService struct {
	db            *gorm.DB
	log           *logger.Logger
	masteryCfg    config.MasteryConfig
	challengeRepo repos.QuickChallengeRepo
	attemptRepo   repos.ChallengeAttemptRepo
	masteryRepo   repos.ConceptMasteryRepo
	eventRepo     repos.EngagementEventRepo
	mastery       MasteryService
	progression   ProgressionService
	momentum      MomentumService
	userLock      *KeyedLock
}

func NewChallengeService(db *gorm.DB, baseLog *logger.Logger, masteryCfg config.MasteryConfig, challengeRepo repos.QuickChallengeRepo, attemptRepo repos.ChallengeAttemptRepo, masteryRepo repos.ConceptMasteryRepo, eventRepo repos.EngagementEventRepo, mastery MasteryService, progression ProgressionService, momentum MomentumService, userLock *KeyedLock) ChallengeService {
	return &challengeService{
		db:            db,
		log:           baseLog.With("service", "ChallengeService"),
		masteryCfg:    masteryCfg,
		challengeRepo: challengeRepo,
		attemptRepo:   attemptRepo,
		masteryRepo:   masteryRepo,
		eventRepo:     eventRepo,
		mastery:       mastery,
		progression:   progression,
		momentum:      momentum,
		userLock:      userLock,
	}
}

func (s *challengeService) WarmupChallenge(ctx context.Context, subtopicID uuid.UUID) (*types.QuickChallenge, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if subtopicID == uuid.Nil {
		return nil, fmt.Errorf("%w: subtopic_id is required", ErrValidation)
	}

	candidates, err := s.challengeRepo.GetBySubtopicAndPhase(ctx, nil, subtopicID, engagement.PhaseWarmup)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no warmup challenges for subtopic %s", ErrNotFound, subtopicID)
	}

	tags := make([]string, 0, len(candidates))
	seen := map[string]bool{}
	for _, c := range candidates {
		if !seen[c.ConceptTag] {
			seen[c.ConceptTag] = true
			tags = append(tags, c.ConceptTag)
		}
	}
	ratings := map[string]float64{}
	rows, err := s.masteryRepo.GetByUserAndTags(ctx, nil, rd.UserID, tags)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	for _, row := range rows {
		ratings[row.ConceptTag] = row.Rating
	}

	best := candidates[0]
	bestGap := math.MaxFloat64
	for _, c := range candidates {
		rating, ok := ratings[c.ConceptTag]
		if !ok {
			rating = s.masteryCfg.InitialRating
		}
		gap := math.Abs(c.Difficulty - rating)
		if gap < bestGap || (gap == bestGap && c.ID.String() < best.ID.String()) {
			best = c
			bestGap = gap
		}
	}
	return best, nil
}

func (s *challengeService) Attempt(ctx context.Context, input ChallengeAttemptInput) (*ChallengeResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if input.ChallengeID == uuid.Nil {
		return nil, fmt.Errorf("%w: challenge_id is required", ErrValidation)
	}
	if strings.TrimSpace(input.UserAnswer) == "" {
		return nil, fmt.Errorf("%w: user_answer is required", ErrValidation)
	}
	if input.ResponseTimeSeconds < 0 || math.IsNaN(input.ResponseTimeSeconds) || math.IsInf(input.ResponseTimeSeconds, 0) {
		return nil, fmt.Errorf("%w: response_time_seconds must be a finite value >= 0", ErrValidation)
	}
	confidence := 0.0
	if input.ConfidenceLevel != nil {
		confidence = *input.ConfidenceLevel
		if confidence < 0 || confidence > 1 || math.IsNaN(confidence) {
			return nil, fmt.Errorf("%w: confidence_level must be in [0,1]", ErrValidation)
		}
	}

	challenge, err := s.challengeRepo.GetByID(ctx, nil, input.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if challenge == nil {
		return nil, fmt.Errorf("%w: challenge %s", ErrNotFound, input.ChallengeID)
	}
	correct := strings.EqualFold(strings.TrimSpace(input.UserAnswer), challenge.AnswerID)

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *ChallengeResult
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		accuracy, err := s.momentum.RecordAttemptInTx(ctx, tx, userID, correct)
		if err != nil {
			return err
		}

		outcome := 0.0
		if correct {
			outcome = 1.0
		}
		elo, err := s.mastery.UpdateEloInTx(ctx, tx, userID, challenge.ConceptTag, outcome, challenge.Difficulty, confidence)
		if err != nil {
			return err
		}

		xpEarned := 0
		momentumBonus := false
		if correct {
			award, err := s.progression.AwardXPInTx(ctx, tx, userID, XPAwardInput{
				ActivityType:        "quick_challenge_correct",
				ResponseTimeSeconds: input.ResponseTimeSeconds,
				Accuracy:            accuracy,
				Context: map[string]any{
					"challenge_id": challenge.ID,
					"concept_tag":  challenge.ConceptTag,
				},
			})
			if err != nil {
				return err
			}
			xpEarned = award.XPAwarded
			momentumBonus = s.momentum.IsPeak(award.MomentumScore)
		}

		if err := s.attemptRepo.Create(ctx, tx, &types.ChallengeAttempt{
			ID:                  uuid.New(),
			ChallengeID:         challenge.ID,
			UserID:              userID,
			UserAnswer:          input.UserAnswer,
			ResponseTimeSeconds: input.ResponseTimeSeconds,
			ConfidenceLevel:     input.ConfidenceLevel,
			Correct:             correct,
			XPEarned:            xpEarned,
			MomentumBonus:       momentumBonus,
		}); err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}

		data, _ := json.Marshal(map[string]any{
			"challenge_id": challenge.ID,
			"concept_tag":  challenge.ConceptTag,
			"correct":      correct,
			"new_rating":   elo.NewRating,
		})
		if err := s.eventRepo.Create(ctx, tx, &types.EngagementEvent{
			ID:         uuid.New(),
			UserID:     userID,
			Type:       "challenge_attempt",
			Data:       datatypes.JSON(data),
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("record attempt event: %w", err)
		}

		out = &ChallengeResult{
			Correct:       correct,
			CorrectAnswer: challenge.AnswerID,
			Explanation:   challenge.Explanation,
			XPEarned:      xpEarned,
			NewRating:     elo.NewRating,
			MomentumBonus: momentumBonus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SeedChallenges loads authored challenge items. Content authoring lives
// upstream; the engine only stores and serves them.
func (s *challengeService) SeedChallenges(ctx context.Context, rows []*types.QuickChallenge) error {
	for _, row := range rows {
		if row.SubtopicID == uuid.Nil || row.ConceptTag == "" || row.Prompt == "" || row.AnswerID == "" {
			return fmt.Errorf("%w: challenge rows need subtopic_id, concept_tag, prompt and answer_id", ErrValidation)
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Phase == "" {
			row.Phase = engagement.PhaseWarmup
		}
		if row.Difficulty <= 0 {
			row.Difficulty = s.masteryCfg.InitialRating
		}
	}
	return s.challengeRepo.Create(ctx, nil, rows)
}
