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

type CreateSessionInput struct {
	RoadmapID       uuid.UUID       `json:"roadmap_id"`
	Plan            json.RawMessage `json:"plan,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
}

type CreateSessionResult struct {
	SessionID  uuid.UUID       `json:"session_id"`
	State      string          `json:"state"`
	Plan       json.RawMessage `json:"plan,omitempty"`
	TimeBucket string          `json:"time_bucket"`
}

type TransitionInput struct {
	SessionID uuid.UUID      `json:"session_id"`
	NewState  string         `json:"new_state"`
	Context   map[string]any `json:"context,omitempty"`
}

type TransitionResult struct {
	SessionID uuid.UUID          `json:"session_id"`
	State     string             `json:"state"`
	XPAwarded int                `json:"xp_awarded,omitempty"`
	Reward    *types.RewardEvent `json:"reward,omitempty"`
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*CreateSessionResult, error)
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.LearningSession, error)
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         config.SessionConfig
	sessionRepo repos.LearningSessionRepo
	eventRepo   repos.EngagementEventRepo
	progression ProgressionService
	reward      RewardService
	sessionLock *KeyedLock
	userLock    *KeyedLock
}

func NewSessionService(db *gorm.DB, baseLog *logger.Logger, cfg config.SessionConfig, sessionRepo repos.LearningSessionRepo, eventRepo repos.EngagementEventRepo, progression ProgressionService, reward RewardService, sessionLock, userLock *KeyedLock) SessionService {
	return &sessionService{
		db:          db,
		log:         baseLog.With("service", "SessionService"),
		cfg:         cfg,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		progression: progression,
		reward:      reward,
		sessionLock: sessionLock,
		userLock:    userLock,
	}
}

// Create starts a fresh session in WARMUP. Creating a new session for the
// same roadmap never touches the old one, which expires via the idle timeout.
func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*CreateSessionResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if input.RoadmapID == uuid.Nil {
		return nil, fmt.Errorf("%w: roadmap_id is required", ErrValidation)
	}
	if input.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration_minutes must be >= 0", ErrValidation)
	}

	now := time.Now().UTC()
	row := &types.LearningSession{
		ID:              uuid.New(),
		UserID:          rd.UserID,
		RoadmapID:       input.RoadmapID,
		State:           engagement.PhaseWarmup,
		TimeBucket:      engagement.TimeBucket(now.Hour()),
		StartTime:       now,
		DurationMinutes: input.DurationMinutes,
		LastActivityAt:  now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(input.Plan) > 0 {
		row.SessionData = datatypes.JSON(input.Plan)
	}

	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.sessionRepo.Create(ctx, tx, row); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		data, _ := json.Marshal(map[string]any{"session_id": row.ID, "roadmap_id": row.RoadmapID})
		return s.eventRepo.Create(ctx, tx, &types.EngagementEvent{
			ID:         uuid.New(),
			UserID:     rd.UserID,
			Type:       "session_started",
			Data:       datatypes.JSON(data),
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &CreateSessionResult{
		SessionID:  row.ID,
		State:      row.State,
		Plan:       input.Plan,
		TimeBucket: row.TimeBucket,
	}, nil
}

// phaseActivity names the XP activity earned by leaving a phase.
func phaseActivity(from string) string {
	switch from {
	case engagement.PhaseWarmup:
		return "warmup_completion"
	case engagement.PhaseFocus:
		return "focused_time_block"
	case engagement.PhaseCheckpoint:
		return "checkpoint_completion"
	case engagement.PhasePrimeNext:
		return "subtopic_completion"
	default:
		return ""
	}
}

func phaseDoneColumn(from string) string {
	switch from {
	case engagement.PhaseWarmup:
		return "warmup_done"
	case engagement.PhaseFocus:
		return "focus_done"
	case engagement.PhaseCheckpoint:
		return "checkpoint_done"
	case engagement.PhaseReward:
		return "reward_done"
	default:
		return ""
	}
}

// Transition advances a session one legal step. Concurrent calls on the same
// session serialize on its keyed lock; the loser re-reads a state it can no
// longer leave and gets the conflict error.
func (s *sessionService) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if input.SessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session_id is required", ErrValidation)
	}
	if !engagement.ValidPhase(input.NewState) {
		return nil, fmt.Errorf("%w: unknown session state %q", ErrValidation, input.NewState)
	}

	s.sessionLock.Lock(input.SessionID)
	defer s.sessionLock.Unlock(input.SessionID)
	s.userLock.Lock(rd.UserID)
	defer s.userLock.Unlock(rd.UserID)

	var out *TransitionResult
	var staleID uuid.UUID
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		row, err := s.sessionRepo.GetByID(ctx, tx, input.SessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if row == nil || row.UserID != rd.UserID {
			return fmt.Errorf("%w: session %s", ErrNotFound, input.SessionID)
		}
		now := time.Now().UTC()
		if row.Abandoned {
			return fmt.Errorf("%w: session %s was abandoned", ErrSessionExpired, row.ID)
		}
		if idle := now.Sub(row.LastActivityAt); idle > time.Duration(s.cfg.AbandonAfterMinutes)*time.Minute {
			// The error aborts the transaction, so the abandoned flag is
			// written after it, outside the rollback.
			staleID = row.ID
			return fmt.Errorf("%w: session %s idle for %s", ErrSessionExpired, row.ID, idle.Round(time.Minute))
		}
		if !engagement.CanTransition(row.State, input.NewState) {
			return fmt.Errorf("%w: cannot transition %s -> %s", ErrStateConflict, row.State, input.NewState)
		}

		updates := map[string]any{
			"state":            input.NewState,
			"last_activity_at": now,
		}
		if col := phaseDoneColumn(row.State); col != "" {
			updates[col] = true
		}

		loopBack := row.State == engagement.PhasePrimeNext && input.NewState == engagement.PhaseWarmup
		if loopBack {
			updates["subtopic_index"] = row.SubtopicIndex + 1
			updates["completed_at"] = nil
		}
		if input.NewState == engagement.PhasePrimeNext {
			updates["completed_at"] = now
		}
		if err := s.sessionRepo.UpdateFields(ctx, tx, row.ID, updates); err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		result := &TransitionResult{SessionID: row.ID, State: input.NewState}
		if activity := phaseActivity(row.State); activity != "" {
			award, err := s.progression.AwardXPInTx(ctx, tx, rd.UserID, XPAwardInput{
				ActivityType: activity,
				Accuracy:     -1,
				Context: map[string]any{
					"session_id":     row.ID,
					"subtopic_index": row.SubtopicIndex,
				},
			})
			if err != nil {
				return err
			}
			result.XPAwarded = award.XPAwarded
			result.Reward = award.Reward
		}

		// Entering REWARD surfaces a celebration, throttled so repeated
		// checkpoints keep surprise value. Completing a subtopic is a
		// milestone and always surfaces.
		if result.Reward == nil {
			switch {
			case input.NewState == engagement.PhaseReward:
				reward, _, err := s.reward.EmitInTx(ctx, tx, rd.UserID, engagement.RewardConfetti, "checkpoint_complete", map[string]any{
					"session_id": row.ID,
				})
				if err != nil {
					return err
				}
				result.Reward = reward
			case loopBack:
				reward, _, err := s.reward.EmitInTx(ctx, tx, rd.UserID, engagement.RewardMilestone, "subtopic_complete", map[string]any{
					"session_id":     row.ID,
					"subtopic_index": row.SubtopicIndex,
				})
				if err != nil {
					return err
				}
				result.Reward = reward
			}
		}

		data, _ := json.Marshal(map[string]any{
			"session_id": row.ID,
			"from":       row.State,
			"to":         input.NewState,
			"context":    input.Context,
		})
		if err := s.eventRepo.Create(ctx, tx, &types.EngagementEvent{
			ID:         uuid.New(),
			UserID:     rd.UserID,
			Type:       "session_transition",
			Data:       datatypes.JSON(data),
			OccurredAt: now,
		}); err != nil {
			return fmt.Errorf("record transition event: %w", err)
		}

		out = result
		return nil
	})
	if err != nil {
		if staleID != uuid.Nil {
			if uerr := s.sessionRepo.UpdateFields(ctx, nil, staleID, map[string]any{"abandoned": true}); uerr != nil {
				s.log.Warn("Failed to mark idle session abandoned", "session_id", staleID, "error", uerr)
			}
		}
		return nil, err
	}
	return out, nil
}

// Get returns the session, lazily marking it abandoned when the idle timeout
// has passed.
func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.LearningSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session_id is required", ErrValidation)
	}

	row, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row == nil || row.UserID != rd.UserID {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if !row.Abandoned && row.CompletedAt == nil &&
		time.Now().UTC().Sub(row.LastActivityAt) > time.Duration(s.cfg.AbandonAfterMinutes)*time.Minute {
		if err := s.sessionRepo.UpdateFields(ctx, nil, row.ID, map[string]any{"abandoned": true}); err != nil {
			return nil, fmt.Errorf("mark session abandoned: %w", err)
		}
		row.Abandoned = true
	}
	return row, nil
}
