package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

const (
	minFocusSessionMinutes = 5
	maxFocusSessionMinutes = 180
)

type FocusState struct {
	FocusModeEnabled bool `json:"focus_mode_enabled"`
	TotalFocusTime   int  `json:"total_focus_time"`
	SessionLength    int  `json:"session_length"`
	XPAwarded        int  `json:"xp_awarded,omitempty"`
}

type FocusService interface {
	// Toggle turns focus mode on or off. Disabling banks the elapsed
	// minutes; a block that ran its full configured length earns the
	// focused-time XP award.
	Toggle(ctx context.Context, enable bool, durationMinutes int) (*FocusState, error)
}

type focusService struct {
	db          *gorm.DB
	log         *logger.Logger
	focusRepo   repos.UserFocusRepo
	progression ProgressionService
	userLock    *KeyedLock
}

func NewFocusService(db *gorm.DB, baseLog *logger.Logger, focusRepo repos.UserFocusRepo, progression ProgressionService, userLock *KeyedLock) FocusService {
	return &focusService{
		db:          db,
		log:         baseLog.With("service", "FocusService"),
		focusRepo:   focusRepo,
		progression: progression,
		userLock:    userLock,
	}
}

func (s *focusService) Toggle(ctx context.Context, enable bool, durationMinutes int) (*FocusState, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if enable && durationMinutes != 0 &&
		(durationMinutes < minFocusSessionMinutes || durationMinutes > maxFocusSessionMinutes) {
		return nil, fmt.Errorf("%w: duration_minutes must be between %d and %d", ErrValidation, minFocusSessionMinutes, maxFocusSessionMinutes)
	}

	userID := rd.UserID
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	var out *FocusState
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.focusRepo.Ensure(ctx, tx, userID); err != nil {
			return fmt.Errorf("ensure focus state: %w", err)
		}
		row, err := s.focusRepo.GetByUserID(ctx, tx, userID)
		if err != nil || row == nil {
			return fmt.Errorf("load focus state: %w", err)
		}

		now := time.Now().UTC()
		if enable {
			sessionLength := row.SessionLengthMinutes
			if durationMinutes > 0 {
				sessionLength = durationMinutes
			}
			if err := s.focusRepo.UpdateFields(ctx, tx, userID, map[string]any{
				"enabled":                true,
				"enabled_at":             now,
				"session_length_minutes": sessionLength,
			}); err != nil {
				return fmt.Errorf("enable focus mode: %w", err)
			}
			out = &FocusState{
				FocusModeEnabled: true,
				TotalFocusTime:   row.TotalFocusMinutes,
				SessionLength:    sessionLength,
			}
			return nil
		}

		elapsed := 0
		if row.Enabled && row.EnabledAt != nil {
			elapsed = int(now.Sub(*row.EnabledAt).Minutes())
			if elapsed < 0 {
				elapsed = 0
			}
		}
		total := row.TotalFocusMinutes + elapsed
		if err := s.focusRepo.UpdateFields(ctx, tx, userID, map[string]any{
			"enabled":             false,
			"enabled_at":          nil,
			"total_focus_minutes": total,
		}); err != nil {
			return fmt.Errorf("disable focus mode: %w", err)
		}

		xp := 0
		if row.Enabled && elapsed >= row.SessionLengthMinutes {
			award, err := s.progression.AwardXPInTx(ctx, tx, userID, XPAwardInput{
				ActivityType: "focused_time_block",
				Accuracy:     -1,
				Context:      map[string]any{"minutes": elapsed},
			})
			if err != nil {
				return err
			}
			xp = award.XPAwarded
		}

		out = &FocusState{
			FocusModeEnabled: false,
			TotalFocusTime:   total,
			SessionLength:    row.SessionLengthMinutes,
			XPAwarded:        xp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
