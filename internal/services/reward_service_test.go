package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRewardThrottling(t *testing.T) {
	env := newTestEnv(t)

	first, shown, err := env.reward.EmitInTx(env.ctx, nil, env.userID, "confetti", "checkpoint_complete", nil)
	if err != nil {
		t.Fatalf("EmitInTx: %v", err)
	}
	if !shown || first == nil {
		t.Fatalf("first confetti should surface")
	}

	// Same type again immediately: throttled.
	second, shown, err := env.reward.EmitInTx(env.ctx, nil, env.userID, "confetti", "checkpoint_complete", nil)
	if err != nil {
		t.Fatalf("EmitInTx: %v", err)
	}
	if shown || second != nil {
		t.Fatalf("confetti inside the minimum interval must be suppressed")
	}

	// Milestones ignore the throttle entirely.
	for i := 0; i < 3; i++ {
		reward, shown, err := env.reward.EmitInTx(env.ctx, nil, env.userID, "milestone", "level_up", nil)
		if err != nil {
			t.Fatalf("EmitInTx milestone: %v", err)
		}
		if !shown || reward == nil {
			t.Fatalf("milestone %d must always surface", i)
		}
	}

	// Once the interval passes, confetti is eligible again.
	old := time.Now().UTC().Add(-time.Duration(env.cfg.Reward.MinIntervalMinutes+5) * time.Minute)
	if err := env.db.Exec(`UPDATE reward_event SET created_at = ? WHERE type = 'confetti'`, old).Error; err != nil {
		t.Fatalf("age confetti: %v", err)
	}
	_, shown, err = env.reward.EmitInTx(env.ctx, nil, env.userID, "confetti", "checkpoint_complete", nil)
	if err != nil {
		t.Fatalf("EmitInTx: %v", err)
	}
	if !shown {
		t.Fatalf("confetti past the interval should surface")
	}
}

func TestRecordEngagement(t *testing.T) {
	env := newTestEnv(t)

	reward, _, err := env.reward.EmitInTx(env.ctx, nil, env.userID, "achievement", "test", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("EmitInTx: %v", err)
	}

	seconds := 4.2
	if err := env.reward.RecordEngagement(env.ctx, reward.ID, true, &seconds); err != nil {
		t.Fatalf("RecordEngagement: %v", err)
	}
	row, err := env.rewardRepo.GetByID(env.ctx, nil, reward.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !row.Engaged || row.EngagementSeconds == nil || *row.EngagementSeconds != seconds {
		t.Fatalf("engagement not recorded: %+v", row)
	}

	// Another user cannot mark engagement on this reward.
	otherCtx := authedCtx(uuid.New())
	if err := env.reward.RecordEngagement(otherCtx, reward.ID, true, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign reward should be not-found, got %v", err)
	}
}

func TestNudgeInteraction(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.reward.NudgeInteraction(env.ctx, "streak_reminder", "engaged")
	if err != nil {
		t.Fatalf("NudgeInteraction: %v", err)
	}
	if res.NewIntensity != 0.65 {
		t.Fatalf("engaged should move 0.5 -> 0.65, got %v", res.NewIntensity)
	}

	// Repeated dismissals bottom out at the floor, never below.
	for i := 0; i < 5; i++ {
		res, err = env.reward.NudgeInteraction(env.ctx, "streak_reminder", "dismissed")
		if err != nil {
			t.Fatalf("NudgeInteraction dismiss %d: %v", i, err)
		}
	}
	if res.NewIntensity != env.cfg.Reward.NudgeIntensityFloor {
		t.Fatalf("intensity should clamp at the floor %v, got %v", env.cfg.Reward.NudgeIntensityFloor, res.NewIntensity)
	}

	if _, err := env.reward.NudgeInteraction(env.ctx, "bogus_type", "engaged"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown nudge type should be a validation error, got %v", err)
	}
	if _, err := env.reward.NudgeInteraction(env.ctx, "streak_reminder", "poked"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown interaction should be a validation error, got %v", err)
	}
}

func TestShouldShowNudge(t *testing.T) {
	env := newTestEnv(t)

	show, err := env.reward.ShouldShowNudge(env.ctx, "review_prompt")
	if err != nil {
		t.Fatalf("ShouldShowNudge: %v", err)
	}
	if !show {
		t.Fatalf("never-shown nudge should show")
	}

	// The affirmative answer stamps last_shown_at, so the immediate retry
	// is gated.
	show, err = env.reward.ShouldShowNudge(env.ctx, "review_prompt")
	if err != nil {
		t.Fatalf("ShouldShowNudge: %v", err)
	}
	if show {
		t.Fatalf("freshly shown nudge must be gated")
	}

	if _, err := env.reward.ShouldShowNudge(env.ctx, "bogus_type"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown nudge type should be a validation error, got %v", err)
	}
}
