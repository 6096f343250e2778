package services

import (
	"errors"
	"testing"
	"time"
)

func TestAwardXPBasic(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.progression.AwardXP(env.ctx, XPAwardInput{ActivityType: "quiz_completion"})
	if err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	if res.XPAwarded != 50 {
		t.Fatalf("expected 50 XP with no bonuses, got %d", res.XPAwarded)
	}
	if res.TotalXP != 50 {
		t.Fatalf("expected total 50, got %d", res.TotalXP)
	}
	if res.Level.Level != 1 {
		t.Fatalf("expected level 1, got %d", res.Level.Level)
	}
	if res.LevelUpOccurred {
		t.Fatalf("50 XP should not level up")
	}

	// Totals accumulate across awards.
	res, err = env.progression.AwardXP(env.ctx, XPAwardInput{ActivityType: "subtopic_completion"})
	if err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	if res.TotalXP != 150 {
		t.Fatalf("expected total 150, got %d", res.TotalXP)
	}
	if !res.LevelUpOccurred || res.NewLevel != 2 {
		t.Fatalf("crossing 100 XP should reach level 2, got levelUp=%v level=%d", res.LevelUpOccurred, res.NewLevel)
	}
	if res.Reward == nil || res.Reward.Type != "milestone" {
		t.Fatalf("level-up should emit a milestone reward, got %+v", res.Reward)
	}
	if !res.MilestoneCompleted {
		t.Fatalf("milestone reward should set milestone_completed")
	}

	// Both awards land in the activity log.
	events, err := env.eventRepo.ListByUserAndRange(env.ctx, nil, env.userID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListByUserAndRange: %v", err)
	}
	var awarded int
	for _, e := range events {
		if e.Type == "xp_awarded" {
			awarded++
		}
	}
	if awarded != 2 {
		t.Fatalf("expected 2 xp_awarded events, got %d (of %d total)", awarded, len(events))
	}
}

func TestAwardXPUnknownActivity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.AwardXP(env.ctx, XPAwardInput{ActivityType: "made_up"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Nothing persisted.
	row, err := env.progressionRepo.GetByUserID(env.ctx, nil, env.userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if row != nil {
		t.Fatalf("rejected award must not create state, got %+v", row)
	}
}

func TestAwardXPNegativeResponseTime(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.AwardXP(env.ctx, XPAwardInput{
		ActivityType:        "quiz_completion",
		ResponseTimeSeconds: -3,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAwardXPSpeedBonus(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.progression.AwardXP(env.ctx, XPAwardInput{
		ActivityType:        "quick_challenge_correct",
		ResponseTimeSeconds: 5,
	})
	if err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	// 20 base + 50% fast bonus.
	if res.XPAwarded != 30 {
		t.Fatalf("expected 30 XP with fast bonus, got %d", res.XPAwarded)
	}
}

func TestGetProgressDefaultsForNewUser(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.progression.GetProgress(env.ctx, nil)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if res.TotalXP != 0 || res.Level.Level != 1 {
		t.Fatalf("new user should read as level 1 with 0 XP, got %+v", res)
	}
}
