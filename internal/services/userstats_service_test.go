package services

import "testing"

func TestUserStatsNewUserDefaults(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.Stats(env.ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.XPStats.TotalXP != 0 || stats.XPStats.Level.Level != 1 {
		t.Fatalf("new user XP stats should be empty, got %+v", stats.XPStats)
	}
	if stats.StreakStats.CurrentStreak != 0 {
		t.Fatalf("new user streak should be 0, got %+v", stats.StreakStats)
	}
	if stats.EngagementStats.SessionsLast30Days != 0 {
		t.Fatalf("new user should have no sessions, got %+v", stats.EngagementStats)
	}
	if stats.LearningPatterns.BestWindow != nil {
		t.Fatalf("new user should have no recommended window")
	}
}

func TestUserStatsAggregates(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.progression.AwardXP(env.ctx, XPAwardInput{ActivityType: "quiz_completion"}); err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	if _, err := env.streak.UpdateStreak(env.ctx); err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}
	for i := 0; i < 3; i++ {
		seedSession(t, env, "morning", i < 2, i)
	}

	stats, err := env.stats.Stats(env.ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.XPStats.TotalXP != 65 {
		t.Fatalf("expected 65 total XP (50 quiz + 15 streak bonus), got %d", stats.XPStats.TotalXP)
	}
	if stats.StreakStats.CurrentStreak != 1 {
		t.Fatalf("expected streak 1, got %d", stats.StreakStats.CurrentStreak)
	}
	if stats.EngagementStats.SessionsLast30Days != 3 || stats.EngagementStats.CompletedLast30Days != 2 {
		t.Fatalf("expected 3 sessions / 2 completed, got %+v", stats.EngagementStats)
	}
	if stats.EngagementStats.MomentumScore <= 0 {
		t.Fatalf("activity should have built momentum, got %v", stats.EngagementStats.MomentumScore)
	}
	if stats.LearningPatterns.BestWindow == nil || stats.LearningPatterns.BestWindow.Bucket != "morning" {
		t.Fatalf("expected morning window, got %+v", stats.LearningPatterns.BestWindow)
	}
}
