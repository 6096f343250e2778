package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.session.Create(env.ctx, CreateSessionInput{RoadmapID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.State != "WARMUP" {
		t.Fatalf("new session should start in WARMUP, got %s", created.State)
	}
	if created.TimeBucket == "" {
		t.Fatalf("new session should carry a time bucket")
	}

	steps := []struct {
		to string
		xp int
	}{
		{"FOCUS", 10},      // leaving WARMUP
		{"CHECKPOINT", 30}, // leaving FOCUS
		{"REWARD", 25},     // leaving CHECKPOINT
		{"PRIME_NEXT", 0},  // leaving REWARD
	}
	for _, step := range steps {
		res, err := env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: step.to})
		if err != nil {
			t.Fatalf("Transition to %s: %v", step.to, err)
		}
		if res.State != step.to {
			t.Fatalf("expected state %s, got %s", step.to, res.State)
		}
		if step.xp > 0 && res.XPAwarded < step.xp {
			t.Fatalf("transition to %s should award at least %d XP, got %d", step.to, step.xp, res.XPAwarded)
		}
	}

	row, err := env.session.Get(env.ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !row.WarmupDone || !row.FocusDone || !row.CheckpointDone || !row.RewardDone {
		t.Fatalf("all phase flags should be set, got %+v", row)
	}
	if row.CompletedAt == nil {
		t.Fatalf("reaching PRIME_NEXT should stamp completed_at")
	}

	// Loop back to the next subtopic.
	res, err := env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: "WARMUP"})
	if err != nil {
		t.Fatalf("loop-back transition: %v", err)
	}
	if res.XPAwarded < 100 {
		t.Fatalf("completing a subtopic should award at least 100 XP, got %d", res.XPAwarded)
	}
	row, err = env.session.Get(env.ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get after loop-back: %v", err)
	}
	if row.SubtopicIndex != 1 {
		t.Fatalf("loop-back should advance the subtopic index, got %d", row.SubtopicIndex)
	}
	if row.CompletedAt != nil {
		t.Fatalf("loop-back should clear completed_at")
	}
}

func TestSessionIllegalTransition(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.session.Create(env.ctx, CreateSessionInput{RoadmapID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Skipping a phase is rejected and state stays put.
	_, err = env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: "CHECKPOINT"})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	row, err := env.session.Get(env.ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.State != "WARMUP" {
		t.Fatalf("rejected transition must not move state, got %s", row.State)
	}

	// Unknown state is a validation error.
	_, err = env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: "SPRINT"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.session.Create(env.ctx, CreateSessionInput{RoadmapID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Age the session past the idle cutoff.
	stale := time.Now().UTC().Add(-time.Duration(env.cfg.Session.AbandonAfterMinutes+10) * time.Minute)
	if err := env.sessionRepo.UpdateFields(env.ctx, nil, created.SessionID, map[string]any{
		"last_activity_at": stale,
	}); err != nil {
		t.Fatalf("age session: %v", err)
	}

	_, err = env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: "FOCUS"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}

	// The transition rolled back, but the abandoned flag itself must stick.
	raw, err := env.sessionRepo.GetByID(env.ctx, nil, created.SessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !raw.Abandoned {
		t.Fatalf("expired session should be marked abandoned in storage")
	}

	row, err := env.session.Get(env.ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !row.Abandoned {
		t.Fatalf("expired session should be marked abandoned")
	}

	// Further transitions on the abandoned session keep failing.
	_, err = env.session.Transition(env.ctx, TransitionInput{SessionID: created.SessionID, NewState: "FOCUS"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected session expired on abandoned session, got %v", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.session.Create(env.ctx, CreateSessionInput{RoadmapID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	otherCtx := authedCtx(uuid.New())
	if _, err := env.session.Get(otherCtx, created.SessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign session read should be not-found, got %v", err)
	}
	if _, err := env.session.Transition(otherCtx, TransitionInput{SessionID: created.SessionID, NewState: "FOCUS"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign session transition should be not-found, got %v", err)
	}

	if _, err := env.session.Get(env.ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown session id should be not-found, got %v", err)
	}
}
