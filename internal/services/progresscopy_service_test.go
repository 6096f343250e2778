package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestProgressCopySelection(t *testing.T) {
	env := newTestEnv(t)
	roadmapID := uuid.New()

	// Cold user gets the low-momentum line.
	res, err := env.progressCopy.Select(env.ctx, nil, roadmapID, "encouragement")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Type != "encouragement" || res.Copy == "" {
		t.Fatalf("expected encouragement copy, got %+v", res)
	}
	lowCopy := res.Copy

	// Build momentum and the line changes band.
	for i := 0; i < 10; i++ {
		if _, err := env.progression.AwardXP(env.ctx, XPAwardInput{ActivityType: "subtopic_completion"}); err != nil {
			t.Fatalf("AwardXP: %v", err)
		}
	}
	res, err = env.progressCopy.Select(env.ctx, nil, roadmapID, "encouragement")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Copy == lowCopy {
		t.Fatalf("momentum should change the selected copy")
	}
}

func TestProgressCopyValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.progressCopy.Select(env.ctx, nil, uuid.Nil, "progress"); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing roadmap should be rejected, got %v", err)
	}
	if _, err := env.progressCopy.Select(env.ctx, nil, uuid.New(), "haiku"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown copy type should be rejected, got %v", err)
	}
}

func TestProgressCopyDefaultType(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.progressCopy.Select(env.ctx, nil, uuid.New(), "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Type != "encouragement" {
		t.Fatalf("empty copy type should default to encouragement, got %s", res.Type)
	}
}
