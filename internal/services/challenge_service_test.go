package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pathwise/engage-backend/internal/types"
)

func seedWarmupChallenges(t *testing.T, env *testEnv, subtopicID uuid.UUID) []*types.QuickChallenge {
	t.Helper()
	options := datatypes.JSON([]byte(`[{"id":"a","text":"stack"},{"id":"b","text":"heap"}]`))
	rows := []*types.QuickChallenge{
		{
			SubtopicID: subtopicID,
			ConceptTag: "memory-model",
			Prompt:     "Where do local variables live?",
			Options:    options,
			AnswerID:   "a",
			Difficulty: 1200,
		},
		{
			SubtopicID: subtopicID,
			ConceptTag: "memory-model",
			Prompt:     "Where do escaped values live?",
			Options:    options,
			AnswerID:   "b",
			Difficulty: 1600,
		},
	}
	if err := env.challenge.SeedChallenges(env.ctx, rows); err != nil {
		t.Fatalf("SeedChallenges: %v", err)
	}
	return rows
}

func TestWarmupChallengePicksClosestDifficulty(t *testing.T) {
	env := newTestEnv(t)
	subtopicID := uuid.New()
	rows := seedWarmupChallenges(t, env, subtopicID)

	// Fresh user sits at the initial 1200 rating, so the 1200 item wins.
	picked, err := env.challenge.WarmupChallenge(env.ctx, subtopicID)
	if err != nil {
		t.Fatalf("WarmupChallenge: %v", err)
	}
	if picked.ID != rows[0].ID {
		t.Fatalf("expected the 1200-difficulty item, got difficulty %v", picked.Difficulty)
	}
}

func TestWarmupChallengeNoneSeeded(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.challenge.WarmupChallenge(env.ctx, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found for empty subtopic, got %v", err)
	}
}

func TestChallengeAttemptCorrect(t *testing.T) {
	env := newTestEnv(t)
	subtopicID := uuid.New()
	rows := seedWarmupChallenges(t, env, subtopicID)

	res, err := env.challenge.Attempt(env.ctx, ChallengeAttemptInput{
		ChallengeID:         rows[0].ID,
		UserAnswer:          "a",
		ResponseTimeSeconds: 8,
	})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !res.Correct {
		t.Fatalf("answer matches answer_id, should be correct")
	}
	// 20 base + 50% fast bonus.
	if res.XPEarned != 30 {
		t.Fatalf("expected 30 XP, got %d", res.XPEarned)
	}
	if res.NewRating <= 1200 {
		t.Fatalf("correct attempt should raise the rating, got %v", res.NewRating)
	}
	if res.CorrectAnswer != "a" {
		t.Fatalf("result should reveal the correct answer")
	}

	ratings, err := env.mastery.Ratings(env.ctx, nil)
	if err != nil {
		t.Fatalf("Ratings: %v", err)
	}
	if ratings["memory-model"] != res.NewRating {
		t.Fatalf("rating map should reflect the update: %v vs %v", ratings["memory-model"], res.NewRating)
	}
}

func TestChallengeAttemptIncorrect(t *testing.T) {
	env := newTestEnv(t)
	subtopicID := uuid.New()
	rows := seedWarmupChallenges(t, env, subtopicID)

	res, err := env.challenge.Attempt(env.ctx, ChallengeAttemptInput{
		ChallengeID:         rows[0].ID,
		UserAnswer:          "b",
		ResponseTimeSeconds: 8,
	})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Correct {
		t.Fatalf("wrong answer should grade incorrect")
	}
	if res.XPEarned != 0 {
		t.Fatalf("wrong answer earns no XP, got %d", res.XPEarned)
	}
	if res.NewRating >= 1200 {
		t.Fatalf("incorrect attempt should lower the rating, got %v", res.NewRating)
	}

	// No XP landed.
	progress, err := env.progression.GetProgress(env.ctx, nil)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress.TotalXP != 0 {
		t.Fatalf("expected 0 total XP, got %d", progress.TotalXP)
	}
}

func TestChallengeAttemptValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.challenge.Attempt(env.ctx, ChallengeAttemptInput{UserAnswer: "a"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing challenge_id should be a validation error, got %v", err)
	}
	if _, err := env.challenge.Attempt(env.ctx, ChallengeAttemptInput{ChallengeID: uuid.New(), UserAnswer: " "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank answer should be a validation error, got %v", err)
	}
	if _, err := env.challenge.Attempt(env.ctx, ChallengeAttemptInput{ChallengeID: uuid.New(), UserAnswer: "a"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown challenge should be not-found, got %v", err)
	}
}
