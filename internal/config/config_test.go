package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.XP.BaseValues["quiz_completion"] != 50 {
		t.Fatalf("expected default quiz XP 50, got %d", cfg.XP.BaseValues["quiz_completion"])
	}
	if cfg.Session.AbandonAfterMinutes != 120 {
		t.Fatalf("expected default abandon timeout 120, got %d", cfg.Session.AbandonAfterMinutes)
	}
	if cfg.Mastery.MasteryThreshold != 1100 {
		t.Fatalf("expected default mastery threshold 1100, got %v", cfg.Mastery.MasteryThreshold)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	// Caller still gets a usable config.
	if cfg.XP.BaseValues["subtopic_completion"] != 100 {
		t.Fatalf("missing file should leave defaults intact, got %+v", cfg.XP.BaseValues)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	raw := []byte("session:\n  abandon_after_minutes: 30\nmastery:\n  mastery_threshold: 1000\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.AbandonAfterMinutes != 30 {
		t.Fatalf("expected overridden abandon timeout 30, got %d", cfg.Session.AbandonAfterMinutes)
	}
	if cfg.Mastery.MasteryThreshold != 1000 {
		t.Fatalf("expected overridden mastery threshold 1000, got %v", cfg.Mastery.MasteryThreshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Mastery.InitialRating != 1200 {
		t.Fatalf("expected default initial rating 1200, got %v", cfg.Mastery.InitialRating)
	}
	if cfg.Reward.MinIntervalMinutes != 45 {
		t.Fatalf("expected default reward interval 45, got %d", cfg.Reward.MinIntervalMinutes)
	}
}

func TestLoadBackfillsBaseValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	raw := []byte("xp:\n  base_values: null\n  fast_answer_seconds: 5\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.XP.FastAnswerSeconds != 5 {
		t.Fatalf("expected overridden fast answer cutoff 5, got %v", cfg.XP.FastAnswerSeconds)
	}
	if cfg.XP.BaseValues["quiz_completion"] != 50 {
		t.Fatalf("nulled base values should fall back to defaults, got %+v", cfg.XP.BaseValues)
	}
}

func TestLoadMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("session: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error for malformed YAML")
	}
}
