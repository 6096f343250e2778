package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the engine tuning knobs. Values are loaded from a YAML file
// when ENGINE_CONFIG_PATH points at one; otherwise the compiled-in defaults
// apply. Every knob has a sane default so the file is optional.
type Config struct {
	XP       XPConfig       `yaml:"xp"`
	Streak   StreakConfig   `yaml:"streak"`
	Mastery  MasteryConfig  `yaml:"mastery"`
	Momentum MomentumConfig `yaml:"momentum"`
	Session  SessionConfig  `yaml:"session"`
	Reward   RewardConfig   `yaml:"reward"`
	Patterns PatternsConfig `yaml:"patterns"`

	// Prerequisites maps a subtopic id to the concept tags that must be
	// mastered before it.
	Prerequisites map[string][]string `yaml:"prerequisites"`
}

type XPConfig struct {
	// BaseValues maps activity type to base XP.
	BaseValues map[string]int `yaml:"base_values"`
	// FastAnswerSeconds / QuickAnswerSeconds gate the speed bonus tiers.
	FastAnswerSeconds  float64 `yaml:"fast_answer_seconds"`
	QuickAnswerSeconds float64 `yaml:"quick_answer_seconds"`
	FastBonusFactor    float64 `yaml:"fast_bonus_factor"`
	QuickBonusFactor   float64 `yaml:"quick_bonus_factor"`
	// PeakMomentumFactor multiplies XP while momentum is in the peak band.
	PeakMomentumFactor float64 `yaml:"peak_momentum_factor"`
}

type StreakConfig struct {
	GraceDayCap        int `yaml:"grace_day_cap"`
	ReplenishEveryDays int `yaml:"replenish_every_days"`
}

type MasteryConfig struct {
	InitialRating    float64 `yaml:"initial_rating"`
	BaseK            float64 `yaml:"base_k"`
	MinK             float64 `yaml:"min_k"`
	MasteryThreshold float64 `yaml:"mastery_threshold"`
}

type MomentumConfig struct {
	HalfLifeHours  float64 `yaml:"half_life_hours"`
	MediumBandMin  float64 `yaml:"medium_band_min"`
	PeakBandMin    float64 `yaml:"peak_band_min"`
	VelocityWeight float64 `yaml:"velocity_weight"`
	StreakWeight   float64 `yaml:"streak_weight"`
	AccuracyWeight float64 `yaml:"accuracy_weight"`
}

type SessionConfig struct {
	AbandonAfterMinutes int `yaml:"abandon_after_minutes"`
}

type RewardConfig struct {
	// MinIntervalMinutes throttles non-milestone reward types.
	MinIntervalMinutes int `yaml:"min_interval_minutes"`
	// Nudge intensity adjustments per interaction kind.
	NudgeEngagedDelta   float64 `yaml:"nudge_engaged_delta"`
	NudgeDismissedDelta float64 `yaml:"nudge_dismissed_delta"`
	NudgeIgnoredDelta   float64 `yaml:"nudge_ignored_delta"`
	NudgeIntensityFloor float64 `yaml:"nudge_intensity_floor"`
	NudgeBaseMinutes    int     `yaml:"nudge_base_minutes"`
}

type PatternsConfig struct {
	MinSamplesPerBucket int `yaml:"min_samples_per_bucket"`
}

func Default() Config {
	return Config{
		XP: XPConfig{
			BaseValues: map[string]int{
				"quiz_completion":         50,
				"subtopic_completion":     100,
				"focused_time_block":      30,
				"streak_bonus":            15,
				"quick_challenge_correct": 20,
				"warmup_completion":       10,
				"checkpoint_completion":   25,
			},
			FastAnswerSeconds:  10,
			QuickAnswerSeconds: 20,
			FastBonusFactor:    0.5,
			QuickBonusFactor:   0.2,
			PeakMomentumFactor: 0.25,
		},
		Streak: StreakConfig{
			GraceDayCap:        3,
			ReplenishEveryDays: 7,
		},
		Mastery: MasteryConfig{
			InitialRating:    1200,
			BaseK:            32,
			MinK:             8,
			MasteryThreshold: 1100,
		},
		Momentum: MomentumConfig{
			HalfLifeHours:  36,
			MediumBandMin:  30,
			PeakBandMin:    75,
			VelocityWeight: 0.5,
			StreakWeight:   0.3,
			AccuracyWeight: 0.2,
		},
		Session: SessionConfig{
			AbandonAfterMinutes: 120,
		},
		Reward: RewardConfig{
			MinIntervalMinutes:  45,
			NudgeEngagedDelta:   0.15,
			NudgeDismissedDelta: -0.25,
			NudgeIgnoredDelta:   -0.05,
			NudgeIntensityFloor: 0.1,
			NudgeBaseMinutes:    240,
		},
		Patterns: PatternsConfig{
			MinSamplesPerBucket: 3,
		},
		Prerequisites: map[string][]string{},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse engine config: %w", err)
	}
	if len(cfg.XP.BaseValues) == 0 {
		cfg.XP.BaseValues = Default().XP.BaseValues
	}
	return cfg, nil
}
