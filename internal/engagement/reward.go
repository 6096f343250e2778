package engagement

import (
	"fmt"
	"time"
)

const (
	RewardMilestone   = "milestone"
	RewardConfetti    = "confetti"
	RewardAchievement = "achievement"
	RewardEncourage   = "encouragement"

	NudgeDismissed = "dismissed"
	NudgeEngaged   = "engaged"
	NudgeIgnored   = "ignored"
)

// ShouldShowReward decides whether a reward of the given type may surface.
// Milestones are always eligible; other types are throttled to a minimum
// interval since the last reward of that type so they keep surprise value.
func ShouldShowReward(rewardType string, lastShown time.Time, now time.Time, minInterval time.Duration) bool {
	if rewardType == RewardMilestone {
		return true
	}
	if lastShown.IsZero() {
		return true
	}
	return now.Sub(lastShown) >= minInterval
}

// NudgeDeltas are the per-interaction intensity adjustments.
type NudgeDeltas struct {
	Engaged   float64
	Dismissed float64
	Ignored   float64
	Floor     float64
}

// ApplyNudgeInteraction adjusts a nudge type's intensity for a user
// interaction. Intensity is clamped to [floor, 1]; the floor keeps a nudge
// type from disabling itself permanently.
func ApplyNudgeInteraction(intensity float64, interaction string, d NudgeDeltas) (float64, error) {
	switch interaction {
	case NudgeEngaged:
		intensity += d.Engaged
	case NudgeDismissed:
		intensity += d.Dismissed
	case NudgeIgnored:
		intensity += d.Ignored
	default:
		return intensity, fmt.Errorf("unknown nudge interaction %q", interaction)
	}
	if intensity > 1.0 {
		intensity = 1.0
	}
	if intensity < d.Floor {
		intensity = d.Floor
	}
	return intensity, nil
}

// ShouldShowNudge gates a nudge on elapsed time scaled by intensity: a fully
// engaged nudge type (intensity 1.0) may fire at the base interval, a cold
// one waits nearly twice as long.
func ShouldShowNudge(intensity float64, lastShown time.Time, now time.Time, baseInterval time.Duration) bool {
	if lastShown.IsZero() {
		return true
	}
	required := time.Duration(float64(baseInterval) * (2.0 - intensity))
	return now.Sub(lastShown) >= required
}
