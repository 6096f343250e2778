package engagement

import "math"

// Leveling uses triangular cumulative thresholds: reaching level L requires
// 100 * L*(L-1)/2 total XP, so each level is 100 XP wider than the last.

// CumulativeXPForLevel returns the total XP at which level L begins.
func CumulativeXPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 100 * level * (level - 1) / 2
}

type LevelInfo struct {
	Level          int     `json:"level"`
	XPInLevel      int     `json:"xp_in_level"`
	XPToNextLevel  int     `json:"xp_to_next_level"`
	ProgressToNext float64 `json:"progress_to_next"`
}

// CalculateLevel derives the unique level L such that
// CumulativeXPForLevel(L) <= totalXP < CumulativeXPForLevel(L+1).
func CalculateLevel(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	// 50*L*(L-1) <= xp  =>  L <= (1 + sqrt(1 + 0.08*xp)) / 2
	level := int((1 + math.Sqrt(1+0.08*float64(totalXP))) / 2)
	if level < 1 {
		level = 1
	}
	for CumulativeXPForLevel(level+1) <= totalXP {
		level++
	}
	for level > 1 && CumulativeXPForLevel(level) > totalXP {
		level--
	}

	floor := CumulativeXPForLevel(level)
	width := 100 * level
	inLevel := totalXP - floor
	return LevelInfo{
		Level:          level,
		XPInLevel:      inLevel,
		XPToNextLevel:  CumulativeXPForLevel(level+1) - totalXP,
		ProgressToNext: float64(inLevel) / float64(width),
	}
}

// StreakMultiplier returns the XP multiplier earned by a daily streak.
func StreakMultiplier(currentStreak int) float64 {
	switch {
	case currentStreak < 3:
		return 1.0
	case currentStreak < 7:
		return 1.15
	case currentStreak < 14:
		return 1.25
	default:
		return 1.5
	}
}

// SpeedBonusFactor returns the fractional XP bonus for a fast response.
// Zero response time means "not timed" and earns no bonus.
func SpeedBonusFactor(responseSeconds, fastCutoff, quickCutoff, fastFactor, quickFactor float64) float64 {
	if responseSeconds <= 0 {
		return 0
	}
	if responseSeconds <= fastCutoff {
		return fastFactor
	}
	if responseSeconds <= quickCutoff {
		return quickFactor
	}
	return 0
}

// ComputeAwardXP applies the streak multiplier, speed bonus and peak-momentum
// bonus to a base XP value. Deterministic for identical inputs.
func ComputeAwardXP(base int, streak int, speedFactor float64, peakMomentum bool, peakFactor float64) int {
	if base <= 0 {
		return 0
	}
	xp := float64(base)
	xp += float64(base) * speedFactor
	xp *= StreakMultiplier(streak)
	if peakMomentum {
		xp += float64(base) * peakFactor
	}
	return int(math.Round(xp))
}
