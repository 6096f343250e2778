package engagement

import (
	"math"
	"time"
)

const (
	MomentumLow    = "low"
	MomentumMedium = "medium"
	MomentumPeak   = "peak"

	momentumCeiling = 100.0
)

// DecayFactor returns the exponential decay multiplier for the elapsed
// inactivity, with the configured half-life. No background timer is needed:
// callers apply this lazily on read.
func DecayFactor(elapsed time.Duration, halfLifeHours float64) float64 {
	if halfLifeHours <= 0 || elapsed <= 0 {
		return 1.0
	}
	return math.Pow(0.5, elapsed.Hours()/halfLifeHours)
}

// EffectiveMomentum applies lazy decay to a stored score.
func EffectiveMomentum(stored float64, lastUpdate time.Time, now time.Time, halfLifeHours float64) float64 {
	if stored <= 0 {
		return 0
	}
	return stored * DecayFactor(now.Sub(lastUpdate), halfLifeHours)
}

// MomentumWeights control the contribution of each activity signal.
type MomentumWeights struct {
	Velocity float64
	Streak   float64
	Accuracy float64
}

// BoostMomentum folds a qualifying activity event into the decayed score.
// xpEarned feeds the velocity term, streak the continuity term, and accuracy
// (0..1, negative when unknown) the quality term.
func BoostMomentum(effective float64, xpEarned int, streak int, accuracy float64, w MomentumWeights) float64 {
	score := effective
	score += w.Velocity * float64(xpEarned) * 0.5
	score += w.Streak * float64(streak) * 2.0
	if accuracy >= 0 {
		score += w.Accuracy * accuracy * 20.0
	}
	if score > momentumCeiling {
		score = momentumCeiling
	}
	if score < 0 {
		score = 0
	}
	return score
}

// MomentumLevel maps the scalar score to a named band.
func MomentumLevel(score, mediumMin, peakMin float64) string {
	switch {
	case score >= peakMin:
		return MomentumPeak
	case score >= mediumMin:
		return MomentumMedium
	default:
		return MomentumLow
	}
}
