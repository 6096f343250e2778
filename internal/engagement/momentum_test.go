package engagement

import (
	"math"
	"testing"
	"time"
)

func TestDecayFactorHalfLife(t *testing.T) {
	f := DecayFactor(36*time.Hour, 36)
	if math.Abs(f-0.5) > 1e-9 {
		t.Fatalf("one half-life should halve the score, got %f", f)
	}
	if f := DecayFactor(0, 36); f != 1.0 {
		t.Fatalf("no elapsed time, no decay: %f", f)
	}
}

func TestEffectiveMomentumDecays(t *testing.T) {
	now := time.Now().UTC()
	stored := 80.0
	eff := EffectiveMomentum(stored, now.Add(-72*time.Hour), now, 36)
	if math.Abs(eff-20.0) > 1e-6 {
		t.Fatalf("two half-lives should quarter the score, got %f", eff)
	}
	if got := EffectiveMomentum(0, now.Add(-time.Hour), now, 36); got != 0 {
		t.Fatalf("zero stays zero, got %f", got)
	}
}

func TestBoostMomentumCapsAndFloors(t *testing.T) {
	w := MomentumWeights{Velocity: 0.5, Streak: 0.3, Accuracy: 0.2}
	score := BoostMomentum(99, 500, 30, 1.0, w)
	if score != 100 {
		t.Fatalf("score should cap at 100, got %f", score)
	}
	score = BoostMomentum(0, 0, 0, -1, w)
	if score != 0 {
		t.Fatalf("no signal, no momentum: %f", score)
	}
}

func TestBoostMomentumSkipsUnknownAccuracy(t *testing.T) {
	w := MomentumWeights{Velocity: 0, Streak: 0, Accuracy: 1}
	withAcc := BoostMomentum(10, 0, 0, 0.5, w)
	without := BoostMomentum(10, 0, 0, -1, w)
	if withAcc <= without {
		t.Fatalf("known accuracy should contribute: %f vs %f", withAcc, without)
	}
}

func TestMomentumLevelBands(t *testing.T) {
	if got := MomentumLevel(10, 30, 75); got != MomentumLow {
		t.Fatalf("10 -> %s", got)
	}
	if got := MomentumLevel(30, 30, 75); got != MomentumMedium {
		t.Fatalf("30 -> %s", got)
	}
	if got := MomentumLevel(80, 30, 75); got != MomentumPeak {
		t.Fatalf("80 -> %s", got)
	}
}
