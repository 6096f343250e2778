package engagement

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	legal := [][2]string{
		{PhaseWarmup, PhaseFocus},
		{PhaseFocus, PhaseCheckpoint},
		{PhaseCheckpoint, PhaseReward},
		{PhaseReward, PhasePrimeNext},
		{PhasePrimeNext, PhaseWarmup},
	}
	for _, p := range legal {
		if !CanTransition(p[0], p[1]) {
			t.Fatalf("%s -> %s should be legal", p[0], p[1])
		}
	}

	illegal := [][2]string{
		{PhaseWarmup, PhaseCheckpoint},
		{PhaseFocus, PhaseWarmup},
		{PhaseCheckpoint, PhaseFocus},
		{PhaseWarmup, PhaseWarmup},
		{PhaseReward, PhaseWarmup},
		{PhasePrimeNext, PhaseFocus},
		{"UNKNOWN", PhaseFocus},
		{PhaseWarmup, "UNKNOWN"},
	}
	for _, p := range illegal {
		if CanTransition(p[0], p[1]) {
			t.Fatalf("%s -> %s should be illegal", p[0], p[1])
		}
	}
}

func TestValidPhase(t *testing.T) {
	for _, p := range []string{PhaseWarmup, PhaseFocus, PhaseCheckpoint, PhaseReward, PhasePrimeNext} {
		if !ValidPhase(p) {
			t.Fatalf("%s should be valid", p)
		}
	}
	if ValidPhase("COOLDOWN") {
		t.Fatalf("COOLDOWN is not a phase")
	}
}
