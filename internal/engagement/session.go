package engagement

// Learning-session phases, in order. PRIME_NEXT may loop back to WARMUP for
// the next subtopic within the same session.
const (
	PhaseWarmup     = "WARMUP"
	PhaseFocus      = "FOCUS"
	PhaseCheckpoint = "CHECKPOINT"
	PhaseReward     = "REWARD"
	PhasePrimeNext  = "PRIME_NEXT"
)

var phaseOrder = map[string]int{
	PhaseWarmup:     0,
	PhaseFocus:      1,
	PhaseCheckpoint: 2,
	PhaseReward:     3,
	PhasePrimeNext:  4,
}

// ValidPhase reports whether s names a session phase.
func ValidPhase(s string) bool {
	_, ok := phaseOrder[s]
	return ok
}

// CanTransition reports whether from -> to is a legal step: exactly one
// forward step along the phase order, or the PRIME_NEXT -> WARMUP loop-back.
func CanTransition(from, to string) bool {
	fi, ok := phaseOrder[from]
	if !ok {
		return false
	}
	ti, ok := phaseOrder[to]
	if !ok {
		return false
	}
	if from == PhasePrimeNext && to == PhaseWarmup {
		return true
	}
	return ti == fi+1
}
