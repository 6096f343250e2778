package engagement

import "time"

// StreakSnapshot is the pure-value view of a user's streak state. The day
// resolution is a calendar date at UTC midnight.
type StreakSnapshot struct {
	CurrentStreak      int
	LongestStreak      int
	GraceDaysRemaining int
	QualifyingDays     int
	LastQualifyingDay  time.Time
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ApplyDay advances the streak for activity on asOfDay. Calling it twice for
// the same day is a no-op. A gap covered by remaining grace days consumes one
// grace day per missed day and keeps the streak continuous; a larger gap
// resets the streak to 1.
func ApplyDay(s StreakSnapshot, asOfDay time.Time, graceCap, replenishEvery int) StreakSnapshot {
	day := Day(asOfDay)

	if !s.LastQualifyingDay.IsZero() && day.Equal(s.LastQualifyingDay) {
		return s
	}
	if !s.LastQualifyingDay.IsZero() && day.Before(s.LastQualifyingDay) {
		// Out-of-order call; the recorded day already covers it.
		return s
	}

	out := s
	switch {
	case s.LastQualifyingDay.IsZero():
		out.CurrentStreak = 1
	default:
		gap := int(day.Sub(s.LastQualifyingDay).Hours() / 24)
		missed := gap - 1
		switch {
		case missed == 0:
			out.CurrentStreak = s.CurrentStreak + 1
		case missed <= s.GraceDaysRemaining:
			out.GraceDaysRemaining = s.GraceDaysRemaining - missed
			out.CurrentStreak = s.CurrentStreak + 1
		default:
			out.CurrentStreak = 1
		}
	}

	out.QualifyingDays = s.QualifyingDays + 1
	if replenishEvery > 0 && out.QualifyingDays%replenishEvery == 0 && out.GraceDaysRemaining < graceCap {
		out.GraceDaysRemaining++
	}
	if out.CurrentStreak > out.LongestStreak {
		out.LongestStreak = out.CurrentStreak
	}
	out.LastQualifyingDay = day
	return out
}
