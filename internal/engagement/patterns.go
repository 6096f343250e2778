package engagement

import "sort"

const (
	BucketMorning   = "morning"
	BucketAfternoon = "afternoon"
	BucketEvening   = "evening"
	BucketNight     = "night"
)

// TimeBucket partitions the wall-clock hour of the day.
func TimeBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 22:
		return BucketEvening
	default:
		return BucketNight
	}
}

type BucketStat struct {
	Bucket         string  `json:"bucket"`
	TotalSessions  int     `json:"total_sessions"`
	Completed      int     `json:"completed_sessions"`
	CompletionRate float64 `json:"completion_rate"`
}

// AggregateBuckets folds (bucket, completed) session records into per-bucket
// completion rates, sorted by bucket name for stable output.
func AggregateBuckets(buckets []string, completed []bool) []BucketStat {
	byName := map[string]*BucketStat{}
	for i, b := range buckets {
		st, ok := byName[b]
		if !ok {
			st = &BucketStat{Bucket: b}
			byName[b] = st
		}
		st.TotalSessions++
		if i < len(completed) && completed[i] {
			st.Completed++
		}
	}
	out := make([]BucketStat, 0, len(byName))
	for _, st := range byName {
		st.CompletionRate = float64(st.Completed) / float64(st.TotalSessions)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

// BestWindow picks the bucket with the highest completion rate among buckets
// meeting the sample floor. Ties break toward the larger sample, then
// alphabetically, so the recommendation is deterministic.
func BestWindow(stats []BucketStat, minSamples int) (BucketStat, bool) {
	var best BucketStat
	found := false
	for _, st := range stats {
		if st.TotalSessions < minSamples {
			continue
		}
		if !found {
			best = st
			found = true
			continue
		}
		if st.CompletionRate > best.CompletionRate {
			best = st
			continue
		}
		if st.CompletionRate == best.CompletionRate {
			if st.TotalSessions > best.TotalSessions {
				best = st
			} else if st.TotalSessions == best.TotalSessions && st.Bucket < best.Bucket {
				best = st
			}
		}
	}
	return best, found
}
