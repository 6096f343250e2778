package engagement

import "math"

// ExpectedScore returns the probability of a fully correct outcome for a
// learner at rating facing an item of the given difficulty, on the classic
// 400-point logistic scale.
func ExpectedScore(rating, itemDifficulty float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (itemDifficulty-rating)/400.0))
}

// KFactor shrinks the adjustment strength as the attempt count for a concept
// grows: high early volatility, stable rating later.
func KFactor(baseK, minK float64, priorAttempts int) float64 {
	if priorAttempts < 0 {
		priorAttempts = 0
	}
	k := baseK / (1.0 + float64(priorAttempts)/10.0)
	if k < minK {
		k = minK
	}
	return k
}

// UpdateElo computes the post-attempt rating. outcome must be in [0,1].
// confidence, when positive, scales the adjustment (a hesitant correct answer
// moves the rating less than a confident one).
func UpdateElo(oldRating, outcome, itemDifficulty float64, priorAttempts int, confidence float64, baseK, minK float64) float64 {
	expected := ExpectedScore(oldRating, itemDifficulty)
	k := KFactor(baseK, minK, priorAttempts)
	if confidence > 0 {
		if confidence > 1 {
			confidence = 1
		}
		k *= confidence
	}
	return oldRating + k*(outcome-expected)
}
