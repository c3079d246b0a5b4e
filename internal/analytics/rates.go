package analytics

// Rate converts an actual/expected pair into a percentage. A zero or negative
// expected count yields 0, never Inf or NaN. This is the single
// division-by-zero guard for attendance, record and response rates.
func Rate(actual, expected int) float64 {
	if expected <= 0 {
		return 0
	}
	return float64(actual) / float64(expected) * 100
}

// AverageRating is the arithmetic mean of the numeric ratings in a feedback
// set. Responses without a numeric rating are excluded before this is called.
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}
