package analytics

import "testing"

func TestRate(t *testing.T) {
	if r := Rate(75, 100); r != 75 {
		t.Errorf("expected 75, got %f", r)
	}
	// Overshooting attendance is reported as-is, not capped
	if r := Rate(120, 100); r != 120 {
		t.Errorf("expected 120, got %f", r)
	}
}

func TestRateZeroExpected(t *testing.T) {
	if r := Rate(50, 0); r != 0 {
		t.Errorf("zero expected: expected 0, got %f", r)
	}
	if r := Rate(50, -3); r != 0 {
		t.Errorf("negative expected: expected 0, got %f", r)
	}
}

func TestAverageRating(t *testing.T) {
	if avg := AverageRating([]float64{4, 5, 3}); avg != 4 {
		t.Errorf("expected 4, got %f", avg)
	}
	if avg := AverageRating(nil); avg != 0 {
		t.Errorf("empty ratings: expected 0, got %f", avg)
	}
}
