package analytics

import (
	"math"
	"testing"
)

func TestDescribeCosts(t *testing.T) {
	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	stats := DescribeCosts(sample)

	if stats.Mean != 5 {
		t.Errorf("mean: expected 5, got %f", stats.Mean)
	}
	if stats.Median != 4.5 {
		t.Errorf("median: expected 4.5, got %f", stats.Median)
	}
	if stats.Mode != 4 {
		t.Errorf("mode: expected 4, got %f", stats.Mode)
	}
	if stats.Min != 2 || stats.Max != 9 {
		t.Errorf("min/max: expected 2/9, got %f/%f", stats.Min, stats.Max)
	}
	if stats.Range != 7 {
		t.Errorf("range: expected 7, got %f", stats.Range)
	}
	// Population standard deviation of this sample is exactly 2
	if math.Abs(stats.StandardDeviation-2) > 1e-9 {
		t.Errorf("stddev: expected 2, got %f", stats.StandardDeviation)
	}
}

func TestDescribeCostsEmpty(t *testing.T) {
	stats := DescribeCosts(nil)
	if stats.Mean != 0 || stats.StandardDeviation != 0 {
		t.Errorf("empty sample should be all zeros, got %+v", stats)
	}
	if stats.Description != "all items have the same cost" {
		t.Errorf("unexpected description: %q", stats.Description)
	}
}

func TestDescribeCostsDescriptions(t *testing.T) {
	cases := []struct {
		name   string
		sample []float64
		want   string
	}{
		{"uniform", []float64{50, 50, 50}, "all items have the same cost"},
		{"very consistent", []float64{100, 102, 98}, "item costs are very consistent"},
		{"moderately consistent", []float64{100, 140, 120}, "item costs are moderately consistent"},
		{"varies", []float64{10, 500, 1000}, "item costs vary significantly"},
	}

	for _, tc := range cases {
		stats := DescribeCosts(tc.sample)
		if stats.Description != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, stats.Description)
		}
	}
}

func TestModeTieBreaksToSmallest(t *testing.T) {
	// 3 and 7 both appear twice; the smaller value wins so the result is
	// stable across runs
	for i := 0; i < 20; i++ {
		if mode := modeOf([]float64{7, 3, 7, 3, 5}); mode != 3 {
			t.Fatalf("mode tie-break: expected 3, got %f", mode)
		}
	}
}

func TestDescribeQuantities(t *testing.T) {
	cases := []struct {
		name   string
		sample []float64
		want   string
	}{
		{"same", []float64{2, 2, 2}, "all items have the same quantity"},
		{"similar", []float64{1, 2, 3}, "item quantities are very similar"},
		{"moderate", []float64{1, 4, 6}, "item quantities are moderately varied"},
		{"varied", []float64{1, 3, 20}, "item quantities vary significantly"},
	}

	for _, tc := range cases {
		stats := DescribeQuantities(tc.sample)
		if stats.Description != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, stats.Description)
		}
	}
}

func TestDescribeQuantitiesLeavesModeZero(t *testing.T) {
	stats := DescribeQuantities([]float64{1, 2, 2, 3})
	if stats.Mode != 0 || stats.StandardDeviation != 0 {
		t.Errorf("quantity stats should not fill mode/stddev, got %+v", stats)
	}
}

func TestMedianEvenAndOdd(t *testing.T) {
	if m := medianOf([]float64{3, 1, 2}); m != 2 {
		t.Errorf("odd median: expected 2, got %f", m)
	}
	if m := medianOf([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Errorf("even median: expected 2.5, got %f", m)
	}
}
