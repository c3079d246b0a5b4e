package analytics

import (
	"math"
	"sort"
)

// StatisticsBlock describes a numeric sample. For quantity samples the mode
// and standard deviation are not meaningful and stay zero.
type StatisticsBlock struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Mode              float64 `json:"mode"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Range             float64 `json:"range"`
	StandardDeviation float64 `json:"standard_deviation"`
	Description       string  `json:"description"`
}

// DescribeCosts computes the full statistics block for a cost sample. An
// empty sample yields all zeros and the "same cost" description.
func DescribeCosts(sample []float64) StatisticsBlock {
	if len(sample) == 0 {
		return StatisticsBlock{Description: "all items have the same cost"}
	}

	mean := meanOf(sample)
	min, max := minMax(sample)
	stdDev := populationStdDev(sample, mean)

	return StatisticsBlock{
		Mean:              mean,
		Median:            medianOf(sample),
		Mode:              modeOf(sample),
		Min:               min,
		Max:               max,
		Range:             max - min,
		StandardDeviation: stdDev,
		Description:       costDescription(stdDev, mean),
	}
}

// DescribeQuantities computes quantity statistics. The qualitative label is
// driven by the range, not the deviation.
func DescribeQuantities(sample []float64) StatisticsBlock {
	if len(sample) == 0 {
		return StatisticsBlock{Description: "all items have the same quantity"}
	}

	min, max := minMax(sample)
	r := max - min

	return StatisticsBlock{
		Mean:        meanOf(sample),
		Median:      medianOf(sample),
		Min:         min,
		Max:         max,
		Range:       r,
		Description: quantityDescription(r),
	}
}

func meanOf(sample []float64) float64 {
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}

func medianOf(sample []float64) float64 {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeOf returns the most frequent value. Ties break toward the smallest
// value so the result does not depend on map iteration order.
func modeOf(sample []float64) float64 {
	counts := make(map[float64]int, len(sample))
	for _, v := range sample {
		counts[v]++
	}

	var mode float64
	best := 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode = v
			best = c
		}
	}
	return mode
}

func minMax(sample []float64) (float64, float64) {
	min, max := sample[0], sample[0]
	for _, v := range sample[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// populationStdDev divides by n, not n-1.
func populationStdDev(sample []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range sample {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(sample)))
}

func costDescription(stdDev, mean float64) string {
	switch {
	case stdDev == 0:
		return "all items have the same cost"
	case mean > 0 && stdDev < mean*0.1:
		return "item costs are very consistent"
	case mean > 0 && stdDev < mean*0.3:
		return "item costs are moderately consistent"
	default:
		return "item costs vary significantly"
	}
}

func quantityDescription(r float64) string {
	switch {
	case r == 0:
		return "all items have the same quantity"
	case r <= 2:
		return "item quantities are very similar"
	case r <= 5:
		return "item quantities are moderately varied"
	default:
		return "item quantities vary significantly"
	}
}
