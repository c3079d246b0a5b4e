package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// TopChartLimit bounds the ranking shown on charts.
	TopChartLimit = 10
	// TopPromptLimit bounds the ranking embedded in generation prompts.
	TopPromptLimit = 5
)

// TopN returns the first n items sorted descending by the given metric.
// The sort is stable: ties keep their original relative order.
func TopN[T any](items []T, n int, metric func(T) decimal.Decimal) []T {
	ranked := make([]T, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(ranked[i]).GreaterThan(metric(ranked[j]))
	})

	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
