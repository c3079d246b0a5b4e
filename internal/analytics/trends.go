package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket sources for trend series.
const (
	SourceHistorical = "historical"
	SourcePredicted  = "predicted"
)

// TimeBucket is one calendar-month aggregate of a single metric.
type TimeBucket struct {
	Label  string          `json:"label"` // e.g. "January 2026"
	Source string          `json:"source"`
	Value  decimal.Decimal `json:"value"`
}

// BucketPoint is one dated contribution to a bucketed series.
type BucketPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// MonthKey renders a date into its bucket label in local time.
func MonthKey(t time.Time) string {
	return t.Local().Format("January 2006")
}

// BucketByMonth sums points into calendar-month buckets tagged as historical,
// ordered chronologically.
func BucketByMonth(points []BucketPoint) []TimeBucket {
	sums := make(map[string]decimal.Decimal)
	firstSeen := make(map[string]time.Time)

	for _, p := range points {
		key := MonthKey(p.Date)
		sums[key] = sums[key].Add(p.Value)
		if existing, ok := firstSeen[key]; !ok || p.Date.Before(existing) {
			firstSeen[key] = p.Date
		}
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return firstSeen[keys[i]].Before(firstSeen[keys[j]])
	})

	buckets := make([]TimeBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, TimeBucket{
			Label:  key,
			Source: SourceHistorical,
			Value:  sums[key],
		})
	}
	return buckets
}

// MergeTrend concatenates historical buckets with externally supplied
// forecast buckets. No overlap reconciliation: a month key present on both
// sides appears twice, once per source, which is what the chart expects.
func MergeTrend(historical, predicted []TimeBucket) []TimeBucket {
	merged := make([]TimeBucket, 0, len(historical)+len(predicted))
	merged = append(merged, historical...)
	for _, b := range predicted {
		b.Source = SourcePredicted
		merged = append(merged, b)
	}
	return merged
}
