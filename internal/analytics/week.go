package analytics

import "time"

// WeekStart returns the most recent Sunday at 00:00 in t's location. Insight
// quota windows are aligned to this boundary.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	t = t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
