package lending

import (
	"slices"
	"time"
)

// Interval is a half-open time span. It is valid only when Start is before End.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of a valid interval and zero otherwise.
func (i Interval) Duration() time.Duration {
	if !i.Start.Before(i.End) {
		return 0
	}

	return i.End.Sub(i.Start)
}

// MergeIntervals merges overlapping and touching intervals into disjoint spans ordered by start.
//
// Intervals whose start is not before their end are discarded. An interval starting exactly
// where the current span ends extends it. Intervals contained in the current span never shorten
// it. The input slice is not modified, and the result does not depend on the input order.
func MergeIntervals(intervals []Interval) []Interval {
	valid := make([]Interval, 0, len(intervals))
	for _, interval := range intervals {
		if interval.Start.Before(interval.End) {
			valid = append(valid, interval)
		}
	}

	slices.SortFunc(valid, func(a, b Interval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}

		return a.End.Compare(b.End)
	})

	merged := make([]Interval, 0, len(valid))
	for _, interval := range valid {
		last := len(merged) - 1

		if last >= 0 && !interval.Start.After(merged[last].End) {
			if interval.End.After(merged[last].End) {
				merged[last].End = interval.End
			}
			continue
		}

		merged = append(merged, interval)
	}

	return merged
}

// CoveredDuration returns the total time covered by the intervals, counting overlaps once.
func CoveredDuration(intervals []Interval) time.Duration {
	var total time.Duration
	for _, span := range MergeIntervals(intervals) {
		total += span.Duration()
	}

	return total
}

// days converts a duration to fractional days.
func days(d time.Duration) float64 {
	return d.Hours() / 24
}
