package readingpace

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// ReadingPace represents the pace of one patron.
// PagesPerDay is only meaningful when Known is true. It is +Inf when all qualifying loans were
// returned at the instant they were lent.
type ReadingPace struct {
	PatronID    int
	PagesPerDay float64
	Known       bool
}

// ResultCount returns 1 for a known pace and 0 otherwise.
func (r ReadingPace) ResultCount() int {
	if r.Known {
		return 1
	}

	return 0
}

// PaceLeaderboard represents the paces of all patrons with a known pace, fastest first.
type PaceLeaderboard struct {
	Patrons []lending.PatronPace
	Count   int
}

// ResultCount returns the number of ranked patrons.
func (r PaceLeaderboard) ResultCount() int {
	return r.Count
}
