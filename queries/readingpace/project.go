package readingpace

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// ProjectReadingPace computes the pace of the queried patron from their loans.
// Loans of other patrons are ignored.
func ProjectReadingPace(loans []lending.Loan, query Query) ReadingPace {
	pagesPerDay, known := lending.ReadingPaceForPatron(lending.Patron{ID: query.PatronID}, loans)

	return ReadingPace{
		PatronID:    query.PatronID,
		PagesPerDay: pagesPerDay,
		Known:       known,
	}
}

// ProjectAll computes the pace of every patron in loans and ranks them, fastest first.
func ProjectAll(loans []lending.Loan, query LeaderboardQuery) (PaceLeaderboard, error) {
	paces, err := lending.ApplyLimit(lending.ReadingPaceByPatron(loans), query.Limit)
	if err != nil {
		return PaceLeaderboard{}, err
	}

	return PaceLeaderboard{
		Patrons: paces,
		Count:   len(paces),
	}, nil
}
