package mostactivepatrons

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// MostActivePatrons represents the query result: patrons ranked by loans in the window.
type MostActivePatrons struct {
	Patrons []lending.RankedEntry[lending.Patron]
	Count   int
}

// ResultCount returns the number of ranked patrons.
func (r MostActivePatrons) ResultCount() int {
	return r.Count
}
