package mostactivepatrons

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// ProjectMostActivePatrons ranks the patrons of the loans lent within the query window.
// Loans outside the window are ignored even if the source returned them.
func ProjectMostActivePatrons(loans []lending.Loan, query Query) (MostActivePatrons, error) {
	ranked, err := lending.MostActivePatrons(loans, query.From, query.To, query.Limit)
	if err != nil {
		return MostActivePatrons{}, err
	}

	return MostActivePatrons{
		Patrons: ranked,
		Count:   len(ranked),
	}, nil
}
