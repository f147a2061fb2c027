package associatedbooks

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// AssociatedBooks represents the books associated with BookID, most co-borrowed first.
type AssociatedBooks struct {
	BookID int
	Books  []lending.AssociationEntry
	Count  int
}

// ResultCount returns the number of associated books.
func (r AssociatedBooks) ResultCount() int {
	return r.Count
}
