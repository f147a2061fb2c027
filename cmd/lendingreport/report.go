package main

import (
	"io"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/associatedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostactivepatrons"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostloanedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/readingpace"
)

// infinitePace is printed for paces of books returned at the instant they were lent; JSON has no infinity.
const infinitePace = "Infinity"

type bookView struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	PageCount *int   `json:"page_count,omitempty"`
}

type patronView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type rankedBookView struct {
	Book  bookView `json:"book"`
	Loans int      `json:"loans"`
}

type rankedPatronView struct {
	Patron patronView `json:"patron"`
	Loans  int        `json:"loans"`
}

type paceView struct {
	PatronID    int  `json:"patron_id"`
	PagesPerDay any  `json:"pages_per_day"`
	Known       bool `json:"known"`
}

type associationView struct {
	Book          bookView `json:"book"`
	CoBorrowCount int      `json:"co_borrow_count"`
	Ratio         float64  `json:"ratio"`
}

type windowView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the JSON document printed by the command, one key per requested section.
// Requested sections without entries are printed as empty lists.
type Report map[string]any

func (r Report) addMostLoaned(result mostloanedbooks.MostLoanedBooks) {
	books := make([]rankedBookView, 0, len(result.Books))
	for _, entry := range result.Books {
		books = append(books, rankedBookView{Book: toBookView(entry.Item), Loans: entry.Count})
	}

	r["most_loaned_books"] = books
}

func (r Report) addMostActive(result mostactivepatrons.MostActivePatrons, from, to time.Time) {
	patrons := make([]rankedPatronView, 0, len(result.Patrons))
	for _, entry := range result.Patrons {
		patrons = append(patrons, rankedPatronView{Patron: toPatronView(entry.Item), Loans: entry.Count})
	}

	r["activity_window"] = windowView{From: from.Format(dateLayout), To: to.Format(dateLayout)}
	r["most_active_patrons"] = patrons
}

func (r Report) addReadingPace(result readingpace.ReadingPace) {
	r["reading_pace"] = paceView{
		PatronID:    result.PatronID,
		PagesPerDay: pagesPerDay(result.PagesPerDay, result.Known),
		Known:       result.Known,
	}
}

func (r Report) addLeaderboard(result readingpace.PaceLeaderboard) {
	paces := make([]paceView, 0, len(result.Patrons))
	for _, entry := range result.Patrons {
		paces = append(paces, paceView{
			PatronID:    entry.Patron.ID,
			PagesPerDay: pagesPerDay(entry.PagesPerDay, true),
			Known:       true,
		})
	}

	r["pace_leaderboard"] = paces
}

func (r Report) addAssociated(result associatedbooks.AssociatedBooks) {
	associations := make([]associationView, 0, len(result.Books))
	for _, entry := range result.Books {
		associations = append(associations, associationView{
			Book:          toBookView(entry.Book),
			CoBorrowCount: entry.CoBorrowCount,
			Ratio:         entry.Ratio,
		})
	}

	r["associated_with_book"] = result.BookID
	r["associated_books"] = associations
}

func writeReport(w io.Writer, report Report) error {
	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(encoded, '\n'))

	return err
}

func pagesPerDay(pace float64, known bool) any {
	switch {
	case !known:
		return nil
	case math.IsInf(pace, 1):
		return infinitePace
	default:
		return pace
	}
}

func toBookView(book lending.Book) bookView {
	return bookView{ID: book.ID, Title: book.Title, PageCount: book.PageCount}
}

func toPatronView(patron lending.Patron) patronView {
	return patronView{
		ID:    patron.ID,
		Name:  patron.FirstName + " " + patron.LastName,
		Email: patron.Email,
	}
}
