// Package readingpace implements the Reading Pace query use cases.
//
// Query returns the overall pages per day of one patron. Only returned loans of books with a
// known page count count; overlapping loan periods are merged so parallel reading is not counted
// twice. The pace is reported as unknown when no loan qualifies.
//
// LeaderboardQuery returns the pace of every patron with a known pace, fastest reader first.
package readingpace
