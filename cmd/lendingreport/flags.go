package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const dateLayout = "2006-01-02"

const (
	reportAll             = "all"
	reportMostLoaned      = "most-loaned"
	reportMostActive      = "most-active"
	reportPace            = "pace"
	reportPaceLeaderboard = "pace-leaderboard"
	reportAssociated      = "associated"
)

var reports = []string{
	reportAll,
	reportMostLoaned,
	reportMostActive,
	reportPace,
	reportPaceLeaderboard,
	reportAssociated,
}

// Options are the parsed command line flags.
type Options struct {
	ConfigPath string
	EnvFile    string
	Report     string
	Limit      lending.Limit
	From       time.Time
	To         time.Time
	PatronID   int
	BookID     int
	Warm       bool
}

func parseFlags(args []string, now time.Time, output io.Writer) (Options, error) {
	fs := flag.NewFlagSet("lendingreport", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath = fs.String("config", "", "Path to the YAML configuration file")
		envFile    = fs.String("env-file", ".env", "Path to an optional .env file")
		report     = fs.String("report", reportAll, fmt.Sprintf("Report to print, one of %v", reports))
		limit      = fs.Int("limit", 0, "Maximum number of entries, 0 for all")
		from       = fs.String("from", "", "Window start (inclusive) as YYYY-MM-DD, defaults to 30 days before -to")
		to         = fs.String("to", "", "Window end (exclusive) as YYYY-MM-DD, defaults to tomorrow")
		patronID   = fs.Int("patron", 0, "Patron id for the pace report")
		bookID     = fs.Int("book", 0, "Book id for the associated report")
		warm       = fs.Bool("warm", false, "Keep running and warm the result cache on schedule")
	)

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	if !slices.Contains(reports, *report) {
		return Options{}, fmt.Errorf("unknown report %q, expected one of %v", *report, reports)
	}

	windowFrom, windowTo, err := parseWindow(*from, *to, now)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		ConfigPath: *configPath,
		EnvFile:    *envFile,
		Report:     *report,
		Limit:      parseLimit(*limit),
		From:       windowFrom,
		To:         windowTo,
		PatronID:   *patronID,
		BookID:     *bookID,
		Warm:       *warm,
	}

	return opts, opts.validate()
}

func (o Options) validate() error {
	switch o.Report {
	case reportPace:
		if o.PatronID == 0 {
			return errors.New("-patron is required for the pace report")
		}
	case reportAssociated:
		if o.BookID == 0 {
			return errors.New("-book is required for the associated report")
		}
	}

	return nil
}

// parseLimit maps 0 to lending.NoLimit. Negative values are passed on so the query rejects them.
func parseLimit(n int) lending.Limit {
	if n == 0 {
		return lending.NoLimit
	}

	return lending.Top(n)
}

// parseWindow parses the report window in UTC. Missing bounds default to the 30 days up to and
// including today.
func parseWindow(from, to string, now time.Time) (time.Time, time.Time, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	windowTo := today.AddDate(0, 0, 1)

	if to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
		}

		windowTo = parsed
	}

	windowFrom := windowTo.AddDate(0, 0, -30)

	if from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
		}

		windowFrom = parsed
	}

	return windowFrom, windowTo, nil
}
