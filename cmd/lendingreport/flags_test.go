package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

var fixedNow = time.Date(2024, time.May, 15, 18, 30, 0, 0, time.UTC)

func Test_parseFlags_UsesDefaults(t *testing.T) {
	// act
	opts, err := parseFlags(nil, fixedNow, io.Discard)

	// assert
	require.NoError(t, err)
	assert.Equal(t, reportAll, opts.Report)
	assert.Equal(t, ".env", opts.EnvFile)
	assert.Equal(t, lending.NoLimit, opts.Limit)
	assert.Equal(t, time.Date(2024, time.May, 16, 0, 0, 0, 0, time.UTC), opts.To)
	assert.Equal(t, time.Date(2024, time.April, 16, 0, 0, 0, 0, time.UTC), opts.From)
	assert.False(t, opts.Warm)
}

func Test_parseFlags_ParsesReportArguments(t *testing.T) {
	// act
	opts, err := parseFlags([]string{
		"-config", "lending.yaml",
		"-report", "most-active",
		"-limit", "5",
		"-from", "2024-01-01",
		"-to", "2024-02-01",
	}, fixedNow, io.Discard)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "lending.yaml", opts.ConfigPath)
	assert.Equal(t, reportMostActive, opts.Report)
	assert.Equal(t, lending.Top(5), opts.Limit)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), opts.From)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), opts.To)
}

func Test_parseFlags_Fails_ForInvalidArguments(t *testing.T) {
	testCases := []struct {
		description string
		args        []string
	}{
		{"unknown report", []string{"-report", "overdue"}},
		{"malformed from", []string{"-from", "01/02/2024"}},
		{"malformed to", []string{"-to", "tomorrow"}},
		{"pace without patron", []string{"-report", "pace"}},
		{"associated without book", []string{"-report", "associated"}},
		{"unknown flag", []string{"-verbose"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := parseFlags(tc.args, fixedNow, io.Discard)

			assert.Error(t, err)
		})
	}
}

func Test_parseLimit_PassesNegativeValuesThrough(t *testing.T) {
	assert.Equal(t, lending.NoLimit, parseLimit(0))
	assert.ErrorIs(t, parseLimit(-3).Validate(), lending.ErrNonPositiveLimit)
}
