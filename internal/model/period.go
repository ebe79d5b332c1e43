package model

import (
	"fmt"
	"time"
)

// Period selects the lookback window of an analytics request.
type Period string

// Supported period selectors.
const (
	Period1M  Period = "1m"
	Period3M  Period = "3m"
	Period6M  Period = "6m"
	Period1Y  Period = "1y"
	PeriodYTD Period = "ytd"
	PeriodAll Period = "all"
)

// ParsePeriod validates a period selector string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period1M, Period3M, Period6M, Period1Y, PeriodYTD, PeriodAll:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// Start resolves the period to the first date of the lookback window.
//
// Fixed-length periods count calendar days back from now. "ytd" starts at
// January 1st of the current year. "all" starts at the earliest acquisition
// date across the holdings; when no acquisition date is known it falls back
// to one year of history.
func (p Period) Start(now time.Time, earliestAcquisition time.Time) time.Time {
	now = Day(now)
	switch p {
	case Period1M:
		return now.AddDate(0, 0, -30)
	case Period3M:
		return now.AddDate(0, 0, -90)
	case Period6M:
		return now.AddDate(0, 0, -180)
	case Period1Y:
		return now.AddDate(0, 0, -365)
	case PeriodYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default: // PeriodAll
		if earliestAcquisition.IsZero() {
			return now.AddDate(0, 0, -365)
		}
		return Day(earliestAcquisition)
	}
}
