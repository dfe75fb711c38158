package srs

import (
	"fmt"
	"time"
)

// intervalForReadCount returns the number of days to wait after a note has
// been read readCount times. Negative counts are treated as zero and counts
// beyond the table clamp to its last entry.
func intervalForReadCount(readCount int, intervals []int) int {
	if readCount < 0 {
		readCount = 0
	}
	if readCount >= len(intervals) {
		readCount = len(intervals) - 1
	}
	return intervals[readCount]
}

// calculateNextReadDate adds the interval for readCount to now using calendar
// days, then truncates the result to the start of that day in now's location.
func calculateNextReadDate(readCount int, now time.Time, intervals []int) time.Time {
	days := intervalForReadCount(readCount, intervals)
	return StartOfDay(now.AddDate(0, 0, days))
}

// frequencyForInterval renders a cadence description for an interval in days.
//
// Thresholds:
//   - 1 day: "every day"
//   - up to 7 days: "every N days"
//   - up to 30 days: "every N weeks" with N = days/7
//   - under 365 days: "every N months" with N = days/30
//   - otherwise: "once a year"
func frequencyForInterval(days int) string {
	switch {
	case days <= 1:
		return "every day"
	case days <= 7:
		return fmt.Sprintf("every %d days", days)
	case days <= 30:
		return pluralize(days/7, "week")
	case days < 365:
		return pluralize(days/30, "month")
	default:
		return "once a year"
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", n, unit)
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day in t's
// location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DueCutoff is the latest next-read date that still counts as due as of asOf.
// Every due comparison in the application, in memory or in SQL, is
// nextReadDate <= DueCutoff(asOf).
func DueCutoff(asOf time.Time) time.Time {
	return StartOfDay(asOf)
}

// IsDue reports whether a note scheduled for nextReadDate is due as of asOf.
func IsDue(nextReadDate, asOf time.Time) bool {
	return !nextReadDate.After(DueCutoff(asOf))
}
