package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date format of the positions and trades tables.
const DateLayout = "2006-01-02"

// ResetTime resets the time component based on the granularity specified.
// Pass "minute" to reset seconds to zero.
// Pass "hour" to reset minutes and seconds to zero.
// Pass "day" to keep only the calendar date, in UTC.
func ResetTime(t time.Time, granularity string) time.Time {
	switch granularity {
	case "minute":
		return t.Truncate(time.Minute)
	case "hour":
		return t.Truncate(time.Hour)
	case "day":
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Today returns the current calendar date.
func Today() time.Time {
	return ResetTime(time.Now(), "day")
}

// ParseDate accepts YYYY-MM-DD, RFC3339 and the "YYYY-MM-DD HH:MM:SS" form
// written by spreadsheet exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ResetTime(t, "day"), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
