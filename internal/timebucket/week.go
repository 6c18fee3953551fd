// Package timebucket maps timestamps onto the Monday–Sunday week buckets
// and calendar-month keys used throughout the dashboard hierarchy.
package timebucket

import (
	"fmt"
	"time"
)

const dayFormat = "2006-01-02"

// WeekStart returns the Monday on or before t, truncated to midnight in
// t's location.
func WeekStart(t time.Time) time.Time {
	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// WeekKey returns the "YYYY-MM-DD_YYYY-MM-DD" bucket key spanning the
// Monday on or before t through the following Sunday.
func WeekKey(t time.Time) string {
	start := WeekStart(t)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s_%s", start.Format(dayFormat), end.Format(dayFormat))
}

// MonthKey returns the "YYYY-MM" key for the calendar month containing t.
// Callers decide which timestamp (creation vs. latest stage change) they
// bucket by; the choice must be consistent for a whole aggregation pass.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseWeekKey parses a week bucket key back into its Monday start date,
// interpreted in loc.
func ParseWeekKey(key string, loc *time.Location) (time.Time, error) {
	if len(key) != 21 || key[10] != '_' {
		return time.Time{}, fmt.Errorf("malformed week key %q", key)
	}
	start, err := time.ParseInLocation(dayFormat, key[:10], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed week key %q: %w", key, err)
	}
	return start, nil
}

// ParseTimestamp parses the timestamp formats the CRM emits. Values that
// carry no zone are interpreted in loc rather than converted; this matches
// how the dashboard has always read them.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		dayFormat,
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
