// Package datetime provides date and time utility functions.
package datetime

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by listing dates on the wire.
const DateLayout = "2006-01-02"

// ParseOptionalDate parses a DateLayout date. An empty or whitespace-only
// string yields nil without error.
func ParseOptionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatOptionalDate formats t with DateLayout, or returns nil when t is nil.
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}

// DaysBetween returns the number of whole calendar days from start to end,
// or 0 when end is not after start.
func DaysBetween(start, end time.Time) int {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
