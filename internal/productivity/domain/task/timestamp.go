package task

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned for user-supplied dates that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD or RFC 3339")

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp converts a wire timestamp to an optional instant.
// Empty, unparsable, and zero-year values like "0001-01-01T00:00:00Z" all
// yield nil.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() <= 1 {
			return nil
		}
		t = t.UTC()
		return &t
	}
	return nil
}

// FormatTimestamp is the inverse of ParseTimestamp. Absent instants encode as
// the zero value the remote API expects.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return time.Time{}.Format(time.RFC3339)
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseDate parses a user-supplied date. Unlike ParseTimestamp it rejects
// malformed input instead of treating it as absent.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDate
}
