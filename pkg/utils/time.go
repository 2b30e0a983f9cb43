package utils

import "time"

// DateLayout is the calendar-date wire format for birth, death, marriage
// and divorce dates
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date, accepting RFC3339 timestamps as well
// since some clients send full timestamps for date fields
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ParseDateOrNow parses a calendar date, falling back to the current time
// when the value is missing or unparseable
func ParseDateOrNow(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Now()
	}
	return t
}

// ParseOptionalDate parses a nullable calendar date; empty input yields nil
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a time as a calendar date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatOptionalDate renders a nullable time as a nullable calendar date
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
