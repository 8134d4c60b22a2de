package model

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) strfmt.Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (strfmt.Date, error) {
	var d strfmt.Date
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return strfmt.Date{}, NewValidationError("invalid date " + s + ": expected YYYY-MM-DD")
	}
	return d, nil
}

// SameDate reports whether a and b name the same calendar day.
func SameDate(a, b strfmt.Date) bool {
	return a.String() == b.String()
}

// DateBefore reports whether a is strictly earlier than b.
func DateBefore(a, b strfmt.Date) bool {
	return time.Time(a).Before(time.Time(b))
}

// DaySpan returns the number of days from start to end inclusive.
func DaySpan(start, end strfmt.Date) int {
	return int(time.Time(end).Sub(time.Time(start)).Hours()/24) + 1
}

// DayBounds converts an inclusive date range into the half-open instant
// range [from, to) in loc.
func DayBounds(start, end strfmt.Date, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	s, e := time.Time(start), time.Time(end)
	from = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	to = time.Date(e.Year(), e.Month(), e.Day()+1, 0, 0, 0, 0, loc)
	return from, to
}
