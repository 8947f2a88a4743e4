// Package duedate composes and classifies window due values. A due value is
// a lenient ISO-8601 date or date-time string plus an optional HH:MM time,
// an optional timezone label, and a precision: "date" values are compared as
// calendar days, "datetime" values as full instants. The timezone label is
// carried as metadata only and never used for conversion.
package duedate

import (
	"strings"
	"time"
)

// Precision selects how a due value is compared.
type Precision string

const (
	PrecisionDate     Precision = "date"
	PrecisionDateTime Precision = "datetime"
)

// NormalizePrecision coerces any raw value to a valid precision; anything
// other than "datetime" maps to "date".
func NormalizePrecision(raw string) Precision {
	if strings.TrimSpace(strings.ToLower(raw)) == string(PrecisionDateTime) {
		return PrecisionDateTime
	}
	return PrecisionDate
}

// State classifies a due value relative to a reference instant.
type State string

const (
	StateNone     State = "none"
	StateInvalid  State = "invalid"
	StateOverdue  State = "overdue"
	StateToday    State = "today"
	StateUpcoming State = "upcoming"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses a lenient ISO-8601 timestamp. Empty or unparsable input
// returns (zero time, false); the zero time is the minimum instant, so
// callers sorting descending push such items to the end.
func ParseISO(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortMax is the sentinel for absent/invalid due values in ascending due
// sorts: they land after every real date.
var sortMax = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// ForSort returns a comparable instant for due sorting, substituting the
// maximal sentinel when the due value is absent or unparsable.
func ForSort(dueAt, dueTime string, precision Precision) time.Time {
	if t, ok := Compose(dueAt, dueTime, precision); ok {
		return t
	}
	return sortMax
}

// Compose combines a due date string, an optional HH:MM time, and a
// precision into a single comparable instant. It reports false when dueAt is
// empty or unparsable. With date precision the time-of-day is truncated;
// with datetime precision a parsable dueTime overrides the time embedded in
// dueAt.
func Compose(dueAt, dueTime string, precision Precision) (time.Time, bool) {
	base, ok := ParseISO(dueAt)
	if !ok {
		return time.Time{}, false
	}
	if NormalizePrecision(string(precision)) == PrecisionDate {
		y, m, d := base.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, base.Location()), true
	}
	if hhmm := strings.TrimSpace(dueTime); hhmm != "" {
		if clock, err := time.Parse("15:04", hhmm); err == nil {
			y, m, d := base.Date()
			return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, base.Location()), true
		}
	}
	return base, true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// IsOverdue reports whether a due value lies strictly in the past: before
// now for datetime precision, before today's date for date precision.
// Absent or unparsable values are never overdue.
func IsOverdue(dueAt, dueTime string, precision Precision, now time.Time) bool {
	due, ok := Compose(dueAt, dueTime, precision)
	if !ok {
		return false
	}
	if NormalizePrecision(string(precision)) == PrecisionDateTime {
		return due.Before(now)
	}
	return dayBefore(due, now)
}

// IsToday reports whether the composed due instant falls on now's calendar
// date, regardless of whether its time-of-day has already passed.
func IsToday(dueAt, dueTime string, precision Precision, now time.Time) bool {
	due, ok := Compose(dueAt, dueTime, precision)
	if !ok {
		return false
	}
	return sameDay(due, now)
}

// IsUpcoming reports whether a due value exists and is not overdue.
func IsUpcoming(dueAt, dueTime string, precision Precision, now time.Time) bool {
	if _, ok := Compose(dueAt, dueTime, precision); !ok {
		return false
	}
	return !IsOverdue(dueAt, dueTime, precision, now)
}

// Classify maps a due value to a display state. Empty input is "none",
// unparsable input is "invalid"; otherwise overdue wins over today, which
// wins over upcoming.
func Classify(dueAt, dueTime string, precision Precision, now time.Time) State {
	if strings.TrimSpace(dueAt) == "" {
		return StateNone
	}
	if _, ok := Compose(dueAt, dueTime, precision); !ok {
		return StateInvalid
	}
	if IsOverdue(dueAt, dueTime, precision, now) {
		return StateOverdue
	}
	if IsToday(dueAt, dueTime, precision, now) {
		return StateToday
	}
	return StateUpcoming
}

// NormalizeISO normalizes due date input into the internal canonical form
// YYYY-MM-DDT00:00:00. It reports false for unparsable input; empty input
// normalizes to the empty string (a clear marker).
func NormalizeISO(value string) (string, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return "", true
	}
	t, ok := ParseISO(text)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02") + "T00:00:00", true
}

// Display converts an internal due value into UI text (YYYY-MM-DD),
// returning the raw input when it cannot be parsed.
func Display(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	t, ok := ParseISO(text)
	if !ok {
		return text
	}
	return t.Format("2006-01-02")
}
