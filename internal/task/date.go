package task

import (
	"cmp"
	"fmt"
	"time"
)

// DateLayout is the persisted and printed form of a [Date].
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day or zone.
// The zero value is "no date" and is rejected by the store.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a normalized date. Out-of-range days roll over the same way
// [time.Date] does (2024-02-30 becomes 2024-03-01).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses "YYYY-MM-DD". Non-canonical input such as "2024-2-3" or
// "2024-02-30" is rejected rather than normalized.
func ParseDate(raw string) (Date, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q", ErrInvalidDate, raw)
	}

	return DateOf(parsed), nil
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Valid reports whether d is a real calendar day that [ParseDate] can read
// back from its [Date.String] form: not zero, year 1 through 9999, and
// already normalized.
func (d Date) Valid() bool {
	if d.IsZero() || d.Year < 1 || d.Year > 9999 {
		return false
	}

	return NewDate(d.Year, d.Month, d.Day) == d
}

// String formats d as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 when d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}

	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}

	return cmp.Compare(d.Day, other.Day)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}
