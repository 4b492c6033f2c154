package models

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-day format used everywhere a Date is stored
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day, stored as YYYY-MM-DD.
// Canonical values compare correctly as strings. The zero value means "not set".
type Date string

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s and returns it as a Date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d == ""
}

// Valid reports whether d is a canonical YYYY-MM-DD date
func (d Date) Valid() bool {
	t, err := time.Parse(DateLayout, string(d))
	return err == nil && DateOf(t) == d
}

// Time returns midnight UTC of the day
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

// AddDays returns the date n days later (earlier for negative n).
// An invalid date is returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// DaysSince returns the number of whole days from other to d.
// It is negative when other is after d and 0 when either date is invalid.
func (d Date) DaysSince(other Date) int {
	a, errA := d.Time()
	b, errB := other.Time()
	if errA != nil || errB != nil {
		return 0
	}
	return int(a.Sub(b).Hours() / 24)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d > other
}

func (d Date) String() string {
	return string(d)
}
