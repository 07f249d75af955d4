// internal/daily/daily.go
//
// Calendar-day helpers for the daily flag.
// Responsibilities:
//   - Date: typed local calendar date used as the per-day key.
//   - DayIndex: whole local days between the epoch and "now".
//   - UntilNextDay: countdown to the next local midnight.
//   - Clock: the single time source a process run uses.
package daily

import (
	"fmt"
	"time"
)

const msPerDay = 86_400_000

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Midnight returns the start of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Epoch is local midnight of 2025-01-01, day zero of the rotation.
func Epoch(loc *time.Location) time.Time {
	return time.Date(2025, time.January, 1, 0, 0, 0, 0, loc)
}

// DateKey returns YYYY-MM-DD for t in t's location.
func DateKey(t time.Time) string {
	return DateOf(t).String()
}

// DayIndex returns the number of whole calendar days from the epoch's date to
// the date of now, both read in the epoch's location. Only the date components
// take part, so a DST shift between the two midnights never moves the index.
// Dates before the epoch give negative indexes.
func DayIndex(now, epoch time.Time) int {
	today := DateOf(now.In(epoch.Location())).Midnight(time.UTC)
	start := DateOf(epoch).Midnight(time.UTC)
	return int(floorDiv(today.Sub(start).Milliseconds(), msPerDay))
}

// UntilNextDay returns the time left until the next local midnight after now.
func UntilNextDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Clock provides "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Loc (time.Local when nil).
type SystemClock struct {
	Loc *time.Location
}

// Now implements Clock.
func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always reports the same instant. Useful for tests and the CLI.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }
