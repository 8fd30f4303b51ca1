package timekit

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// LocalDate is a calendar date with no attached timezone. It is the type for
// exam dates, energy-report days and analytics day buckets, keeping them
// distinct from UTC instants at the type level.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseLocalDate parses a YYYY-MM-DD string.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d LocalDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d LocalDate) Equal(o LocalDate) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d LocalDate) Before(o LocalDate) bool {
	return d.toTime().Before(o.toTime())
}

func (d LocalDate) After(o LocalDate) bool {
	return d.toTime().After(o.toTime())
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d LocalDate) AddDays(n int) LocalDate {
	t := d.toTime().AddDate(0, 0, n)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysUntil returns o - d in whole days.
func (d LocalDate) DaysUntil(o LocalDate) int {
	return int(o.toTime().Sub(d.toTime()).Hours() / 24)
}

// Weekday returns the day of week with Monday = 0 .. Sunday = 6.
func (d LocalDate) Weekday() int {
	wd := int(d.toTime().Weekday())
	return (wd + 6) % 7
}

// MidnightIn returns the UTC instant of 00:00 on d in loc.
func (d LocalDate) MidnightIn(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc).UTC()
}

// FirstOfMonth returns the first day of d's month.
func (d LocalDate) FirstOfMonth() LocalDate {
	return LocalDate{Year: d.Year, Month: d.Month, Day: 1}
}

// DaysInMonth returns the number of days in d's month.
func (d LocalDate) DaysInMonth() int {
	t := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	return t.Day()
}

func (d LocalDate) toTime() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
