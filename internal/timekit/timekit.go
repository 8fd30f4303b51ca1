// Package timekit owns every conversion between UTC instants and the user's
// local wall clock. All other packages hand instants across this boundary
// exactly once on entry and once on exit; nothing else does hour math.
package timekit

import (
	"fmt"
	"time"
)

// LoadLocation resolves an IANA timezone name, falling back to UTC for the
// empty string.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// LocalMidnight returns the UTC instant of 00:00 local on the date that
// contains ref in loc.
func LocalMidnight(ref time.Time, loc *time.Location) time.Time {
	local := ref.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.UTC()
}

// WindowToUTCRange maps a wall-clock window onto the local day that starts at
// dayStart (a UTC instant produced by LocalMidnight) and returns the UTC
// interval. A window whose end is not after its start wraps past midnight.
//
// The conversion goes through the tz database, so on a spring-forward day the
// interval shortens and on a fall-back day it lengthens; no manual hour math.
func WindowToUTCRange(dayStart time.Time, start, end LocalTime, loc *time.Location) (time.Time, time.Time) {
	local := dayStart.In(loc)
	y, m, d := local.Date()
	startLocal := time.Date(y, m, d, start.Hour, start.Minute, 0, 0, loc)
	endLocal := time.Date(y, m, d, end.Hour, end.Minute, 0, 0, loc)
	if !endLocal.After(startLocal) {
		endLocal = endLocal.AddDate(0, 0, 1)
	}
	return startLocal.UTC(), endLocal.UTC()
}

// RoundToNearest rounds an instant to the nearest multiple of the given
// number of minutes.
func RoundToNearest(t time.Time, minutes int) time.Time {
	if minutes <= 0 {
		return t
	}
	return t.Round(time.Duration(minutes) * time.Minute)
}

// LocalDateOf returns the calendar date containing t in loc.
func LocalDateOf(t time.Time, loc *time.Location) LocalDate {
	local := t.In(loc)
	return LocalDate{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}
