package timekit

import (
	"fmt"
	"strconv"
	"strings"
)

// LocalTime is a wall-clock time of day (HH:MM) with no date or timezone.
type LocalTime struct {
	Hour   int
	Minute int
}

// ParseLocalTime parses an HH:MM string.
func ParseLocalTime(s string) (LocalTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return LocalTime{}, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return LocalTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return LocalTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return LocalTime{Hour: hour, Minute: minute}, nil
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the offset from midnight in minutes.
func (t LocalTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than o.
func (t LocalTime) Before(o LocalTime) bool {
	return t.Minutes() < o.Minutes()
}
