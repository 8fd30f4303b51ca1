// Package recurrence computes occurrence dates for recurring task templates.
// Everything here is purely functional: no I/O, no clock reads. Returning a
// nil instant means "no further occurrence", which callers treat as normal
// termination rather than an error.
package recurrence

import (
	"sort"
	"time"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

// NextOccurrence returns the occurrence strictly after the later of
// lastOccurrence and startDate, or nil when the pattern has run past
// endDate. The returned instant carries startDate's time of day so that a
// template due at 18:00 keeps producing 18:00 deadlines.
func NextOccurrence(pattern *domain.RecurrencePattern, lastOccurrence *time.Time, startDate time.Time, endDate *time.Time) *time.Time {
	if pattern == nil {
		return nil
	}

	base := utcDateOf(startDate)
	if lastOccurrence != nil {
		base = utcDateOf(*lastOccurrence)
	}
	if endDate != nil && !base.Before(utcDateOf(*endDate)) {
		return nil
	}

	var next timekit.LocalDate
	switch pattern.Frequency {
	case domain.FreqDaily:
		next = nextDaily(base, pattern)
	case domain.FreqWeekly:
		next = nextWeekly(base, utcDateOf(startDate), pattern)
	case domain.FreqBiweekly:
		next = nextBiweekly(base, pattern)
	case domain.FreqMonthly:
		next = nextMonthly(base, pattern)
	default:
		return nil
	}

	at := combine(next, startDate)
	if endDate != nil && at.After(endDate.UTC()) {
		return nil
	}
	return &at
}

func nextDaily(base timekit.LocalDate, pattern *domain.RecurrencePattern) timekit.LocalDate {
	next := base.AddDays(pattern.EffectiveInterval())
	if pattern.WeekdaysOnly {
		for next.Weekday() >= 5 {
			next = next.AddDays(1)
		}
	}
	return next
}

func nextWeekly(base, start timekit.LocalDate, pattern *domain.RecurrencePattern) timekit.LocalDate {
	interval := pattern.EffectiveInterval()
	days := weekdaySet(pattern.DaysOfWeek, base)
	current := base.Weekday()

	for _, day := range days {
		if day > current {
			next := base.AddDays(day - current)
			if interval > 1 {
				weeksSinceStart := start.DaysUntil(base) / 7
				if weeksSinceStart%interval != 0 {
					next = next.AddDays((interval - weeksSinceStart%interval) * 7)
				}
			}
			return next
		}
	}

	// Wrap to the first configured weekday of a following week.
	first := days[0]
	return base.AddDays(7 - current + first + (interval-1)*7)
}

func nextBiweekly(base timekit.LocalDate, pattern *domain.RecurrencePattern) timekit.LocalDate {
	days := weekdaySet(pattern.DaysOfWeek, base)
	current := base.Weekday()
	for _, day := range days {
		if day > current {
			return base.AddDays(day - current)
		}
	}
	first := days[0]
	return base.AddDays(14 - current + first)
}

func nextMonthly(base timekit.LocalDate, pattern *domain.RecurrencePattern) timekit.LocalDate {
	firstOfNext := base.FirstOfMonth().AddDays(base.DaysInMonth())

	if pattern.DayOfMonth > 0 {
		day := pattern.DayOfMonth
		if max := firstOfNext.DaysInMonth(); day > max {
			day = max
		}
		return timekit.LocalDate{Year: firstOfNext.Year, Month: firstOfNext.Month, Day: day}
	}

	target := 0
	if len(pattern.DaysOfWeek) > 0 {
		target = pattern.DaysOfWeek[0]
	}
	offset := (target-firstOfNext.Weekday()+7)%7 + (pattern.WeekOfMonth-1)*7
	return firstOfNext.AddDays(offset)
}

// weekdaySet returns the configured weekdays sorted ascending, defaulting to
// the base date's own weekday when none are configured.
func weekdaySet(days []int, base timekit.LocalDate) []int {
	if len(days) == 0 {
		return []int{base.Weekday()}
	}
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)
	return sorted
}

func utcDateOf(t time.Time) timekit.LocalDate {
	return timekit.LocalDateOf(t, time.UTC)
}

func combine(day timekit.LocalDate, timeOfDay time.Time) time.Time {
	clock := timeOfDay.UTC()
	return time.Date(day.Year, day.Month, day.Day,
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
}
