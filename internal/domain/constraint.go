package domain

import (
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

// ScheduleConstraint is a recurring or one-off interval during which the
// user is unavailable. Recurring constraints carry local wall-clock times
// and a weekday set (0 = Monday); one-off constraints carry UTC instants.
type ScheduleConstraint struct {
	ID          string
	UserID      string
	Name        string
	Type        ConstraintType
	Description string

	IsRecurring bool
	DaysOfWeek  []int
	StartTime   *timekit.LocalTime
	EndTime     *timekit.LocalTime

	StartDatetime *time.Time
	EndDatetime   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesOn reports whether the constraint is relevant to the given local
// date. One-off constraint bounds are converted into the user's timezone
// before their dates are compared, so a constraint near local midnight lands
// on the correct day.
func (c *ScheduleConstraint) AppliesOn(day timekit.LocalDate, loc *time.Location) bool {
	if c.IsRecurring {
		weekday := day.Weekday()
		for _, d := range c.DaysOfWeek {
			if d == weekday {
				return true
			}
		}
		return false
	}
	if c.StartDatetime == nil || c.EndDatetime == nil {
		return false
	}
	startLocal := timekit.LocalDateOf(*c.StartDatetime, loc)
	endLocal := timekit.LocalDateOf(*c.EndDatetime, loc)
	return !startLocal.After(day) && !endLocal.Before(day)
}

// BlockedMinutes returns the recurring constraint's daily span in minutes,
// accounting for overnight wrap. One-off constraints return zero.
func (c *ScheduleConstraint) BlockedMinutes() int {
	if c.StartTime == nil || c.EndTime == nil {
		return 0
	}
	span := c.EndTime.Minutes() - c.StartTime.Minutes()
	if span < 0 {
		span += 24 * 60
	}
	return span
}
