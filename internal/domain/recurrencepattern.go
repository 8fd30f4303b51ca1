package domain

import "fmt"

type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
)

// RecurrencePattern is the tagged recurrence record stored on a template.
// Frequency selects which of the optional fields are meaningful; Validate
// enforces the combination.
type RecurrencePattern struct {
	Frequency    Frequency `json:"frequency"`
	Interval     int       `json:"interval,omitempty"`
	WeekdaysOnly bool      `json:"weekdays_only,omitempty"`
	DaysOfWeek   []int     `json:"days_of_week,omitempty"` // 0 = Monday
	DayOfMonth   int       `json:"day_of_month,omitempty"` // 1..31
	WeekOfMonth  int       `json:"week_of_month,omitempty"`
	AdvanceDays  int       `json:"advance_days,omitempty"`
}

// EffectiveInterval returns the interval with the ≥1 floor applied.
func (p *RecurrencePattern) EffectiveInterval() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

func (p *RecurrencePattern) Validate() error {
	switch p.Frequency {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly:
	default:
		return fmt.Errorf("unknown recurrence frequency %q", p.Frequency)
	}
	if p.Interval < 0 {
		return fmt.Errorf("recurrence interval must be >= 1")
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("day_of_week %d out of range 0..6", d)
		}
	}
	if p.DayOfMonth < 0 || p.DayOfMonth > 31 {
		return fmt.Errorf("day_of_month %d out of range 1..31", p.DayOfMonth)
	}
	if p.WeekOfMonth < 0 || p.WeekOfMonth > 4 {
		return fmt.Errorf("week_of_month %d out of range 1..4", p.WeekOfMonth)
	}
	if p.AdvanceDays < 0 {
		return fmt.Errorf("advance_days must be >= 0")
	}
	if p.Frequency == FreqMonthly && p.DayOfMonth == 0 && p.WeekOfMonth == 0 {
		return fmt.Errorf("monthly recurrence needs day_of_month or week_of_month")
	}
	return nil
}
