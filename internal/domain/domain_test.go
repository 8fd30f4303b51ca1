package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartstudy/companion/internal/timekit"
)

func TestTaskRemainingMinutes(t *testing.T) {
	task := &Task{EstimatedMin: 120, ActualMin: 45, TimerMin: 30}
	assert.Equal(t, 75, task.TotalMinutesSpent())
	assert.Equal(t, 45, task.RemainingMinutes())

	overspent := &Task{EstimatedMin: 60, ActualMin: 90}
	assert.Equal(t, 0, overspent.RemainingMinutes(), "never negative")
}

func TestTaskSchedulable(t *testing.T) {
	assert.True(t, (&Task{EstimatedMin: 60}).Schedulable())
	assert.False(t, (&Task{EstimatedMin: 60, IsCompleted: true}).Schedulable())
	assert.False(t, (&Task{EstimatedMin: 60, IsRecurringTemplate: true}).Schedulable(),
		"templates are expanded, not scheduled")
	assert.False(t, (&Task{EstimatedMin: 30, ActualMin: 30}).Schedulable())
}

func TestPriorityEscalate(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Escalate())
	assert.Equal(t, PriorityHigh, PriorityMedium.Escalate())
	assert.Equal(t, PriorityCritical, PriorityHigh.Escalate())
	assert.Equal(t, PriorityCritical, PriorityCritical.Escalate(), "capped")
}

func TestSessionOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)
	sess := &StudySession{StartTime: base, EndTime: base.Add(time.Hour)}

	assert.True(t, sess.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, sess.Overlaps(base.Add(-30*time.Minute), base.Add(30*time.Minute)))
	assert.False(t, sess.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)),
		"touching intervals do not overlap")
	assert.False(t, sess.Overlaps(base.Add(-time.Hour), base))
}

func TestSessionPreserved(t *testing.T) {
	for _, status := range []SessionStatus{SessionCompleted, SessionPartial, SessionInProgress} {
		assert.True(t, (&StudySession{Status: status}).Preserved(), string(status))
	}
	assert.False(t, (&StudySession{Status: SessionPlanned}).Preserved())
	assert.False(t, (&StudySession{Status: SessionSkipped}).Preserved())
	assert.True(t, (&StudySession{Status: SessionPlanned, IsPinned: true}).Preserved())
}

func TestRecurrencePatternValidate(t *testing.T) {
	valid := []RecurrencePattern{
		{Frequency: FreqDaily},
		{Frequency: FreqWeekly, DaysOfWeek: []int{0, 4}},
		{Frequency: FreqBiweekly, Interval: 2},
		{Frequency: FreqMonthly, DayOfMonth: 15},
		{Frequency: FreqMonthly, WeekOfMonth: 2, DaysOfWeek: []int{0}},
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), "%+v", p)
	}

	invalid := []RecurrencePattern{
		{Frequency: "yearly"},
		{Frequency: FreqWeekly, DaysOfWeek: []int{7}},
		{Frequency: FreqMonthly},
		{Frequency: FreqMonthly, DayOfMonth: 32},
		{Frequency: FreqDaily, AdvanceDays: -1},
	}
	for _, p := range invalid {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}

func TestRecurrencePatternEffectiveInterval(t *testing.T) {
	assert.Equal(t, 1, (&RecurrencePattern{}).EffectiveInterval())
	assert.Equal(t, 3, (&RecurrencePattern{Interval: 3}).EffectiveInterval())
}

func TestConstraintAppliesOn(t *testing.T) {
	monday := timekit.LocalDate{Year: 2025, Month: 6, Day: 2}

	recurring := &ScheduleConstraint{IsRecurring: true, DaysOfWeek: []int{0, 2}}
	assert.True(t, recurring.AppliesOn(monday, time.UTC))
	assert.False(t, recurring.AppliesOn(monday.AddDays(1), time.UTC))

	// A one-off from 23:00 UTC Sunday to 01:00 UTC Monday is entirely on
	// Monday in Tokyo (UTC+9).
	start := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	oneOff := &ScheduleConstraint{StartDatetime: &start, EndDatetime: &end}

	assert.True(t, oneOff.AppliesOn(monday, time.UTC))
	assert.True(t, oneOff.AppliesOn(monday.AddDays(-1), time.UTC))

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	assert.True(t, oneOff.AppliesOn(monday, tokyo))
	assert.False(t, oneOff.AppliesOn(monday.AddDays(-1), tokyo))
}

func TestConstraintBlockedMinutes(t *testing.T) {
	c := &ScheduleConstraint{
		StartTime: &timekit.LocalTime{Hour: 17},
		EndTime:   &timekit.LocalTime{Hour: 19, Minute: 30},
	}
	assert.Equal(t, 150, c.BlockedMinutes())

	overnight := &ScheduleConstraint{
		StartTime: &timekit.LocalTime{Hour: 23},
		EndTime:   &timekit.LocalTime{Hour: 1},
	}
	assert.Equal(t, 120, overnight.BlockedMinutes())

	assert.Equal(t, 0, (&ScheduleConstraint{}).BlockedMinutes())
}

func TestInferOrigin(t *testing.T) {
	worked := "focus blocks"
	assert.Equal(t, ReflectionUser, InferOrigin(&worked, nil))
	assert.Equal(t, ReflectionUser, InferOrigin(nil, &worked))
	assert.Equal(t, ReflectionAuto, InferOrigin(nil, nil))
}
