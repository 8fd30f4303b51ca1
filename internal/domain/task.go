package domain

import "time"

type Task struct {
	ID           string
	UserID       string
	SubjectID    *string
	Title        string
	Description  string
	Deadline     *time.Time // UTC instant
	EstimatedMin int
	// ActualMin is derived from completed/partial session durations;
	// TimerMin is tracked independently by the user.
	ActualMin   int
	TimerMin    int
	Priority    TaskPriority
	Status      TaskStatus
	Subtasks    []Subtask
	IsCompleted bool
	CompletedAt *time.Time
	// PreventAutoCompletion is a sticky user flag: while set, no session
	// change may flip IsCompleted in either direction.
	PreventAutoCompletion bool

	IsRecurringTemplate bool
	RecurringTemplateID *string
	RecurrencePattern   *RecurrencePattern
	RecurrenceEndDate   *time.Time
	NextOccurrenceDate  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalMinutesSpent is session time plus independently tracked timer time.
func (t *Task) TotalMinutesSpent() int {
	return t.ActualMin + t.TimerMin
}

// RemainingMinutes is the unscheduled remainder of the estimate, never negative.
func (t *Task) RemainingMinutes() int {
	remaining := t.EstimatedMin - t.TotalMinutesSpent()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Schedulable reports whether the planner may allocate time to this task.
// Templates are never scheduled; only their instances are.
func (t *Task) Schedulable() bool {
	return !t.IsCompleted && !t.IsRecurringTemplate && t.RemainingMinutes() > 0
}
