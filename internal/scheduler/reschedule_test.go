package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/domain"
)

func overdueTask(id string, deadline time.Time, priority domain.TaskPriority) *domain.Task {
	return &domain.Task{
		ID:       id,
		Title:    id,
		Deadline: &deadline,
		Priority: priority,
	}
}

func TestRescheduleOverdue_PullsRecentTasksForward(t *testing.T) {
	ref := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC)
	task := overdueTask("t1", deadline, domain.PriorityMedium)

	changed, report := RescheduleOverdue([]*domain.Task{task}, ref, time.UTC)

	require.Len(t, changed, 1)
	require.Len(t, report.Rescheduled, 1)
	entry := report.Rescheduled[0]
	assert.Equal(t, 3, entry.DaysOverdue)
	assert.Equal(t, deadline, entry.OriginalDeadline)
	assert.Equal(t, time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC), *task.Deadline)
	assert.Equal(t, domain.PriorityHigh, task.Priority, "priority escalates one step")
	assert.Contains(t, report.Summary, "rescheduled to today")
}

func TestRescheduleOverdue_LateEveningTargetsTomorrow(t *testing.T) {
	ref := time.Date(2025, 6, 10, 21, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC)
	task := overdueTask("t1", deadline, domain.PriorityHigh)

	_, report := RescheduleOverdue([]*domain.Task{task}, ref, time.UTC)

	require.Len(t, report.Rescheduled, 1)
	assert.Equal(t, time.Date(2025, 6, 11, 23, 59, 0, 0, time.UTC), *task.Deadline)
	assert.Equal(t, domain.PriorityCritical, task.Priority)
	assert.Contains(t, report.Summary, "rescheduled to tomorrow")
}

func TestRescheduleOverdue_KeepsMeaningfulWallClock(t *testing.T) {
	ref := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 8, 18, 30, 0, 0, time.UTC)
	task := overdueTask("t1", deadline, domain.PriorityLow)

	RescheduleOverdue([]*domain.Task{task}, ref, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC), *task.Deadline)
}

func TestRescheduleOverdue_VeryOverdueNeedsAttention(t *testing.T) {
	ref := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	task := overdueTask("ancient", deadline, domain.PriorityMedium)

	changed, report := RescheduleOverdue([]*domain.Task{task}, ref, time.UTC)

	assert.Empty(t, changed)
	require.Len(t, report.NeedsAttention, 1)
	assert.Equal(t, 29, report.NeedsAttention[0].DaysOverdue)
	assert.Equal(t, deadline, *task.Deadline, "task itself is untouched")
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Contains(t, report.Summary, "need attention")
}

func TestRescheduleOverdue_MiddleBandUntouched(t *testing.T) {
	ref := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC) // 10 days overdue
	task := overdueTask("limbo", deadline, domain.PriorityMedium)

	changed, report := RescheduleOverdue([]*domain.Task{task}, ref, time.UTC)

	assert.Empty(t, changed)
	assert.Empty(t, report.Rescheduled)
	assert.Empty(t, report.NeedsAttention)
	assert.Equal(t, deadline, *task.Deadline)
}

func TestRescheduleOverdue_IgnoresCompletedTemplatesAndFuture(t *testing.T) {
	ref := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	past := ref.Add(-48 * time.Hour)
	future := ref.Add(48 * time.Hour)

	done := overdueTask("done", past, domain.PriorityMedium)
	done.IsCompleted = true
	template := overdueTask("template", past, domain.PriorityMedium)
	template.IsRecurringTemplate = true
	upcoming := overdueTask("upcoming", future, domain.PriorityMedium)
	noDeadline := &domain.Task{ID: "floating", Title: "floating"}

	changed, report := RescheduleOverdue(
		[]*domain.Task{done, template, upcoming, noDeadline}, ref, time.UTC)

	assert.Empty(t, changed)
	assert.Empty(t, report.Rescheduled)
	assert.Empty(t, report.NeedsAttention)
	assert.Empty(t, report.Summary)
}

func TestRescheduleOverdue_LocalDatesDecideOverdueness(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)

	// 2025-06-10 01:00 in Singapore is still 2025-06-09 in UTC. A deadline
	// of yesterday local must count as one day overdue.
	ref := time.Date(2025, 6, 9, 17, 0, 0, 0, time.UTC) // 01:00 +08
	deadline := time.Date(2025, 6, 9, 15, 59, 0, 0, time.UTC) // Jun 9 23:59 +08
	task := overdueTask("t1", deadline, domain.PriorityMedium)

	_, report := RescheduleOverdue([]*domain.Task{task}, ref, loc)

	require.Len(t, report.Rescheduled, 1)
	assert.Equal(t, 1, report.Rescheduled[0].DaysOverdue)
	// New deadline is end of today local: Jun 10 23:59 +08 = Jun 10 15:59 UTC.
	assert.Equal(t, time.Date(2025, 6, 10, 15, 59, 0, 0, time.UTC), *task.Deadline)
}
