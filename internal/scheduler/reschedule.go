package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

const (
	// rescheduleMaxDays is the most a task may be overdue and still be
	// pulled forward automatically.
	rescheduleMaxDays = 7
	// attentionThresholdDays is the point past which a task is flagged for
	// the user instead of touched. Tasks between the two thresholds are
	// left alone entirely.
	attentionThresholdDays = 14
	// lateEveningHour is the local hour after which rescheduling targets
	// tomorrow instead of what little is left of today.
	lateEveningHour = 20
)

// RescheduleOverdue inspects the user's open tasks and pulls recently overdue
// ones forward to the end of today (or tomorrow when it is already late
// evening locally), escalating their priority one step. Tasks more than two
// weeks overdue are reported as needing attention and left untouched, as are
// tasks in between. The tasks are mutated in place; the returned slice lists
// the ones that changed and must be persisted.
func RescheduleOverdue(tasks []*domain.Task, reference time.Time, loc *time.Location) ([]*domain.Task, contract.RescheduleReport) {
	today := timekit.LocalDateOf(reference, loc)
	refLocal := reference.In(loc)

	var changed []*domain.Task
	report := contract.RescheduleReport{}

	for _, task := range tasks {
		if task.IsCompleted || task.IsRecurringTemplate || task.Deadline == nil {
			continue
		}

		deadlineDate := timekit.LocalDateOf(*task.Deadline, loc)
		daysOverdue := deadlineDate.DaysUntil(today)
		if daysOverdue <= 0 {
			continue
		}

		if daysOverdue > attentionThresholdDays {
			report.NeedsAttention = append(report.NeedsAttention, contract.NeedsAttentionTask{
				TaskID:           task.ID,
				Title:            task.Title,
				DaysOverdue:      daysOverdue,
				OriginalDeadline: *task.Deadline,
			})
			continue
		}
		if daysOverdue > rescheduleMaxDays {
			continue
		}

		original := *task.Deadline
		newDeadline := newDeadlineFor(original, today, refLocal, loc)
		task.Deadline = &newDeadline
		task.Priority = task.Priority.Escalate()
		changed = append(changed, task)

		report.Rescheduled = append(report.Rescheduled, contract.RescheduledTask{
			TaskID:           task.ID,
			Title:            task.Title,
			DaysOverdue:      daysOverdue,
			OriginalDeadline: original,
			NewDeadline:      newDeadline,
			NewPriority:      task.Priority,
		})
	}

	report.Summary = rescheduleSummary(report, today, loc)
	return changed, report
}

// newDeadlineFor places the deadline at 23:59 local today, or tomorrow when
// the local clock is already past the late-evening cutoff. A deadline that
// carried a meaningful wall-clock time keeps it.
func newDeadlineFor(original time.Time, today timekit.LocalDate, refLocal time.Time, loc *time.Location) time.Time {
	target := today
	if refLocal.Hour() >= lateEveningHour {
		target = today.AddDays(1)
	}

	hour, minute := 23, 59
	origLocal := original.In(loc)
	if origLocal.Hour() != 23 || origLocal.Minute() != 59 {
		hour, minute = origLocal.Hour(), origLocal.Minute()
	}
	return time.Date(target.Year, target.Month, target.Day, hour, minute, 0, 0, loc).UTC()
}

func rescheduleSummary(report contract.RescheduleReport, today timekit.LocalDate, loc *time.Location) string {
	var parts []string

	if n := len(report.Rescheduled); n > 0 {
		todayCount := 0
		for _, t := range report.Rescheduled {
			if timekit.LocalDateOf(t.NewDeadline, loc).Equal(today) {
				todayCount++
			}
		}
		tomorrowCount := n - todayCount
		word := "task"
		if n > 1 {
			word = "tasks"
		}
		switch {
		case todayCount > 0 && tomorrowCount > 0:
			parts = append(parts, fmt.Sprintf("%d overdue %s rescheduled (%d to today, %d to tomorrow)",
				n, word, todayCount, tomorrowCount))
		case todayCount > 0:
			parts = append(parts, fmt.Sprintf("%d overdue %s rescheduled to today", n, word))
		default:
			parts = append(parts, fmt.Sprintf("%d overdue %s rescheduled to tomorrow", n, word))
		}
	}

	if n := len(report.NeedsAttention); n > 0 {
		word := "task"
		if n > 1 {
			word = "tasks"
		}
		parts = append(parts, fmt.Sprintf("%d very overdue %s need attention (> %d days overdue)",
			n, word, attentionThresholdDays))
	}

	return strings.Join(parts, "; ")
}
