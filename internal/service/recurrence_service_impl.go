package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/recurrence"
	"github.com/smartstudy/companion/internal/repository"
)

// defaultRecurrenceWeeks is how far ahead templates are expanded when the
// caller does not say otherwise.
const defaultRecurrenceWeeks = 4

type recurrenceService struct {
	tasks repository.TaskRepo
	uow   db.UnitOfWork
	now   func() time.Time
}

func NewRecurrenceService(tasks repository.TaskRepo, uow db.UnitOfWork) RecurrenceService {
	return &recurrenceService{
		tasks: tasks,
		uow:   uow,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *recurrenceService) GenerateInstances(ctx context.Context, userID string, weeksAhead int, force bool) (int, error) {
	if weeksAhead < 0 {
		return 0, fmt.Errorf("%w: weeks_ahead must be >= 0", ErrValidation)
	}
	if weeksAhead == 0 {
		weeksAhead = defaultRecurrenceWeeks
	}

	var created int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		created, err = expandUserTemplates(ctx, repository.NewSQLiteTaskRepo(tx), userID, weeksAhead, force, s.now())
		return err
	})
	return created, err
}

// expandUserTemplates materializes upcoming instances for every recurring
// template the user owns. It is shared with plan generation, which runs it
// inside its own transaction.
func expandUserTemplates(ctx context.Context, tasks repository.TaskRepo, userID string, weeksAhead int, force bool, now time.Time) (int, error) {
	templates, err := tasks.ListTemplates(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, template := range templates {
		n, err := expandTemplate(ctx, tasks, template, weeksAhead, force, now)
		if err != nil {
			return total, fmt.Errorf("expanding template %s: %w", template.ID, err)
		}
		total += n
	}
	return total, nil
}

func expandTemplate(ctx context.Context, tasks repository.TaskRepo, template *domain.Task, weeksAhead int, force bool, now time.Time) (int, error) {
	if template.RecurrencePattern == nil {
		return 0, nil
	}

	instances, err := tasks.ListInstances(ctx, template.ID)
	if err != nil {
		return 0, err
	}

	// Expansion resumes from the latest existing instance, or from the
	// template's own deadline when none exist yet.
	start := template.CreatedAt
	if template.Deadline != nil {
		start = *template.Deadline
	}
	for _, inst := range instances {
		if inst.Deadline != nil && inst.Deadline.After(start) {
			start = *inst.Deadline
		}
	}

	existing := make(map[string]bool, len(instances))
	for _, inst := range instances {
		if inst.Deadline != nil {
			existing[inst.Deadline.UTC().Format("2006-01-02")] = true
		}
	}

	horizon := now.AddDate(0, 0, 7*weeksAhead)
	if template.RecurrenceEndDate != nil && template.RecurrenceEndDate.Before(horizon) {
		horizon = *template.RecurrenceEndDate
	}

	created := 0
	var final *time.Time
	// The start itself is the first candidate occurrence.
	for candidate := &start; candidate != nil && !candidate.After(horizon); {
		key := candidate.UTC().Format("2006-01-02")
		if force || !existing[key] {
			if err := tasks.Create(ctx, instanceFromTemplate(template, *candidate, now)); err != nil {
				return created, err
			}
			existing[key] = true
			created++
		}
		c := *candidate
		final = &c
		candidate = recurrence.NextOccurrence(template.RecurrencePattern, candidate, start, template.RecurrenceEndDate)
	}

	if final != nil {
		next := *final
		if adv := template.RecurrencePattern.AdvanceDays; adv > 0 {
			next = next.AddDate(0, 0, -adv)
		}
		template.NextOccurrenceDate = &next
		template.UpdatedAt = now
		if err := tasks.Update(ctx, template); err != nil {
			return created, err
		}
	}
	return created, nil
}

// instanceFromTemplate copies the schedulable fields onto a fresh instance.
// Subtasks come over as an unchecked checklist.
func instanceFromTemplate(template *domain.Task, deadline, now time.Time) *domain.Task {
	subtasks := make([]domain.Subtask, 0, len(template.Subtasks))
	for _, st := range template.Subtasks {
		subtasks = append(subtasks, domain.Subtask{
			ID:           uuid.New().String(),
			Title:        st.Title,
			EstimatedMin: st.EstimatedMin,
			Notes:        st.Notes,
		})
	}
	templateID := template.ID
	d := deadline
	return &domain.Task{
		ID:                  uuid.New().String(),
		UserID:              template.UserID,
		SubjectID:           template.SubjectID,
		Title:               template.Title,
		Description:         template.Description,
		Deadline:            &d,
		EstimatedMin:        template.EstimatedMin,
		Priority:            template.Priority,
		Status:              template.Status,
		Subtasks:            subtasks,
		RecurringTemplateID: &templateID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (s *recurrenceService) RollForward(ctx context.Context, completedTaskID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return rollForward(ctx, repository.NewSQLiteTaskRepo(tx), completedTaskID, s.now())
	})
}

// rollForward creates the instance that follows a completed one. It is
// idempotent: if the next occurrence already exists nothing is created.
func rollForward(ctx context.Context, tasks repository.TaskRepo, completedTaskID string, now time.Time) error {
	instance, err := tasks.GetByID(ctx, completedTaskID)
	if err != nil {
		return err
	}
	if instance.RecurringTemplateID == nil || instance.Deadline == nil {
		return nil
	}
	template, err := tasks.GetByID(ctx, *instance.RecurringTemplateID)
	if err != nil {
		return err
	}
	if template.RecurrencePattern == nil {
		return nil
	}

	start := template.CreatedAt
	if template.Deadline != nil {
		start = *template.Deadline
	}
	next := recurrence.NextOccurrence(template.RecurrencePattern, instance.Deadline, start, template.RecurrenceEndDate)
	if next == nil {
		return nil
	}

	siblings, err := tasks.ListInstances(ctx, template.ID)
	if err != nil {
		return err
	}
	nextKey := next.UTC().Format("2006-01-02")
	for _, sib := range siblings {
		if sib.Deadline != nil && sib.Deadline.UTC().Format("2006-01-02") == nextKey {
			return nil
		}
	}

	if err := tasks.Create(ctx, instanceFromTemplate(template, *next, now)); err != nil {
		return err
	}

	// Advance the template's bookkeeping to the occurrence after the one
	// just created.
	if after := recurrence.NextOccurrence(template.RecurrencePattern, next, start, template.RecurrenceEndDate); after != nil {
		occurrence := *after
		if adv := template.RecurrencePattern.AdvanceDays; adv > 0 {
			occurrence = occurrence.AddDate(0, 0, -adv)
		}
		template.NextOccurrenceDate = &occurrence
		template.UpdatedAt = now
		return tasks.Update(ctx, template)
	}
	return nil
}

func (s *recurrenceService) RemoveRecurrence(ctx context.Context, templateID string) (int, error) {
	now := s.now()
	var deleted int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)

		template, err := txTasks.GetByID(ctx, templateID)
		if err != nil {
			return err
		}
		if !template.IsRecurringTemplate {
			return fmt.Errorf("%w: task %s is not a recurring template", ErrValidation, templateID)
		}

		instances, err := txTasks.ListInstances(ctx, templateID)
		if err != nil {
			return err
		}
		for _, inst := range instances {
			if !inst.IsCompleted && (inst.Deadline == nil || inst.Deadline.After(now)) {
				if err := txTasks.Delete(ctx, inst.ID); err != nil {
					return err
				}
				deleted++
				continue
			}
			inst.RecurringTemplateID = nil
			inst.UpdatedAt = now
			if err := txTasks.Update(ctx, inst); err != nil {
				return err
			}
		}

		template.IsRecurringTemplate = false
		template.RecurrencePattern = nil
		template.RecurrenceEndDate = nil
		template.NextOccurrenceDate = nil
		template.UpdatedAt = now
		return txTasks.Update(ctx, template)
	})
	return deleted, err
}

func (s *recurrenceService) UpdatePattern(ctx context.Context, templateID string, pattern *domain.RecurrencePattern, endDate *time.Time) error {
	if pattern == nil {
		return fmt.Errorf("%w: recurrence pattern required", ErrValidation)
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	now := s.now()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)

		template, err := txTasks.GetByID(ctx, templateID)
		if err != nil {
			return err
		}
		if !template.IsRecurringTemplate {
			return fmt.Errorf("%w: task %s is not a recurring template", ErrValidation, templateID)
		}

		template.RecurrencePattern = pattern
		template.RecurrenceEndDate = endDate
		template.UpdatedAt = now
		if err := txTasks.Update(ctx, template); err != nil {
			return err
		}

		instances, err := txTasks.ListInstances(ctx, templateID)
		if err != nil {
			return err
		}

		// Anything past the (possibly new) end date goes, completed or not.
		if endDate != nil {
			kept := instances[:0]
			for _, inst := range instances {
				if inst.Deadline != nil && inst.Deadline.After(*endDate) {
					if err := txTasks.Delete(ctx, inst.ID); err != nil {
						return err
					}
					continue
				}
				kept = append(kept, inst)
			}
			instances = kept
		}

		// Untouched instances are reflowed onto the new occurrence
		// sequence; anything the user has started keeps its deadline.
		var reflow []*domain.Task
		for _, inst := range instances {
			if inst.IsCompleted || inst.Status == domain.TaskInProgress || inst.TotalMinutesSpent() > 0 {
				continue
			}
			reflow = append(reflow, inst)
		}
		sort.Slice(reflow, func(i, j int) bool {
			di, dj := reflow[i].Deadline, reflow[j].Deadline
			if di == nil || dj == nil {
				return dj == nil && di != nil
			}
			return di.Before(*dj)
		})

		start := template.CreatedAt
		if template.Deadline != nil {
			start = *template.Deadline
		}
		candidate := &start
		for _, inst := range reflow {
			if candidate == nil {
				// The new pattern ran out of occurrences for this one.
				if err := txTasks.Delete(ctx, inst.ID); err != nil {
					return err
				}
				continue
			}
			d := *candidate
			inst.Deadline = &d
			inst.Title = template.Title
			inst.Description = template.Description
			inst.Priority = template.Priority
			inst.EstimatedMin = template.EstimatedMin
			inst.SubjectID = template.SubjectID
			inst.UpdatedAt = now
			if err := txTasks.Update(ctx, inst); err != nil {
				return err
			}
			candidate = recurrence.NextOccurrence(pattern, candidate, start, endDate)
		}
		return nil
	})
}
