package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
)

const taskColumns = `id, user_id, subject_id, title, description, deadline,
		estimated_min, actual_min, timer_min, priority, status, subtasks,
		is_completed, completed_at, prevent_auto_completion,
		is_recurring_template, recurring_template_id, recurrence_pattern,
		recurrence_end_date, next_occurrence_date, created_at, updated_at`

// SQLiteTaskRepo implements TaskRepo over a DBTX.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	subtasks, err := jsonOrNull(subtasksOrNil(t.Subtasks))
	if err != nil {
		return fmt.Errorf("encoding subtasks: %w", err)
	}
	pattern, err := jsonOrNull(patternOrNil(t.RecurrencePattern))
	if err != nil {
		return fmt.Errorf("encoding recurrence pattern: %w", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		nullableString(t.SubjectID),
		t.Title,
		t.Description,
		nullableTimeToString(t.Deadline, time.RFC3339),
		t.EstimatedMin,
		t.ActualMin,
		t.TimerMin,
		string(t.Priority),
		string(t.Status),
		subtasks,
		boolToInt(t.IsCompleted),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		boolToInt(t.PreventAutoCompletion),
		boolToInt(t.IsRecurringTemplate),
		nullableString(t.RecurringTemplateID),
		pattern,
		nullableTimeToString(t.RecurrenceEndDate, time.RFC3339),
		nullableTimeToString(t.NextOccurrenceDate, time.RFC3339),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	t, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at`
	return r.list(ctx, query, userID)
}

func (r *SQLiteTaskRepo) ListBySubject(ctx context.Context, subjectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE subject_id = ? ORDER BY created_at`
	return r.list(ctx, query, subjectID)
}

func (r *SQLiteTaskRepo) ListTemplates(ctx context.Context, userID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = ? AND is_recurring_template = 1 ORDER BY created_at`
	return r.list(ctx, query, userID)
}

func (r *SQLiteTaskRepo) ListInstances(ctx context.Context, templateID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE recurring_template_id = ? ORDER BY deadline`
	return r.list(ctx, query, templateID)
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	subtasks, err := jsonOrNull(subtasksOrNil(t.Subtasks))
	if err != nil {
		return fmt.Errorf("encoding subtasks: %w", err)
	}
	pattern, err := jsonOrNull(patternOrNil(t.RecurrencePattern))
	if err != nil {
		return fmt.Errorf("encoding recurrence pattern: %w", err)
	}

	query := `UPDATE tasks SET subject_id = ?, title = ?, description = ?,
		deadline = ?, estimated_min = ?, actual_min = ?, timer_min = ?,
		priority = ?, status = ?, subtasks = ?, is_completed = ?,
		completed_at = ?, prevent_auto_completion = ?,
		is_recurring_template = ?, recurring_template_id = ?,
		recurrence_pattern = ?, recurrence_end_date = ?,
		next_occurrence_date = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		nullableString(t.SubjectID),
		t.Title,
		t.Description,
		nullableTimeToString(t.Deadline, time.RFC3339),
		t.EstimatedMin,
		t.ActualMin,
		t.TimerMin,
		string(t.Priority),
		string(t.Status),
		subtasks,
		boolToInt(t.IsCompleted),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		boolToInt(t.PreventAutoCompletion),
		boolToInt(t.IsRecurringTemplate),
		nullableString(t.RecurringTemplateID),
		pattern,
		nullableTimeToString(t.RecurrenceEndDate, time.RFC3339),
		nullableTimeToString(t.NextOccurrenceDate, time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var t domain.Task
	var subjectID, templateID sql.NullString
	var deadline, completedAt, recurrenceEnd, nextOccurrence sql.NullString
	var subtasksRaw, patternRaw sql.NullString
	var priority, status string
	var isCompleted, preventAuto, isTemplate int
	var createdAt, updatedAt string

	err := scan(
		&t.ID, &t.UserID, &subjectID, &t.Title, &t.Description, &deadline,
		&t.EstimatedMin, &t.ActualMin, &t.TimerMin, &priority, &status,
		&subtasksRaw, &isCompleted, &completedAt, &preventAuto,
		&isTemplate, &templateID, &patternRaw,
		&recurrenceEnd, &nextOccurrence, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.SubjectID = stringPtr(subjectID)
	t.Deadline = parseNullableTime(deadline, time.RFC3339)
	t.Priority = domain.TaskPriority(priority)
	t.Status = domain.TaskStatus(status)
	t.IsCompleted = intToBool(isCompleted)
	t.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	t.PreventAutoCompletion = intToBool(preventAuto)
	t.IsRecurringTemplate = intToBool(isTemplate)
	t.RecurringTemplateID = stringPtr(templateID)
	t.RecurrenceEndDate = parseNullableTime(recurrenceEnd, time.RFC3339)
	t.NextOccurrenceDate = parseNullableTime(nextOccurrence, time.RFC3339)

	if subtasksRaw.Valid && subtasksRaw.String != "" {
		if err := json.Unmarshal([]byte(subtasksRaw.String), &t.Subtasks); err != nil {
			return nil, fmt.Errorf("decoding subtasks: %w", err)
		}
	}
	if patternRaw.Valid && patternRaw.String != "" {
		var p domain.RecurrencePattern
		if err := json.Unmarshal([]byte(patternRaw.String), &p); err != nil {
			return nil, fmt.Errorf("decoding recurrence pattern: %w", err)
		}
		t.RecurrencePattern = &p
	}

	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

func subtasksOrNil(s []domain.Subtask) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

func patternOrNil(p *domain.RecurrencePattern) any {
	if p == nil {
		return nil
	}
	return p
}
