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

const constraintColumns = `id, user_id, name, type, description, is_recurring,
		days_of_week, start_time, end_time, start_datetime, end_datetime,
		created_at, updated_at`

// SQLiteConstraintRepo implements ConstraintRepo over a DBTX.
type SQLiteConstraintRepo struct {
	db db.DBTX
}

func NewSQLiteConstraintRepo(conn db.DBTX) *SQLiteConstraintRepo {
	return &SQLiteConstraintRepo{db: conn}
}

func (r *SQLiteConstraintRepo) Create(ctx context.Context, c *domain.ScheduleConstraint) error {
	days, err := jsonOrNull(daysOrNil(c.DaysOfWeek))
	if err != nil {
		return fmt.Errorf("encoding days of week: %w", err)
	}

	query := `INSERT INTO schedule_constraints (` + constraintColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		string(c.Type),
		c.Description,
		boolToInt(c.IsRecurring),
		days,
		nullableClockToString(c.StartTime),
		nullableClockToString(c.EndTime),
		nullableTimeToString(c.StartDatetime, time.RFC3339),
		nullableTimeToString(c.EndDatetime, time.RFC3339),
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting constraint: %w", err)
	}
	return nil
}

func (r *SQLiteConstraintRepo) GetByID(ctx context.Context, id string) (*domain.ScheduleConstraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM schedule_constraints WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	c, err := scanConstraint(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("constraint: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning constraint: %w", err)
	}
	return c, nil
}

func (r *SQLiteConstraintRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ScheduleConstraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM schedule_constraints
		WHERE user_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing constraints: %w", err)
	}
	defer rows.Close()

	var constraints []*domain.ScheduleConstraint
	for rows.Next() {
		c, err := scanConstraint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning constraint row: %w", err)
		}
		constraints = append(constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating constraints: %w", err)
	}
	return constraints, nil
}

func (r *SQLiteConstraintRepo) Update(ctx context.Context, c *domain.ScheduleConstraint) error {
	days, err := jsonOrNull(daysOrNil(c.DaysOfWeek))
	if err != nil {
		return fmt.Errorf("encoding days of week: %w", err)
	}

	query := `UPDATE schedule_constraints SET name = ?, type = ?, description = ?,
		is_recurring = ?, days_of_week = ?, start_time = ?, end_time = ?,
		start_datetime = ?, end_datetime = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		c.Name,
		string(c.Type),
		c.Description,
		boolToInt(c.IsRecurring),
		days,
		nullableClockToString(c.StartTime),
		nullableClockToString(c.EndTime),
		nullableTimeToString(c.StartDatetime, time.RFC3339),
		nullableTimeToString(c.EndDatetime, time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating constraint: %w", err)
	}
	return nil
}

func (r *SQLiteConstraintRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_constraints WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting constraint: %w", err)
	}
	return nil
}

func scanConstraint(scan func(dest ...any) error) (*domain.ScheduleConstraint, error) {
	var c domain.ScheduleConstraint
	var ctype string
	var isRecurring int
	var daysRaw, startClock, endClock, startInstant, endInstant sql.NullString
	var createdAt, updatedAt string

	err := scan(
		&c.ID, &c.UserID, &c.Name, &ctype, &c.Description, &isRecurring,
		&daysRaw, &startClock, &endClock, &startInstant, &endInstant,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = domain.ConstraintType(ctype)
	c.IsRecurring = intToBool(isRecurring)
	if daysRaw.Valid && daysRaw.String != "" {
		if err := json.Unmarshal([]byte(daysRaw.String), &c.DaysOfWeek); err != nil {
			return nil, fmt.Errorf("decoding days of week: %w", err)
		}
	}
	c.StartTime = parseNullableClock(startClock)
	c.EndTime = parseNullableClock(endClock)
	c.StartDatetime = parseNullableTime(startInstant, time.RFC3339)
	c.EndDatetime = parseNullableTime(endInstant, time.RFC3339)

	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &c, nil
}

func daysOrNil(days []int) any {
	if len(days) == 0 {
		return nil
	}
	return days
}
