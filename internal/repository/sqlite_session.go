package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
)

const sessionColumns = `id, user_id, subject_id, task_id, start_time, end_time,
		status, energy_level, generated_by, is_pinned, notes,
		created_at, updated_at`

// SQLiteSessionRepo implements SessionRepo over a DBTX.
type SQLiteSessionRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.StudySession) error {
	query := `INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		nullableString(s.SubjectID),
		nullableString(s.TaskID),
		s.StartTime.UTC().Format(time.RFC3339),
		s.EndTime.UTC().Format(time.RFC3339),
		string(s.Status),
		energyToValue(s.EnergyLevel),
		string(s.GeneratedBy),
		boolToInt(s.IsPinned),
		s.Notes,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting study session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSession(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning study session: %w", err)
	}
	return s, nil
}

func (r *SQLiteSessionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = ? ORDER BY start_time`
	return r.list(ctx, query, userID)
}

func (r *SQLiteSessionRepo) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time`
	return r.list(ctx, query, userID,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (r *SQLiteSessionRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE task_id = ? ORDER BY start_time`
	return r.list(ctx, query, taskID)
}

func (r *SQLiteSessionRepo) ListByStatus(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.StudySession, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = ? AND status IN (` + placeholders + `)
		ORDER BY start_time`
	args := make([]any, 0, len(statuses)+1)
	args = append(args, userID)
	for _, s := range statuses {
		args = append(args, string(s))
	}
	return r.list(ctx, query, args...)
}

func (r *SQLiteSessionRepo) DeleteReplaceable(ctx context.Context, userID string, from, to time.Time) error {
	query := `DELETE FROM study_sessions
		WHERE user_id = ?
		  AND status IN ('planned', 'skipped')
		  AND is_pinned = 0
		  AND start_time >= ? AND start_time < ?`
	_, err := r.db.ExecContext(ctx, query, userID,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("deleting replaceable sessions: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) CountActiveUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM study_sessions WHERE status = 'in_progress'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active users: %w", err)
	}
	return count, nil
}

func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.StudySession) error {
	query := `UPDATE study_sessions SET subject_id = ?, task_id = ?,
		start_time = ?, end_time = ?, status = ?, energy_level = ?,
		generated_by = ?, is_pinned = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableString(s.SubjectID),
		nullableString(s.TaskID),
		s.StartTime.UTC().Format(time.RFC3339),
		s.EndTime.UTC().Format(time.RFC3339),
		string(s.Status),
		energyToValue(s.EnergyLevel),
		string(s.GeneratedBy),
		boolToInt(s.IsPinned),
		s.Notes,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating study session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting study session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.StudySession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.StudySession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning study session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating study sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(scan func(dest ...any) error) (*domain.StudySession, error) {
	var s domain.StudySession
	var subjectID, taskID, energy sql.NullString
	var startTime, endTime, status, generatedBy string
	var isPinned int
	var createdAt, updatedAt string

	err := scan(
		&s.ID, &s.UserID, &subjectID, &taskID, &startTime, &endTime,
		&status, &energy, &generatedBy, &isPinned, &s.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.SubjectID = stringPtr(subjectID)
	s.TaskID = stringPtr(taskID)
	s.Status = domain.SessionStatus(status)
	s.GeneratedBy = domain.GeneratedBy(generatedBy)
	s.IsPinned = intToBool(isPinned)
	if energy.Valid && energy.String != "" {
		level := domain.EnergyLevel(energy.String)
		s.EnergyLevel = &level
	}

	if s.StartTime, err = time.Parse(time.RFC3339, startTime); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if s.EndTime, err = time.Parse(time.RFC3339, endTime); err != nil {
		return nil, fmt.Errorf("parsing end_time: %w", err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

func energyToValue(e *domain.EnergyLevel) any {
	if e == nil {
		return nil
	}
	return string(*e)
}
