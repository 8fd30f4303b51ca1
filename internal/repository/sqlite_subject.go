package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
)

const subjectColumns = `id, user_id, name, priority, difficulty, workload,
		exam_date, color, created_at, updated_at`

// SQLiteSubjectRepo implements SubjectRepo over a DBTX.
type SQLiteSubjectRepo struct {
	db db.DBTX
}

func NewSQLiteSubjectRepo(conn db.DBTX) *SQLiteSubjectRepo {
	return &SQLiteSubjectRepo{db: conn}
}

func (r *SQLiteSubjectRepo) Create(ctx context.Context, s *domain.Subject) error {
	query := `INSERT INTO subjects (` + subjectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Name,
		string(s.Priority),
		string(s.Difficulty),
		s.Workload,
		nullableDateToString(s.ExamDate),
		s.Color,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting subject: %w", err)
	}
	return nil
}

func (r *SQLiteSubjectRepo) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSubject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("subject: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning subject: %w", err)
	}
	return s, nil
}

func (r *SQLiteSubjectRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*domain.Subject
	for rows.Next() {
		s, err := scanSubject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}
	return subjects, nil
}

func (r *SQLiteSubjectRepo) Update(ctx context.Context, s *domain.Subject) error {
	query := `UPDATE subjects SET name = ?, priority = ?, difficulty = ?,
		workload = ?, exam_date = ?, color = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		s.Name,
		string(s.Priority),
		string(s.Difficulty),
		s.Workload,
		nullableDateToString(s.ExamDate),
		s.Color,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subject: %w", err)
	}
	return nil
}

func (r *SQLiteSubjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting subject: %w", err)
	}
	return nil
}

func scanSubject(scan func(dest ...any) error) (*domain.Subject, error) {
	var s domain.Subject
	var priority, difficulty string
	var examDate sql.NullString
	var createdAt, updatedAt string

	err := scan(
		&s.ID, &s.UserID, &s.Name, &priority, &difficulty, &s.Workload,
		&examDate, &s.Color, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Priority = domain.SubjectPriority(priority)
	s.Difficulty = domain.SubjectDifficulty(difficulty)
	s.ExamDate = parseNullableDate(examDate)

	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
