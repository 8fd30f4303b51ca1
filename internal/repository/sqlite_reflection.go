package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

const reflectionColumns = `id, user_id, day, origin, worked, challenging,
		summary, suggestion, created_at, updated_at`

// SQLiteReflectionRepo implements ReflectionRepo over a DBTX.
type SQLiteReflectionRepo struct {
	db db.DBTX
}

func NewSQLiteReflectionRepo(conn db.DBTX) *SQLiteReflectionRepo {
	return &SQLiteReflectionRepo{db: conn}
}

func (r *SQLiteReflectionRepo) Upsert(ctx context.Context, ref *domain.DailyReflection) error {
	query := `INSERT INTO daily_reflections (` + reflectionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			origin = excluded.origin,
			worked = excluded.worked,
			challenging = excluded.challenging,
			summary = excluded.summary,
			suggestion = excluded.suggestion,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		ref.ID,
		ref.UserID,
		ref.Day.String(),
		string(ref.Origin),
		nullableString(ref.Worked),
		nullableString(ref.Challenging),
		nullableString(ref.Summary),
		nullableString(ref.Suggestion),
		ref.CreatedAt.Format(time.RFC3339),
		ref.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting reflection: %w", err)
	}
	return nil
}

func (r *SQLiteReflectionRepo) GetByDay(ctx context.Context, userID string, day timekit.LocalDate) (*domain.DailyReflection, error) {
	query := `SELECT ` + reflectionColumns + ` FROM daily_reflections
		WHERE user_id = ? AND day = ?`
	row := r.db.QueryRowContext(ctx, query, userID, day.String())

	ref, err := scanReflection(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reflection: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning reflection: %w", err)
	}
	return ref, nil
}

func (r *SQLiteReflectionRepo) ListRange(ctx context.Context, userID string, from, to timekit.LocalDate) ([]*domain.DailyReflection, error) {
	query := `SELECT ` + reflectionColumns + ` FROM daily_reflections
		WHERE user_id = ? AND day >= ? AND day < ?
		ORDER BY day`
	rows, err := r.db.QueryContext(ctx, query, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("listing reflections: %w", err)
	}
	defer rows.Close()

	var reflections []*domain.DailyReflection
	for rows.Next() {
		ref, err := scanReflection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning reflection row: %w", err)
		}
		reflections = append(reflections, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reflections: %w", err)
	}
	return reflections, nil
}

func (r *SQLiteReflectionRepo) Delete(ctx context.Context, userID string, day timekit.LocalDate) error {
	query := `DELETE FROM daily_reflections WHERE user_id = ? AND day = ?`
	if _, err := r.db.ExecContext(ctx, query, userID, day.String()); err != nil {
		return fmt.Errorf("deleting reflection: %w", err)
	}
	return nil
}

func scanReflection(scan func(dest ...any) error) (*domain.DailyReflection, error) {
	var ref domain.DailyReflection
	var day string
	var origin, worked, challenging, summary, suggestion sql.NullString
	var createdAt, updatedAt string

	err := scan(
		&ref.ID, &ref.UserID, &day, &origin, &worked, &challenging,
		&summary, &suggestion, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ref.Worked = stringPtr(worked)
	ref.Challenging = stringPtr(challenging)
	ref.Summary = stringPtr(summary)
	ref.Suggestion = stringPtr(suggestion)

	// Rows written before the origin column existed are classified by the
	// nullness of the user-authored fields.
	if origin.Valid && origin.String != "" {
		ref.Origin = domain.ReflectionOrigin(origin.String)
	} else {
		ref.Origin = domain.InferOrigin(ref.Worked, ref.Challenging)
	}

	if ref.Day, err = timekit.ParseLocalDate(day); err != nil {
		return nil, fmt.Errorf("parsing day: %w", err)
	}
	if ref.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if ref.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &ref, nil
}
