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

const energyColumns = `id, user_id, day, level, created_at, updated_at`

// SQLiteEnergyRepo implements EnergyRepo over a DBTX.
type SQLiteEnergyRepo struct {
	db db.DBTX
}

func NewSQLiteEnergyRepo(conn db.DBTX) *SQLiteEnergyRepo {
	return &SQLiteEnergyRepo{db: conn}
}

func (r *SQLiteEnergyRepo) Upsert(ctx context.Context, e *domain.DailyEnergy) error {
	query := `INSERT INTO daily_energy (` + energyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			level = excluded.level,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Day.String(),
		string(e.Level),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting energy report: %w", err)
	}
	return nil
}

func (r *SQLiteEnergyRepo) GetByDay(ctx context.Context, userID string, day timekit.LocalDate) (*domain.DailyEnergy, error) {
	query := `SELECT ` + energyColumns + ` FROM daily_energy
		WHERE user_id = ? AND day = ?`
	row := r.db.QueryRowContext(ctx, query, userID, day.String())

	e, err := scanEnergy(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("energy report: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning energy report: %w", err)
	}
	return e, nil
}

func (r *SQLiteEnergyRepo) ListByUser(ctx context.Context, userID string) ([]*domain.DailyEnergy, error) {
	query := `SELECT ` + energyColumns + ` FROM daily_energy
		WHERE user_id = ? ORDER BY day`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing energy reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.DailyEnergy
	for rows.Next() {
		e, err := scanEnergy(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning energy report row: %w", err)
		}
		reports = append(reports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating energy reports: %w", err)
	}
	return reports, nil
}

func (r *SQLiteEnergyRepo) Delete(ctx context.Context, userID string, day timekit.LocalDate) error {
	query := `DELETE FROM daily_energy WHERE user_id = ? AND day = ?`
	if _, err := r.db.ExecContext(ctx, query, userID, day.String()); err != nil {
		return fmt.Errorf("deleting energy report: %w", err)
	}
	return nil
}

func scanEnergy(scan func(dest ...any) error) (*domain.DailyEnergy, error) {
	var e domain.DailyEnergy
	var day, level string
	var createdAt, updatedAt string

	if err := scan(&e.ID, &e.UserID, &day, &level, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.Day, err = timekit.ParseLocalDate(day); err != nil {
		return nil, fmt.Errorf("parsing day: %w", err)
	}
	e.Level = domain.EnergyLevel(level)

	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &e, nil
}
