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

const userColumns = `id, email, full_name, timezone, weekly_study_hours,
		preferred_windows, max_session_min, break_min, api_token,
		calendar_token, plan_share_token, plan_share_expires_at,
		created_at, updated_at`

// SQLiteUserRepo implements UserRepo over a DBTX.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	windows, err := json.Marshal(u.PreferredWindows)
	if err != nil {
		return fmt.Errorf("encoding preferred windows: %w", err)
	}
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.FullName,
		u.Timezone,
		u.WeeklyStudyHours,
		string(windows),
		u.MaxSessionMin,
		u.BreakMin,
		u.APIToken,
		nullableString(u.CalendarToken),
		nullableString(u.PlanShareToken),
		nullableTimeToString(u.PlanShareExpiresAt, time.RFC3339),
		u.CreatedAt.Format(time.RFC3339),
		u.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *SQLiteUserRepo) GetByAPIToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "api_token", token)
}

func (r *SQLiteUserRepo) GetByCalendarToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "calendar_token", token)
}

func (r *SQLiteUserRepo) GetByPlanShareToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "plan_share_token", token)
}

func (r *SQLiteUserRepo) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	row := r.db.QueryRowContext(ctx, query, value)
	return r.scanUser(row)
}

func (r *SQLiteUserRepo) Update(ctx context.Context, u *domain.User) error {
	windows, err := json.Marshal(u.PreferredWindows)
	if err != nil {
		return fmt.Errorf("encoding preferred windows: %w", err)
	}
	query := `UPDATE users SET email = ?, full_name = ?, timezone = ?,
		weekly_study_hours = ?, preferred_windows = ?, max_session_min = ?,
		break_min = ?, api_token = ?, calendar_token = ?, plan_share_token = ?,
		plan_share_expires_at = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		u.Email,
		u.FullName,
		u.Timezone,
		u.WeeklyStudyHours,
		string(windows),
		u.MaxSessionMin,
		u.BreakMin,
		u.APIToken,
		nullableString(u.CalendarToken),
		nullableString(u.PlanShareToken),
		nullableTimeToString(u.PlanShareExpiresAt, time.RFC3339),
		u.UpdatedAt.Format(time.RFC3339),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var windowsRaw string
	var calendarToken, shareToken, shareExpires sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Timezone, &u.WeeklyStudyHours,
		&windowsRaw, &u.MaxSessionMin, &u.BreakMin, &u.APIToken,
		&calendarToken, &shareToken, &shareExpires,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	// Stored window lists may predate the tagged format; ParseWindows
	// tolerates both and falls back to the default set.
	u.PreferredWindows = domain.ParseWindows(json.RawMessage(windowsRaw))
	u.CalendarToken = stringPtr(calendarToken)
	u.PlanShareToken = stringPtr(shareToken)
	u.PlanShareExpiresAt = parseNullableTime(shareExpires, time.RFC3339)

	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &u, nil
}
