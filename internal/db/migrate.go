package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent: tables use
// IF NOT EXISTS and column additions tolerate re-runs against databases that
// already carry them.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE re-runs against an up-to-date database.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 TEXT PRIMARY KEY,
		email              TEXT NOT NULL UNIQUE,
		full_name          TEXT NOT NULL DEFAULT '',
		timezone           TEXT NOT NULL DEFAULT 'UTC',
		weekly_study_hours INTEGER NOT NULL DEFAULT 10,
		preferred_windows  TEXT NOT NULL DEFAULT '[]',
		max_session_min    INTEGER NOT NULL DEFAULT 120,
		break_min          INTEGER NOT NULL DEFAULT 15,
		api_token          TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_api_token ON users(api_token) WHERE api_token != ''`,

	`CREATE TABLE IF NOT EXISTS subjects (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		priority   TEXT NOT NULL DEFAULT 'medium'
		           CHECK(priority IN ('low','medium','high')),
		difficulty TEXT NOT NULL DEFAULT 'medium'
		           CHECK(difficulty IN ('easy','medium','hard')),
		workload   INTEGER NOT NULL DEFAULT 3,
		exam_date  TEXT,
		color      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject_id            TEXT REFERENCES subjects(id) ON DELETE CASCADE,
		title                 TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		deadline              TEXT,
		estimated_min         INTEGER NOT NULL DEFAULT 60,
		actual_min            INTEGER NOT NULL DEFAULT 0,
		timer_min             INTEGER NOT NULL DEFAULT 0,
		priority              TEXT NOT NULL DEFAULT 'medium'
		                      CHECK(priority IN ('low','medium','high','critical')),
		status                TEXT NOT NULL DEFAULT 'todo'
		                      CHECK(status IN ('todo','in_progress','blocked','on_hold','completed')),
		subtasks              TEXT,
		is_completed          INTEGER NOT NULL DEFAULT 0,
		completed_at          TEXT,
		is_recurring_template INTEGER NOT NULL DEFAULT 0,
		recurring_template_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		recurrence_pattern    TEXT,
		recurrence_end_date   TEXT,
		next_occurrence_date  TEXT,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_subject ON tasks(subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_template ON tasks(recurring_template_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline)`,

	`CREATE TABLE IF NOT EXISTS study_sessions (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject_id   TEXT REFERENCES subjects(id) ON DELETE SET NULL,
		task_id      TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'planned'
		             CHECK(status IN ('planned','in_progress','completed','partial','skipped')),
		energy_level TEXT,
		generated_by TEXT NOT NULL DEFAULT 'manual'
		             CHECK(generated_by IN ('weekly','micro','manual')),
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON study_sessions(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_task ON study_sessions(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_status ON study_sessions(status)`,

	`CREATE TABLE IF NOT EXISTS schedule_constraints (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		type           TEXT NOT NULL DEFAULT 'busy'
		               CHECK(type IN ('class','busy','blocked','no_study')),
		description    TEXT NOT NULL DEFAULT '',
		is_recurring   INTEGER NOT NULL DEFAULT 0,
		days_of_week   TEXT,
		start_time     TEXT,
		end_time       TEXT,
		start_datetime TEXT,
		end_datetime   TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_constraints_user ON schedule_constraints(user_id)`,

	`CREATE TABLE IF NOT EXISTS daily_energy (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day        TEXT NOT NULL,
		level      TEXT NOT NULL CHECK(level IN ('low','medium','high')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, day)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_reflections (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day         TEXT NOT NULL,
		worked      TEXT,
		challenging TEXT,
		summary     TEXT,
		suggestion  TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		UNIQUE(user_id, day)
	)`,

	// Session pinning and mid-session state tracking
	`ALTER TABLE study_sessions ADD COLUMN is_pinned INTEGER NOT NULL DEFAULT 0`,

	// Sticky per-task opt-out from automatic completion
	`ALTER TABLE tasks ADD COLUMN prevent_auto_completion INTEGER NOT NULL DEFAULT 0`,

	// Calendar feed and read-only plan sharing
	`ALTER TABLE users ADD COLUMN calendar_token TEXT`,
	`ALTER TABLE users ADD COLUMN plan_share_token TEXT`,
	`ALTER TABLE users ADD COLUMN plan_share_expires_at TEXT`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_calendar_token ON users(calendar_token) WHERE calendar_token IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_plan_share_token ON users(plan_share_token) WHERE plan_share_token IS NOT NULL`,

	// Reflection origin; legacy rows stay NULL and are classified on read
	`ALTER TABLE daily_reflections ADD COLUMN origin TEXT`,
}
