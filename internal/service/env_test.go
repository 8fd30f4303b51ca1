package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/testutil"
)

// testEnv bundles a fresh database with live repositories and a default user.
type testEnv struct {
	db          *sql.DB
	uow         db.UnitOfWork
	users       *repository.SQLiteUserRepo
	subjects    *repository.SQLiteSubjectRepo
	tasks       *repository.SQLiteTaskRepo
	sessions    *repository.SQLiteSessionRepo
	constraints *repository.SQLiteConstraintRepo
	energy      *repository.SQLiteEnergyRepo
	user        *domain.User
}

func newTestEnv(t *testing.T, userOpts ...testutil.UserOption) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)

	env := &testEnv{
		db:          database,
		uow:         testutil.NewTestUoW(database),
		users:       repository.NewSQLiteUserRepo(database),
		subjects:    repository.NewSQLiteSubjectRepo(database),
		tasks:       repository.NewSQLiteTaskRepo(database),
		sessions:    repository.NewSQLiteSessionRepo(database),
		constraints: repository.NewSQLiteConstraintRepo(database),
		energy:      repository.NewSQLiteEnergyRepo(database),
	}
	env.user = testutil.NewTestUser(userOpts...)
	require.NoError(t, env.users.Create(context.Background(), env.user))
	return env
}

func (e *testEnv) sessionService(now time.Time) *sessionService {
	svc := NewSessionService(e.users, e.subjects, e.tasks, e.sessions, e.uow).(*sessionService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) scheduleService(now time.Time) *scheduleService {
	svc := NewScheduleService(e.users, e.subjects, e.tasks, e.sessions,
		e.constraints, e.energy, e.uow, nil, nil).(*scheduleService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) recurrenceService(now time.Time) *recurrenceService {
	svc := NewRecurrenceService(e.tasks, e.uow).(*recurrenceService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) workloadService(now time.Time) *workloadService {
	svc := NewWorkloadService(e.users, e.subjects, e.tasks, e.sessions, e.constraints).(*workloadService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) calendarService(now time.Time) *calendarService {
	svc := NewCalendarService(e.users, e.subjects, e.tasks, e.sessions, e.constraints).(*calendarService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) analyticsService(now time.Time) *analyticsService {
	svc := NewAnalyticsService(e.users, e.subjects, e.tasks, e.sessions).(*analyticsService)
	svc.now = func() time.Time { return now }
	return svc
}

// mondayMorning is a fixed reference instant used across service tests:
// Monday 2025-06-02 08:00 UTC.
var mondayMorning = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
