package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/service"
	"github.com/smartstudy/companion/internal/testutil"
)

func newTestApp(t *testing.T) (*App, *repository.SQLiteUserRepo, *repository.SQLiteTaskRepo) {
	t.Helper()
	color.NoColor = true

	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	users := repository.NewSQLiteUserRepo(database)
	subjects := repository.NewSQLiteSubjectRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	sessions := repository.NewSQLiteSessionRepo(database)
	constraints := repository.NewSQLiteConstraintRepo(database)
	energy := repository.NewSQLiteEnergyRepo(database)

	app := &App{
		Users:     users,
		Schedule:  service.NewScheduleService(users, subjects, tasks, sessions, constraints, energy, uow, nil, nil),
		Workload:  service.NewWorkloadService(users, subjects, tasks, sessions, constraints),
		Calendar:  service.NewCalendarService(users, subjects, tasks, sessions, constraints),
		Analytics: service.NewAnalyticsService(users, subjects, tasks, sessions),
	}
	return app, users, tasks
}

func runCommand(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	app, users, tasks := newTestApp(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, users.Create(ctx, user))
	task := testutil.NewTestTask(user.ID, "Thesis chapter", testutil.WithEstimatedMin(1200))
	require.NoError(t, tasks.Create(ctx, task))

	out, err := runCommand(t, app, "analyze", "--user", user.Email)
	require.NoError(t, err)

	assert.Contains(t, out, strings.ToUpper("Workload analysis for "+user.Email))
	assert.Contains(t, out, "Completion rate")
	assert.Contains(t, out, "capacity_exceeded", "twenty task hours overflow the default capacity")
	assert.Contains(t, out, "HARD")
}

func TestAnalyzeCommandUnknownUser(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, err := runCommand(t, app, "analyze", "--user", "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody@example.com")
}

func TestTokenCommands(t *testing.T) {
	app, users, _ := newTestApp(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, users.Create(ctx, user))

	out, err := runCommand(t, app, "token", "show", "--user", user.Email)
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	// show is idempotent.
	out, err = runCommand(t, app, "token", "show", "--user", user.Email)
	require.NoError(t, err)
	assert.Equal(t, token, strings.TrimSpace(out))

	out, err = runCommand(t, app, "token", "rotate", "--user", user.Email)
	require.NoError(t, err)
	assert.NotEqual(t, token, strings.TrimSpace(out))

	_, err = runCommand(t, app, "token", "revoke", "--user", user.Email)
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CalendarToken)
}
