package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/testutil"
)

func TestSessionService_CreateManual(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning.Add(2 * time.Hour)
	view, err := svc.Create(ctx, env.user.ID, contract.SessionCreate{
		StartTime: start,
		EndTime:   start.Add(45 * time.Minute),
		Notes:     "Flashcards",
	})
	require.NoError(t, err)

	assert.True(t, view.IsPinned, "manual sessions are pinned")
	assert.Equal(t, domain.GeneratedManual, view.GeneratedBy)
	assert.Equal(t, domain.SessionPlanned, view.Status)
	assert.Equal(t, "Flashcards", view.Focus, "notes label a session with no task or subject")
}

func TestSessionService_CreateAllowsOverlap(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning.Add(2 * time.Hour)
	existing := testutil.NewTestSession(env.user.ID, start, 60)
	require.NoError(t, env.sessions.Create(ctx, existing))

	_, err := svc.Create(ctx, env.user.ID, contract.SessionCreate{
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
	})
	assert.NoError(t, err, "manual sessions may overlap anything")
}

func TestSessionService_CreateValidatesDuration(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning

	_, err := svc.Create(ctx, env.user.ID, contract.SessionCreate{
		StartTime: start, EndTime: start.Add(2 * time.Minute),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, env.user.ID, contract.SessionCreate{
		StartTime: start, EndTime: start.Add(9 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, env.user.ID, contract.SessionCreate{
		StartTime: start.Add(time.Hour), EndTime: start,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSessionService_UpdateCompletedTimeForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-2*time.Hour), 60,
		testutil.WithStatus(domain.SessionCompleted))
	require.NoError(t, env.sessions.Create(ctx, sess))

	newStart := mondayMorning
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{StartTime: &newStart})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionService_UpdateSingleBoundKeepsDuration(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning.Add(2 * time.Hour)
	sess := testutil.NewTestSession(env.user.ID, start, 60)
	require.NoError(t, env.sessions.Create(ctx, sess))

	newStart := start.Add(3 * time.Hour)
	view, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{StartTime: &newStart})
	require.NoError(t, err)
	assert.True(t, view.StartTime.Equal(newStart))
	assert.True(t, view.EndTime.Equal(newStart.Add(time.Hour)), "the hour-long slot moved as a whole")
}

func TestSessionService_UpdateConflictRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning.Add(2 * time.Hour)
	blocker := testutil.NewTestSession(env.user.ID, start, 60, testutil.WithNotes("Essay draft"))
	require.NoError(t, env.sessions.Create(ctx, blocker))

	sess := testutil.NewTestSession(env.user.ID, start.Add(2*time.Hour), 60)
	require.NoError(t, env.sessions.Create(ctx, sess))

	newStart := start.Add(30 * time.Minute)
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{StartTime: &newStart})
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Essay draft", conflict.With)
	assert.True(t, conflict.Start.Equal(blocker.StartTime))
}

func TestSessionService_UpdateShorteningSkipsConflictCheck(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	start := mondayMorning.Add(2 * time.Hour)
	// Back-to-back sessions; shrinking the first cannot collide.
	first := testutil.NewTestSession(env.user.ID, start, 60)
	second := testutil.NewTestSession(env.user.ID, start.Add(time.Hour), 60)
	require.NoError(t, env.sessions.Create(ctx, first))
	require.NoError(t, env.sessions.Create(ctx, second))

	newEnd := start.Add(30 * time.Minute)
	view, err := svc.Update(ctx, env.user.ID, first.ID, contract.SessionUpdate{EndTime: &newEnd})
	require.NoError(t, err)
	assert.True(t, view.EndTime.Equal(newEnd))
	assert.True(t, view.StartTime.Equal(start), "a lone end-time shrink keeps the start put")
}

func TestSessionService_UpdateWrongUserNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	sess := testutil.NewTestSession(env.user.ID, mondayMorning, 60)
	require.NoError(t, env.sessions.Create(ctx, sess))

	other := testutil.NewTestUser()
	require.NoError(t, env.users.Create(ctx, other))

	status := domain.SessionSkipped
	_, err := svc.Update(ctx, other.ID, sess.ID, contract.SessionUpdate{Status: &status})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_CompletionPropagatesToTask(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	task := testutil.NewTestTask(env.user.ID, "Read chapter 4", testutil.WithEstimatedMin(60))
	require.NoError(t, env.tasks.Create(ctx, task))

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-2*time.Hour), 60,
		testutil.WithTaskID(task.ID))
	require.NoError(t, env.sessions.Create(ctx, sess))

	status := domain.SessionCompleted
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{Status: &status})
	require.NoError(t, err)

	updated, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.ActualMin)
	assert.True(t, updated.IsCompleted, "session time covered the estimate")
	assert.Equal(t, domain.TaskCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(mondayMorning))
}

func TestSessionService_PreventAutoCompletionHolds(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	task := testutil.NewTestTask(env.user.ID, "Problem set", testutil.WithEstimatedMin(30))
	task.PreventAutoCompletion = true
	require.NoError(t, env.tasks.Create(ctx, task))

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-2*time.Hour), 60,
		testutil.WithTaskID(task.ID))
	require.NoError(t, env.sessions.Create(ctx, sess))

	status := domain.SessionCompleted
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{Status: &status})
	require.NoError(t, err)

	updated, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.ActualMin, "minutes still accumulate")
	assert.False(t, updated.IsCompleted, "the flag blocks the completion flip")
}

func TestSessionService_UncompleteAfterGraceWindow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	task := testutil.NewTestTask(env.user.ID, "Vocabulary", testutil.WithEstimatedMin(60),
		testutil.WithCompleted(mondayMorning.Add(-3*time.Hour)))
	require.NoError(t, env.tasks.Create(ctx, task))

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-5*time.Hour), 60,
		testutil.WithTaskID(task.ID), testutil.WithStatus(domain.SessionCompleted))
	require.NoError(t, env.sessions.Create(ctx, sess))

	// Demoting the only completed session drops the time below the estimate.
	status := domain.SessionSkipped
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{Status: &status})
	require.NoError(t, err)

	updated, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, domain.TaskTodo, updated.Status)
}

func TestSessionService_RecentCompletionSurvivesUncomplete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	task := testutil.NewTestTask(env.user.ID, "Vocabulary", testutil.WithEstimatedMin(60),
		testutil.WithCompleted(mondayMorning.Add(-10*time.Minute)))
	require.NoError(t, env.tasks.Create(ctx, task))

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-5*time.Hour), 60,
		testutil.WithTaskID(task.ID), testutil.WithStatus(domain.SessionCompleted))
	require.NoError(t, env.sessions.Create(ctx, sess))

	status := domain.SessionSkipped
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{Status: &status})
	require.NoError(t, err)

	updated, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted, "a tick from minutes ago is not overridden")
}

func TestSessionService_CompletionRollsRecurringForward(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	template := testutil.NewTestTask(env.user.ID, "Weekly review",
		testutil.WithRecurrence(domain.RecurrencePattern{
			Frequency: domain.FreqWeekly, DaysOfWeek: []int{0},
		}),
		testutil.WithDeadline(mondayMorning.Add(10*time.Hour)))
	require.NoError(t, env.tasks.Create(ctx, template))

	instance := testutil.NewTestTask(env.user.ID, "Weekly review",
		testutil.WithTemplateID(template.ID),
		testutil.WithDeadline(mondayMorning.Add(10*time.Hour)),
		testutil.WithEstimatedMin(30))
	require.NoError(t, env.tasks.Create(ctx, instance))

	sess := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-time.Hour), 30,
		testutil.WithTaskID(instance.ID))
	require.NoError(t, env.sessions.Create(ctx, sess))

	status := domain.SessionCompleted
	_, err := svc.Update(ctx, env.user.ID, sess.ID, contract.SessionUpdate{Status: &status})
	require.NoError(t, err)

	instances, err := env.tasks.ListInstances(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, instances, 2, "completion spawned the next occurrence")

	var next *domain.Task
	for _, inst := range instances {
		if inst.ID != instance.ID {
			next = inst
		}
	}
	require.NotNil(t, next)
	require.NotNil(t, next.Deadline)
	assert.Equal(t, mondayMorning.Add(10*time.Hour).AddDate(0, 0, 7), next.Deadline.UTC())
	assert.False(t, next.IsCompleted)
}

func TestSessionService_StartDemotesOtherRunning(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	running := testutil.NewTestSession(env.user.ID, mondayMorning.Add(-time.Hour), 60,
		testutil.WithStatus(domain.SessionInProgress))
	next := testutil.NewTestSession(env.user.ID, mondayMorning, 60)
	require.NoError(t, env.sessions.Create(ctx, running))
	require.NoError(t, env.sessions.Create(ctx, next))

	view, err := svc.Start(ctx, env.user.ID, next.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, view.Status)

	demoted, err := env.sessions.GetByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPartial, demoted.Status, "one session runs at a time")
}

func TestSessionService_DeleteRules(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService(mondayMorning)
	ctx := context.Background()

	// Planned and manual: deletable.
	manual := testutil.NewTestSession(env.user.ID, mondayMorning, 60)
	require.NoError(t, env.sessions.Create(ctx, manual))
	assert.NoError(t, svc.Delete(ctx, env.user.ID, manual.ID))

	// Completed: never deletable.
	done := testutil.NewTestSession(env.user.ID, mondayMorning, 60,
		testutil.WithStatus(domain.SessionCompleted))
	require.NoError(t, env.sessions.Create(ctx, done))
	assert.ErrorIs(t, svc.Delete(ctx, env.user.ID, done.ID), ErrForbidden)

	// Generated and unpinned: the planner owns it.
	generated := testutil.NewTestSession(env.user.ID, mondayMorning, 60,
		testutil.WithGeneratedBy(domain.GeneratedWeekly))
	require.NoError(t, env.sessions.Create(ctx, generated))
	assert.ErrorIs(t, svc.Delete(ctx, env.user.ID, generated.ID), ErrForbidden)

	// Generated but pinned: the user claimed it.
	pinned := testutil.NewTestSession(env.user.ID, mondayMorning, 60,
		testutil.WithGeneratedBy(domain.GeneratedWeekly), testutil.WithPinned())
	require.NoError(t, env.sessions.Create(ctx, pinned))
	assert.NoError(t, svc.Delete(ctx, env.user.ID, pinned.ID))
}
