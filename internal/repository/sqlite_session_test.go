package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/testutil"
)

func sessionTestSetup(t *testing.T) (*SQLiteSessionRepo, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	userRepo := NewSQLiteUserRepo(db)
	sessRepo := NewSQLiteSessionRepo(db)

	user := testutil.NewTestUser()
	require.NoError(t, userRepo.Create(ctx, user))
	return sessRepo, user.ID
}

func TestSessionRepo_CreateAndGetByID(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sess := testutil.NewTestSession(userID, start, 60,
		testutil.WithGeneratedBy(domain.GeneratedWeekly),
		testutil.WithNotes("first block"),
	)
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, fetched.StartTime.Equal(start))
	assert.Equal(t, 60, fetched.DurationMinutes())
	assert.Equal(t, domain.SessionPlanned, fetched.Status)
	assert.Equal(t, domain.GeneratedWeekly, fetched.GeneratedBy)
	assert.Equal(t, "first block", fetched.Notes)
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := sessionTestSetup(t)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_ListRange(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	inside := testutil.NewTestSession(userID, monday.Add(9*time.Hour), 60)
	atUpperBound := testutil.NewTestSession(userID, monday.AddDate(0, 0, 7), 60)
	before := testutil.NewTestSession(userID, monday.Add(-2*time.Hour), 60)
	require.NoError(t, repo.Create(ctx, inside))
	require.NoError(t, repo.Create(ctx, atUpperBound))
	require.NoError(t, repo.Create(ctx, before))

	list, err := repo.ListRange(ctx, userID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, list, 1, "range is half-open: [from, to)")
	assert.Equal(t, inside.ID, list[0].ID)
}

func TestSessionRepo_ListByStatus(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	planned := testutil.NewTestSession(userID, start, 60)
	completed := testutil.NewTestSession(userID, start.Add(2*time.Hour), 60,
		testutil.WithStatus(domain.SessionCompleted))
	partial := testutil.NewTestSession(userID, start.Add(4*time.Hour), 60,
		testutil.WithStatus(domain.SessionPartial))
	require.NoError(t, repo.Create(ctx, planned))
	require.NoError(t, repo.Create(ctx, completed))
	require.NoError(t, repo.Create(ctx, partial))

	list, err := repo.ListByStatus(ctx, userID, domain.SessionCompleted, domain.SessionPartial)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, completed.ID, list[0].ID)
	assert.Equal(t, partial.ID, list[1].ID)

	none, err := repo.ListByStatus(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionRepo_DeleteReplaceable(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	week := monday.AddDate(0, 0, 7)

	planned := testutil.NewTestSession(userID, monday.Add(9*time.Hour), 60)
	skipped := testutil.NewTestSession(userID, monday.Add(11*time.Hour), 60,
		testutil.WithStatus(domain.SessionSkipped))
	pinned := testutil.NewTestSession(userID, monday.Add(13*time.Hour), 60,
		testutil.WithPinned())
	completed := testutil.NewTestSession(userID, monday.Add(15*time.Hour), 60,
		testutil.WithStatus(domain.SessionCompleted))
	inProgress := testutil.NewTestSession(userID, monday.Add(17*time.Hour), 60,
		testutil.WithStatus(domain.SessionInProgress))
	outsideRange := testutil.NewTestSession(userID, week.Add(9*time.Hour), 60)

	for _, s := range []*domain.StudySession{planned, skipped, pinned, completed, inProgress, outsideRange} {
		require.NoError(t, repo.Create(ctx, s))
	}

	require.NoError(t, repo.DeleteReplaceable(ctx, userID, monday, week))

	remaining, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	ids := make(map[string]bool, len(remaining))
	for _, s := range remaining {
		ids[s.ID] = true
	}
	assert.False(t, ids[planned.ID], "planned unpinned session should be removed")
	assert.False(t, ids[skipped.ID], "skipped session should be removed")
	assert.True(t, ids[pinned.ID], "pinned session survives regeneration")
	assert.True(t, ids[completed.ID], "completed work survives")
	assert.True(t, ids[inProgress.ID], "in-progress work survives")
	assert.True(t, ids[outsideRange.ID], "sessions outside the range are untouched")
}

func TestSessionRepo_EnergyLevelRoundTrip(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	level := domain.EnergyHigh
	sess := testutil.NewTestSession(userID, time.Now().UTC(), 45)
	sess.EnergyLevel = &level
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.EnergyLevel)
	assert.Equal(t, domain.EnergyHigh, *fetched.EnergyLevel)

	noLevel := testutil.NewTestSession(userID, time.Now().UTC().Add(2*time.Hour), 45)
	require.NoError(t, repo.Create(ctx, noLevel))
	fetched, err = repo.GetByID(ctx, noLevel.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.EnergyLevel)
}

func TestSessionRepo_Update(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 60)
	require.NoError(t, repo.Create(ctx, sess))

	sess.Status = domain.SessionCompleted
	sess.IsPinned = true
	sess.EndTime = sess.StartTime.Add(90 * time.Minute)
	require.NoError(t, repo.Update(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, fetched.Status)
	assert.True(t, fetched.IsPinned)
	assert.Equal(t, 90, fetched.DurationMinutes())
}
