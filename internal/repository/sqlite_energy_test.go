package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/testutil"
	"github.com/smartstudy/companion/internal/timekit"
)

func energyTestSetup(t *testing.T) (*SQLiteEnergyRepo, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	userRepo := NewSQLiteUserRepo(db)
	repo := NewSQLiteEnergyRepo(db)

	user := testutil.NewTestUser()
	require.NoError(t, userRepo.Create(ctx, user))
	return repo, user.ID
}

func TestEnergyRepo_UpsertAndGet(t *testing.T) {
	repo, userID := energyTestSetup(t)
	ctx := context.Background()

	day := timekit.LocalDate{Year: 2025, Month: 6, Day: 2}
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestEnergy(userID, day, domain.EnergyLow)))

	fetched, err := repo.GetByDay(ctx, userID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.EnergyLow, fetched.Level)
	assert.Equal(t, day, fetched.Day)
}

func TestEnergyRepo_UpsertReplacesSameDay(t *testing.T) {
	repo, userID := energyTestSetup(t)
	ctx := context.Background()

	day := timekit.LocalDate{Year: 2025, Month: 6, Day: 2}
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestEnergy(userID, day, domain.EnergyLow)))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestEnergy(userID, day, domain.EnergyHigh)))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1, "one report per (user, day)")
	assert.Equal(t, domain.EnergyHigh, list[0].Level)
}

func TestEnergyRepo_GetByDay_NotFound(t *testing.T) {
	repo, userID := energyTestSetup(t)

	day := timekit.LocalDate{Year: 2025, Month: 1, Day: 1}
	_, err := repo.GetByDay(context.Background(), userID, day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnergyRepo_Delete(t *testing.T) {
	repo, userID := energyTestSetup(t)
	ctx := context.Background()

	day := timekit.LocalDate{Year: 2025, Month: 6, Day: 2}
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestEnergy(userID, day, domain.EnergyMedium)))
	require.NoError(t, repo.Delete(ctx, userID, day))

	_, err := repo.GetByDay(ctx, userID, day)
	assert.ErrorIs(t, err, ErrNotFound)
}
