package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

func TestSeedData_RunsOnce(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewInMemoryRepositories()

	require.True(t, SeedData(ctx, repos))

	users, err := repos.UserRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	catalog, err := repos.CatalogRepo.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog.Rentals, len(Catalog().Rentals))

	assert.False(t, SeedData(ctx, repos), "existing users skip seeding")
}
