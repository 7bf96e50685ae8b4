package integration

import (
	"context"
	"testing"

	"dishdash/internal/catalog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := catalog.NewRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetAll returns seeded dishes in name order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDishes(t, testDB.Pool)

		dishes, err := repo.GetAll(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, dishes, 5)
		assert.Equal(t, "Egusi Soup", dishes[0].Name)
		assert.Equal(t, "Suya", dishes[4].Name)
	})

	t.Run("GetAll with pagination", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDishes(t, testDB.Pool)

		dishes, err := repo.GetAll(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, dishes, 2)

		dishes, err = repo.GetAll(ctx, 2, 4)
		require.NoError(t, err)
		assert.Len(t, dishes, 1)
	})

	t.Run("GetByNames returns matching dishes", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDishes(t, testDB.Pool)

		dishes, err := repo.GetByNames(ctx, []string{"Jollof Rice", "Suya"})
		require.NoError(t, err)
		require.Len(t, dishes, 2)
		assert.Equal(t, "Jollof Rice", dishes[0].Name)
		assert.Equal(t, 1800.00, dishes[0].Price)
	})

	t.Run("GetByNames ignores unknown names", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDishes(t, testDB.Pool)

		dishes, err := repo.GetByNames(ctx, []string{"Jollof Rice", "Sushi"})
		require.NoError(t, err)
		assert.Len(t, dishes, 1)
	})

	t.Run("GetByNames with empty input", func(t *testing.T) {
		dishes, err := repo.GetByNames(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, dishes)
	})
}

func TestCatalogPricer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := catalog.NewRepository(testDB.Pool, logger)
	pricer := catalog.NewPricer(repo, 1500, logger)

	ctx := context.Background()

	CleanupDB(t, testDB.Pool)
	SeedDishes(t, testDB.Pool)

	t.Run("prices catalogue items", func(t *testing.T) {
		total, err := pricer.Total(ctx, []string{"Jollof Rice", "Egusi Soup"})
		require.NoError(t, err)
		assert.InDelta(t, 4000, total, 1e-9)
	})

	t.Run("uncatalogued items fall back to the flat price", func(t *testing.T) {
		total, err := pricer.Total(ctx, []string{"Jollof Rice", "Mystery Dish"})
		require.NoError(t, err)
		assert.InDelta(t, 3300, total, 1e-9)
	})
}
