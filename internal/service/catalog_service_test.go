package service_test

import (
	"context"
	"testing"

	"github.com/dom/shopcook-api/internal/repository/gormstore"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_SeedCategories(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	catalogService := service.NewCatalogService(repos.Category, repos.Ingredient)
	ctx := context.Background()

	require.NoError(t, catalogService.SeedCategories(ctx, service.DefaultCategories))
	require.NoError(t, catalogService.SeedCategories(ctx, service.DefaultCategories), "seeding is idempotent")

	categories, err := catalogService.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(service.DefaultCategories))

	slugs := make([]string, 0, len(categories))
	for _, c := range categories {
		slugs = append(slugs, c.Slug)
	}
	assert.Contains(t, slugs, "vegetarien")
	assert.Contains(t, slugs, "petit-dejeuner")

	ingredients, err := catalogService.Ingredients(ctx)
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}
