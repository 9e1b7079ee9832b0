package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository/gormstore"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_Rate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	ratingService := service.NewRatingService(repos.Recipe, repos.Rating)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	recipe := testutil.NewRecipeBuilder().Build(t, testDB.DB)

	result, err := ratingService.Rate(ctx, recipe.ID, principalOf(user), 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.Average, 0.001)

	result, err = ratingService.Rate(ctx, recipe.ID, principalOf(user), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Stars)
	assert.InDelta(t, 5.0, result.Average, 0.001, "only the latest rating counts")

	ratings, err := repos.Rating.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Stars)

	tests := []struct {
		name     string
		recipeID uuid.UUID
		stars    int
		wantErr  error
	}{
		{name: "too low", recipeID: recipe.ID, stars: 0, wantErr: service.ErrInvalidStars},
		{name: "too high", recipeID: recipe.ID, stars: 6, wantErr: service.ErrInvalidStars},
		{name: "unknown recipe", recipeID: uuid.New(), stars: 3, wantErr: domain.ErrRecipeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ratingService.Rate(ctx, tt.recipeID, principalOf(user), tt.stars)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFavoriteService_Toggle(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	favoriteService := service.NewFavoriteService(repos.Recipe, repos.Rating, repos.Favorite)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	recipe := testutil.NewRecipeBuilder().Build(t, testDB.DB)

	require.NoError(t, favoriteService.Toggle(ctx, user.ID, recipe.ID, true))
	require.NoError(t, favoriteService.Toggle(ctx, user.ID, recipe.ID, true))

	items, err := favoriteService.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, recipe.ID, items[0].ID)
	assert.True(t, items[0].IsFavorite)

	require.NoError(t, favoriteService.Toggle(ctx, user.ID, recipe.ID, false))
	require.NoError(t, favoriteService.Toggle(ctx, user.ID, recipe.ID, false))

	items, err = favoriteService.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, favoriteService.Toggle(ctx, user.ID, uuid.New(), true), domain.ErrRecipeNotFound)
}

func TestCommentService_DeleteWindow(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	commentService := service.NewCommentService(repos.Recipe, repos.Comment)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().WithDisplayName("Léa").Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, testDB.DB)
	recipe := testutil.NewRecipeBuilder().Build(t, testDB.DB)

	created := time.Now()
	atCreation := commentService.WithClock(func() time.Time { return created })

	newComment := func() *service.CommentView {
		t.Helper()
		c, err := atCreation.Create(ctx, recipe.ID, principalOf(author), "  Excellente recette  ")
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name    string
		caller  *domain.User
		elapsed time.Duration
		wantErr error
	}{
		{name: "author within window", caller: author, elapsed: 5 * time.Minute},
		{name: "author after window", caller: author, elapsed: 11 * time.Minute, wantErr: domain.ErrDeleteWindowExceeded},
		{name: "stranger", caller: stranger, elapsed: time.Minute, wantErr: domain.ErrForbidden},
		{name: "admin after window", caller: admin, elapsed: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment := newComment()
			assert.Equal(t, "Léa", comment.AuthorName)
			assert.Equal(t, "Excellente recette", comment.Message)

			later := commentService.WithClock(func() time.Time { return created.Add(tt.elapsed) })
			err := later.Delete(ctx, comment.ID, principalOf(tt.caller))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.ErrorIs(t, commentService.Delete(ctx, uuid.New(), principalOf(admin)), domain.ErrCommentNotFound)
}

func TestCommentService_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	commentService := service.NewCommentService(repos.Recipe, repos.Comment)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	recipe := testutil.NewRecipeBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		_, err := commentService.Create(ctx, recipe.ID, principalOf(author), "Très bon plat")
		require.NoError(t, err)
	}

	page, err := commentService.ListPublic(ctx, recipe.ID, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domain.CommentPageBounds.MaxLimit, page.Limit)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)

	adminPage, err := commentService.ListForAdmin(ctx, nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), adminPage.Total)
	assert.Len(t, adminPage.Items, 2)

	_, err = commentService.Create(ctx, uuid.New(), principalOf(author), "Perdu")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestEngagement_DeletedAccountToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	recipe := testutil.NewRecipeBuilder().Build(t, testDB.DB)
	stale := principalOf(user)
	require.NoError(t, repos.User.DeleteAccount(ctx, user.ID))

	t.Run("rate", func(t *testing.T) {
		_, err := service.NewRatingService(repos.Recipe, repos.Rating).Rate(ctx, recipe.ID, stale, 4)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("favorite", func(t *testing.T) {
		err := service.NewFavoriteService(repos.Recipe, repos.Rating, repos.Favorite).Toggle(ctx, stale.ID, recipe.ID, true)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("comment", func(t *testing.T) {
		_, err := service.NewCommentService(repos.Recipe, repos.Comment).Create(ctx, recipe.ID, stale, "Délicieux")
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("recipe", func(t *testing.T) {
		_, err := service.NewRecipeService(repos.Recipe, repos.Rating, nil).Create(ctx, stale, validRecipeInput("Soupe orpheline"))
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	var count int64
	testDB.DB.Model(&domain.Recipe{}).Where("author_id = ?", user.ID).Count(&count)
	assert.Zero(t, count, "no recipe is written for a deleted author")
}
