package service_test

import (
	"context"
	"testing"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository/gormstore"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_AdminUpdate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	userService := service.NewUserService(repos)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().WithEmail("other@example.com").Build(t, testDB.DB)

	blocked := true
	admin := domain.RoleAdmin
	updated, err := userService.AdminUpdate(ctx, user.ID, service.AdminUpdateInput{Blocked: &blocked, Role: &admin})
	require.NoError(t, err)
	assert.True(t, updated.IsBlocked())
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	blocked = false
	updated, err = userService.AdminUpdate(ctx, user.ID, service.AdminUpdateInput{Blocked: &blocked})
	require.NoError(t, err)
	assert.False(t, updated.IsBlocked())

	taken := "OTHER@example.com"
	_, err = userService.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	own := other.Email
	_, err = userService.UpdateProfile(ctx, other.ID, service.UpdateProfileInput{Email: &own})
	assert.NoError(t, err, "keeping one's own email is not a conflict")

	name := "Nouveau nom"
	_, err = userService.UpdateProfile(ctx, uuid.New(), service.UpdateProfileInput{DisplayName: &name})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_ExportAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	userService := service.NewUserService(repos)
	commentService := service.NewCommentService(repos.Recipe, repos.Comment)
	ratingService := service.NewRatingService(repos.Recipe, repos.Rating)
	favoriteService := service.NewFavoriteService(repos.Recipe, repos.Rating, repos.Favorite)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	own := testutil.NewRecipeBuilder().WithAuthor(user).Build(t, testDB.DB)
	other := testutil.NewRecipeBuilder().Build(t, testDB.DB)

	_, err := commentService.Create(ctx, other.ID, principalOf(user), "Miam miam")
	require.NoError(t, err)
	_, err = ratingService.Rate(ctx, other.ID, principalOf(user), 3)
	require.NoError(t, err)
	require.NoError(t, favoriteService.Toggle(ctx, user.ID, other.ID, true))

	export, err := userService.Export(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, export.User.Email)
	require.Len(t, export.Recipes, 1)
	assert.Equal(t, own.ID, export.Recipes[0].ID)
	assert.Len(t, export.Comments, 1)
	assert.Len(t, export.Ratings, 1)
	assert.Len(t, export.Favorites, 1)

	require.NoError(t, userService.Delete(ctx, user.ID))

	_, err = userService.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.ErrorIs(t, userService.Delete(ctx, user.ID), service.ErrUserNotFound)

	page, err := userService.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total, "only the other recipe's author remains")
}
