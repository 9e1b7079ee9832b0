package gormstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository/gormstore"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormstore.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:           uuid.New(),
				Email:        "chef@example.com",
				DisplayName:  "chef",
				PasswordHash: "hashedpassword",
				Role:         domain.RoleUser,
			},
		},
		{
			name: "duplicate email",
			user: &domain.User{
				ID:           uuid.New(),
				Email:        "chef@example.com", // Same as above
				DisplayName:  "other chef",
				PasswordHash: "hashedpassword2",
				Role:         domain.RoleUser,
			},
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			found, err := repo.GetByEmail(ctx, tt.user.Email)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, found.ID)
		})
	}
}

func TestUserRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormstore.NewUserRepository(testDB.DB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		testutil.NewUserBuilder().Build(t, testDB.DB)
	}

	users, total, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, users, 2)
}

func TestUserRepository_DeleteAccount(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := gormstore.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	own := testutil.NewRecipeBuilder().WithAuthor(user).Build(t, testDB.DB)
	foreign := testutil.NewRecipeBuilder().WithAuthor(other).Build(t, testDB.DB)

	require.NoError(t, repos.Comment.Create(ctx, &domain.Comment{ID: uuid.New(), UserID: user.ID, RecipeID: foreign.ID, Body: "Délicieux", CreatedAt: time.Now()}))
	require.NoError(t, repos.Comment.Create(ctx, &domain.Comment{ID: uuid.New(), UserID: other.ID, RecipeID: own.ID, Body: "Très bon", CreatedAt: time.Now()}))
	require.NoError(t, repos.Rating.Upsert(ctx, &domain.Rating{ID: uuid.New(), UserID: user.ID, RecipeID: foreign.ID, Stars: 4}))
	require.NoError(t, repos.Favorite.Add(ctx, &domain.Favorite{UserID: user.ID, RecipeID: foreign.ID}))

	require.NoError(t, repos.User.DeleteAccount(ctx, user.ID))

	_, err := repos.User.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repos.Recipe.GetByID(ctx, own.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "authored recipes are removed")

	_, err = repos.Recipe.GetByID(ctx, foreign.ID)
	assert.NoError(t, err, "other users' recipes survive")

	var remaining int64
	testDB.DB.Model(&domain.Comment{}).Count(&remaining)
	assert.Equal(t, int64(0), remaining, "own comments and comments on own recipes are gone")

	favorites, err := repos.Favorite.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, repos.User.DeleteAccount(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormstore.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stale, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)

	// A password reset lands between the read and the profile write.
	require.NoError(t, testDB.DB.Model(&domain.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", "rotated-hash").Error)

	stale.DisplayName = "Chef Gaston"
	require.NoError(t, repo.Update(ctx, stale))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chef Gaston", found.DisplayName)
	assert.Equal(t, "rotated-hash", found.PasswordHash, "profile writes leave the password hash alone")

	t.Run("missing user", func(t *testing.T) {
		ghost := *found
		ghost.ID = uuid.New()
		assert.ErrorIs(t, repo.Update(ctx, &ghost), gorm.ErrRecordNotFound)
	})
}
