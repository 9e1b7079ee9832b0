package repository

import (
	"context"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error)
	// DeleteAccount removes the user together with everything they own in one transaction.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type PasswordResetRepository interface {
	// Replace deletes every token of the token's user and stores the new one.
	Replace(ctx context.Context, token *domain.PasswordResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	// Complete sets the user's password hash and marks the token used atomically.
	Complete(ctx context.Context, token *domain.PasswordResetToken, passwordHash string, usedAt time.Time) error
}

type RecipeRepository interface {
	// Create inserts the recipe and its ingredient rows in one transaction.
	Create(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error
	// Update saves the recipe; non-nil lines replace the ingredient set in the same transaction.
	Update(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error
	ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []domain.IngredientLine) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	GetDetailBySlug(ctx context.Context, slug string) (*domain.Recipe, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter domain.RecipeFilter) ([]*domain.Recipe, int64, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Recipe, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Recipe, error)
	SetHidden(ctx context.Context, id uuid.UUID, hiddenAt *time.Time) error
	SetCover(ctx context.Context, id uuid.UUID, coverURL string) error
}

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*domain.Category, error)
	UpsertMany(ctx context.Context, categories []*domain.Category) error
}

type IngredientRepository interface {
	GetAll(ctx context.Context) ([]*domain.Ingredient, error)
}

type RatingRepository interface {
	Upsert(ctx context.Context, rating *domain.Rating) error
	StatsFor(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID]domain.RatingStats, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Rating, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByRecipe(ctx context.Context, recipeID uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error)
	ListAll(ctx context.Context, recipeID *uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, favorite *domain.Favorite) error
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error)
}

type Repositories struct {
	User          UserRepository
	PasswordReset PasswordResetRepository
	Recipe        RecipeRepository
	Category      CategoryRepository
	Ingredient    IngredientRepository
	Rating        RatingRepository
	Comment       CommentRepository
	Favorite      FavoriteRepository
}
