package gormstore

import (
	"context"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *ratingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "updated_at"}),
		}).
		Create(rating).Error
}

// StatsFor aggregates ratings of the given recipes in one grouped query.
// Recipes without ratings are absent from the result.
func (r *ratingRepository) StatsFor(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID]domain.RatingStats, error) {
	result := make(map[uuid.UUID]domain.RatingStats, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	var rows []domain.RatingStats
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("recipe_id, AVG(stars) AS average, COUNT(id) AS count").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.RecipeID] = row
	}
	return result, nil
}

func (r *ratingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Rating, error) {
	var ratings []*domain.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Where("recipe_id = ?", recipeID), limit, offset)
}

func (r *commentRepository) ListAll(ctx context.Context, recipeID *uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error) {
	query := r.db.WithContext(ctx)
	if recipeID != nil {
		query = query.Where("recipe_id = ?", *recipeID)
	}
	return r.page(ctx, query, limit, offset)
}

func (r *commentRepository) page(ctx context.Context, query *gorm.DB, limit, offset int) ([]*domain.Comment, int64, error) {
	query = query.Model(&domain.Comment{}).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *favoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, favorite *domain.Favorite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(favorite).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{}).Error
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error) {
	var favorites []*domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
