package gormstore

import (
	"context"

	"github.com/dom/shopcook-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) UpsertMany(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(categories).Error
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *ingredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetAll(ctx context.Context) ([]*domain.Ingredient, error) {
	var ingredients []*domain.Ingredient
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}
