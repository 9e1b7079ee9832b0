package gormstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxUnitDefaultLen = 16

// Columns an owner may change through Update. Hidden state and the author
// are never written here.
var recipeUpdateColumns = []string{
	"title", "slug", "cover_url", "servings", "prep_minutes", "cook_minutes",
	"difficulty", "steps", "category_id", "is_published", "updated_at",
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *recipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return syncIngredients(tx, recipe.ID, lines)
	})
}

func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(recipe).
			Select(recipeUpdateColumns).
			Updates(recipe)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if lines == nil {
			return nil
		}
		return syncIngredients(tx, recipe.ID, lines)
	})
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []domain.IngredientLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := syncIngredients(tx, recipeID, lines); err != nil {
			return err
		}
		return tx.Model(&domain.Recipe{}).Where("id = ?", recipeID).Update("updated_at", time.Now()).Error
	})
}

// syncIngredients replaces the full ingredient set of a recipe. Lines naming an
// unknown ingredient create it with the line's unit as its default.
func syncIngredients(tx *gorm.DB, recipeID uuid.UUID, lines []domain.IngredientLine) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeIngredient{}).Error; err != nil {
		return err
	}

	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		ingredientID, err := resolveIngredient(tx, line)
		if err != nil {
			return err
		}
		if _, dup := seen[ingredientID]; dup {
			return domain.ErrInvalidIngredient
		}
		seen[ingredientID] = struct{}{}

		row := domain.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredientID,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			Note:         line.Note,
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func resolveIngredient(tx *gorm.DB, line domain.IngredientLine) (uint, error) {
	if line.IngredientID != nil {
		var ingredient domain.Ingredient
		err := tx.Select("id").First(&ingredient, "id = ?", *line.IngredientID).Error
		if err == nil {
			return ingredient.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	name := strings.TrimSpace(line.Name)
	if name == "" {
		return 0, domain.ErrInvalidIngredient
	}

	var ingredient domain.Ingredient
	err := tx.Where("name = ?", name).First(&ingredient).Error
	if err == nil {
		return ingredient.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	ingredient = domain.Ingredient{Name: name}
	if unit := strings.TrimSpace(line.Unit); unit != "" {
		if runes := []rune(unit); len(runes) > maxUnitDefaultLen {
			unit = string(runes[:maxUnitDefaultLen])
		}
		ingredient.UnitDefault = &unit
	}
	if err := tx.Create(&ingredient).Error; err != nil {
		return 0, err
	}
	return ingredient.ID, nil
}

func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Recipe{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetDetail(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	return r.detail(ctx, "id = ?", id)
}

func (r *recipeRepository) GetDetailBySlug(ctx context.Context, slug string) (*domain.Recipe, error) {
	return r.detail(ctx, "slug = ?", slug)
}

func (r *recipeRepository) detail(ctx context.Context, query string, arg interface{}) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Ingredients.Ingredient").
		Where(query, arg).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) List(ctx context.Context, filter domain.RecipeFilter) ([]*domain.Recipe, int64, error) {
	base := applyRecipeFilter(r.db.WithContext(ctx).Model(&domain.Recipe{}), filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []*domain.Recipe
	err := base.
		Select("recipes.*").
		Preload("Category").
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Limit(filter.Limit).
		Offset(domain.Offset(filter.Page, filter.Limit)).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func applyRecipeFilter(query *gorm.DB, filter domain.RecipeFilter) *gorm.DB {
	switch filter.Visibility {
	case domain.VisibilityPublic:
		query = query.Where("recipes.is_published = ? AND recipes.hidden_at IS NULL", true)
	case domain.VisibilityAdmin:
		if !filter.IncludeHidden {
			query = query.Where("recipes.hidden_at IS NULL")
		}
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(recipes.title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		if id, err := strconv.ParseUint(category, 10, 64); err == nil {
			query = query.Where("recipes.category_id = ?", id)
		} else {
			query = query.
				Joins("LEFT JOIN categories ON categories.id = recipes.category_id").
				Where("LOWER(categories.name) = ?", strings.ToLower(category))
		}
	}

	if filter.Difficulty != nil {
		query = query.Where("recipes.difficulty = ?", *filter.Difficulty)
	}
	if filter.MaxTime != nil {
		query = query.Where("recipes.prep_minutes + recipes.cook_minutes <= ?", *filter.MaxTime)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	return query
}

func (r *recipeRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Recipe, error) {
	if len(ids) == 0 {
		return []*domain.Recipe{}, nil
	}

	var recipes []*domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Recipe, error) {
	var recipes []*domain.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) SetHidden(ctx context.Context, id uuid.UUID, hiddenAt *time.Time) error {
	return r.updateColumn(ctx, id, "hidden_at", hiddenAt)
}

func (r *recipeRepository) SetCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	return r.updateColumn(ctx, id, "cover_url", coverURL)
}

func (r *recipeRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
