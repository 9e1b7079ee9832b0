package service

import (
	"context"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository"
)

// DefaultCategories are ensured at startup so the recipe editor has choices.
var DefaultCategories = []string{"Entrées", "Plats", "Desserts", "Boissons", "Végétarien", "Petit-déjeuner"}

type CatalogService struct {
	categoryRepo   repository.CategoryRepository
	ingredientRepo repository.IngredientRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, ingredientRepo repository.IngredientRepository) *CatalogService {
	return &CatalogService{
		categoryRepo:   categoryRepo,
		ingredientRepo: ingredientRepo,
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *CatalogService) Ingredients(ctx context.Context) ([]*domain.Ingredient, error) {
	return s.ingredientRepo.GetAll(ctx)
}

// SeedCategories upserts the named categories keyed by their slug.
func (s *CatalogService) SeedCategories(ctx context.Context, names []string) error {
	categories := make([]*domain.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, &domain.Category{Name: name, Slug: Slugify(name)})
	}
	return s.categoryRepo.UpsertMany(ctx, categories)
}
