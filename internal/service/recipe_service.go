package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository"
	"github.com/dom/shopcook-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// slugAttempts bounds how often a save is retried after losing a slug race.
const slugAttempts = 3

var ErrCoversDisabled = errors.New("cover storage is not configured")

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	ratingRepo repository.RatingRepository
	covers     storage.CoverStore
	now        func() time.Time
}

func NewRecipeService(recipeRepo repository.RecipeRepository, ratingRepo repository.RatingRepository, covers storage.CoverStore) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		ratingRepo: ratingRepo,
		covers:     covers,
		now:        time.Now,
	}
}

type CreateRecipeInput struct {
	Title       string
	Servings    int
	PrepMinutes int
	CookMinutes int
	Difficulty  int
	Steps       []string
	CategoryID  *uint
	CoverURL    *string
	IsPublished *bool
	Ingredients []domain.IngredientLine
}

// UpdateRecipeInput is a partial update; nil fields are left untouched.
// ClearCategory removes the category and wins over CategoryID.
type UpdateRecipeInput struct {
	Title         *string
	Servings      *int
	PrepMinutes   *int
	CookMinutes   *int
	Difficulty    *int
	Steps         *[]string
	CategoryID    *uint
	ClearCategory bool
	CoverURL      *string
	IsPublished   *bool
	Ingredients   *[]domain.IngredientLine
}

type HideResult struct {
	Success  bool       `json:"success"`
	HiddenAt *time.Time `json:"hiddenAt"`
}

func (s *RecipeService) ListPublic(ctx context.Context, filter domain.RecipeFilter) (*domain.Page[*domain.RecipeSummary], error) {
	filter.Visibility = domain.VisibilityPublic
	filter.IncludeHidden = false
	return s.list(ctx, filter)
}

func (s *RecipeService) ListForAdmin(ctx context.Context, filter domain.RecipeFilter, includeHidden bool) (*domain.Page[*domain.RecipeSummary], error) {
	filter.Visibility = domain.VisibilityAdmin
	filter.IncludeHidden = includeHidden
	return s.list(ctx, filter)
}

// ListMine returns the caller's own recipes, drafts and hidden ones included.
func (s *RecipeService) ListMine(ctx context.Context, principal domain.Principal, filter domain.RecipeFilter) (*domain.Page[*domain.RecipeSummary], error) {
	filter.Visibility = domain.VisibilityOwner
	filter.AuthorID = &principal.ID
	return s.list(ctx, filter)
}

func (s *RecipeService) list(ctx context.Context, filter domain.RecipeFilter) (*domain.Page[*domain.RecipeSummary], error) {
	filter.Page, filter.Limit = domain.RecipePageBounds.Normalize(filter.Page, filter.Limit)

	recipes, total, err := s.recipeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.summarize(ctx, recipes)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.RecipeSummary]{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// summarize attaches rating aggregates to recipes with a single grouped query.
func (s *RecipeService) summarize(ctx context.Context, recipes []*domain.Recipe) ([]*domain.RecipeSummary, error) {
	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}

	stats, err := s.ratingRepo.StatsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		st := stats[r.ID]
		items = append(items, &domain.RecipeSummary{
			Recipe:        *r,
			AverageRating: st.Average,
			RatingCount:   st.Count,
		})
	}
	return items, nil
}

// GetPublicByIDOrSlug resolves a published, visible recipe by id, then by slug.
func (s *RecipeService) GetPublicByIDOrSlug(ctx context.Context, idOrSlug string) (*domain.RecipeSummary, error) {
	var recipe *domain.Recipe
	var err error

	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		recipe, err = s.recipeRepo.GetDetail(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if recipe == nil {
		recipe, err = s.recipeRepo.GetDetailBySlug(ctx, idOrSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrRecipeNotFound
			}
			return nil, err
		}
	}

	if recipe.Status() != domain.RecipeStatusPublished {
		return nil, domain.ErrRecipeNotFound
	}
	return s.withStats(ctx, recipe)
}

func (s *RecipeService) detail(ctx context.Context, id uuid.UUID) (*domain.RecipeSummary, error) {
	recipe, err := s.recipeRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return s.withStats(ctx, recipe)
}

func (s *RecipeService) withStats(ctx context.Context, recipe *domain.Recipe) (*domain.RecipeSummary, error) {
	items, err := s.summarize(ctx, []*domain.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (s *RecipeService) Create(ctx context.Context, principal domain.Principal, input CreateRecipeInput) (*domain.RecipeSummary, error) {
	if err := ensurePublishable(input.Steps, input.Ingredients); err != nil {
		return nil, err
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	recipe := &domain.Recipe{
		ID:          uuid.New(),
		AuthorID:    principal.ID,
		Title:       strings.TrimSpace(input.Title),
		CoverURL:    input.CoverURL,
		Servings:    input.Servings,
		PrepMinutes: input.PrepMinutes,
		CookMinutes: input.CookMinutes,
		Difficulty:  input.Difficulty,
		Steps:       input.Steps,
		CategoryID:  input.CategoryID,
		IsPublished: published,
	}

	err := s.saveWithUniqueSlug(ctx, recipe, nil, func() error {
		return s.recipeRepo.Create(ctx, recipe, input.Ingredients)
	})
	if err != nil {
		return nil, translateSaveError(err, recipe)
	}

	return s.detail(ctx, recipe.ID)
}

// saveWithUniqueSlug picks a free slug for recipe and runs save, picking again
// when a concurrent writer claimed the slug first.
func (s *RecipeService) saveWithUniqueSlug(ctx context.Context, recipe *domain.Recipe, excludeID *uuid.UUID, save func() error) error {
	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		recipe.Slug, err = s.uniqueSlug(ctx, recipe.Title, excludeID)
		if err != nil {
			return err
		}
		err = save()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("allocate slug for %q: %w", recipe.Title, err)
}

func (s *RecipeService) uniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := Slugify(title)
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.recipeRepo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, principal domain.Principal, input UpdateRecipeInput) (*domain.RecipeSummary, error) {
	recipe, err := s.getOwned(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	titleChanged := input.Title != nil && strings.TrimSpace(*input.Title) != recipe.Title
	if input.Title != nil {
		recipe.Title = strings.TrimSpace(*input.Title)
	}
	if input.Servings != nil {
		recipe.Servings = *input.Servings
	}
	if input.PrepMinutes != nil {
		recipe.PrepMinutes = *input.PrepMinutes
	}
	if input.CookMinutes != nil {
		recipe.CookMinutes = *input.CookMinutes
	}
	if input.Difficulty != nil {
		recipe.Difficulty = *input.Difficulty
	}
	if input.Steps != nil {
		if len(*input.Steps) == 0 {
			return nil, domain.ErrInvalidSteps
		}
		recipe.Steps = *input.Steps
	}
	switch {
	case input.ClearCategory:
		recipe.CategoryID = nil
		recipe.Category = nil
	case input.CategoryID != nil:
		recipe.CategoryID = input.CategoryID
	}
	if input.CoverURL != nil {
		recipe.CoverURL = input.CoverURL
	}
	if input.IsPublished != nil {
		recipe.IsPublished = *input.IsPublished
	}

	var lines []domain.IngredientLine
	if input.Ingredients != nil {
		if len(*input.Ingredients) == 0 {
			return nil, domain.ErrInvalidIngredients
		}
		lines = *input.Ingredients
	}

	save := func() error { return s.recipeRepo.Update(ctx, recipe, lines) }
	if titleChanged {
		err = s.saveWithUniqueSlug(ctx, recipe, &recipe.ID, save)
	} else {
		err = save()
	}
	if err != nil {
		return nil, translateSaveError(err, recipe)
	}

	return s.detail(ctx, recipe.ID)
}

func (s *RecipeService) ReplaceIngredients(ctx context.Context, id uuid.UUID, principal domain.Principal, lines []domain.IngredientLine) (*domain.RecipeSummary, error) {
	recipe, err := s.getOwned(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	if err := ensurePublishable(recipe.Steps, lines); err != nil {
		return nil, err
	}
	if err := s.recipeRepo.ReplaceIngredients(ctx, id, lines); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Hide toggles the moderation flag of a recipe.
func (s *RecipeService) Hide(ctx context.Context, id uuid.UUID) (*HideResult, error) {
	recipe, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	var hiddenAt *time.Time
	if recipe.HiddenAt == nil {
		now := s.now()
		hiddenAt = &now
	}

	if err := s.recipeRepo.SetHidden(ctx, id, hiddenAt); err != nil {
		return nil, err
	}
	return &HideResult{Success: true, HiddenAt: hiddenAt}, nil
}

func (s *RecipeService) Remove(ctx context.Context, id uuid.UUID, principal domain.Principal) error {
	if _, err := s.getOwned(ctx, id, principal); err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// SetCover uploads a cover image and points the recipe at it.
func (s *RecipeService) SetCover(ctx context.Context, id uuid.UUID, principal domain.Principal, contentType string, body io.Reader) (*domain.RecipeSummary, error) {
	if s.covers == nil {
		return nil, ErrCoversDisabled
	}
	if _, err := s.getOwned(ctx, id, principal); err != nil {
		return nil, err
	}

	ext, err := storage.ExtensionFor(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("recipes/%s/%s%s", id, uuid.NewString(), ext)
	url, err := s.covers.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	if err := s.recipeRepo.SetCover(ctx, id, url); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *RecipeService) get(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) getOwned(ctx context.Context, id uuid.UUID, principal domain.Principal) (*domain.Recipe, error) {
	recipe, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanModify(recipe.AuthorID) {
		return nil, domain.ErrForbidden
	}
	return recipe, nil
}

// translateSaveError maps constraint failures of a recipe write. The only
// foreign keys are the category and the author, so a violation without a
// category means the author account is gone.
func translateSaveError(err error, recipe *domain.Recipe) error {
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated) && recipe.CategoryID != nil:
		return domain.ErrInvalidCategory
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrUserNotFound
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrRecipeNotFound
	}
	return err
}

func ensurePublishable(steps []string, lines []domain.IngredientLine) error {
	if len(steps) == 0 {
		return domain.ErrInvalidSteps
	}
	if len(lines) == 0 {
		return domain.ErrInvalidIngredients
	}
	return nil
}
