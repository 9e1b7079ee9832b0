package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DifficultyEasy   = 1
	DifficultyMedium = 3
	DifficultyHard   = 5
)

type RecipeStatus string

const (
	RecipeStatusDraft     RecipeStatus = "draft"
	RecipeStatusPublished RecipeStatus = "published"
	RecipeStatusHidden    RecipeStatus = "hidden"
)

type Recipe struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	AuthorID    uuid.UUID                   `json:"authorId" gorm:"type:char(36);index;not null"`
	Author      *User                       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string                      `json:"title" gorm:"size:160;not null"`
	Slug        string                      `json:"slug" gorm:"size:190;uniqueIndex;not null"`
	CoverURL    *string                     `json:"coverUrl" gorm:"size:500"`
	Servings    int                         `json:"servings" gorm:"not null"`
	PrepMinutes int                         `json:"prepMinutes" gorm:"not null"`
	CookMinutes int                         `json:"cookMinutes" gorm:"not null"`
	Difficulty  int                         `json:"difficulty" gorm:"not null"`
	Steps       datatypes.JSONSlice[string] `json:"steps" gorm:"not null"`
	CategoryID  *uint                       `json:"categoryId" gorm:"index"`
	Category    *Category                   `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	IsPublished bool                        `json:"isPublished" gorm:"not null"`
	HiddenAt    *time.Time                  `json:"hiddenAt"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updatedAt"`

	Ingredients []RecipeIngredient `json:"ingredients,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Ratings     []Rating           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Comments    []Comment          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Favorites   []Favorite         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (r *Recipe) Status() RecipeStatus {
	switch {
	case r.HiddenAt != nil:
		return RecipeStatusHidden
	case !r.IsPublished:
		return RecipeStatusDraft
	default:
		return RecipeStatusPublished
	}
}

func (r *Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

type RecipeIngredient struct {
	RecipeID     uuid.UUID   `json:"-" gorm:"type:char(36);primaryKey"`
	IngredientID uint        `json:"ingredientId" gorm:"primaryKey;autoIncrement:false"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity     float64     `json:"quantity" gorm:"type:decimal(8,2);not null"`
	Unit         string      `json:"unit" gorm:"size:32;not null"`
	Note         *string     `json:"note" gorm:"size:160"`
}

// IngredientLine is one ingredient entry of a recipe payload. Either
// IngredientID or Name identifies the ingredient.
type IngredientLine struct {
	IngredientID *uint
	Name         string
	Quantity     float64
	Unit         string
	Note         *string
}

// RatingStats is the aggregate of all ratings on one recipe.
type RatingStats struct {
	RecipeID uuid.UUID
	Average  float64
	Count    int64
}

// RecipeSummary is a recipe enriched with its rating aggregate.
type RecipeSummary struct {
	Recipe
	AverageRating float64 `json:"averageRating"`
	RatingCount   int64   `json:"ratingCount"`
}

// Visibility selects which recipes a listing may return.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityAdmin
	VisibilityOwner
)

type RecipeFilter struct {
	Visibility    Visibility
	IncludeHidden bool
	Query         string
	Category      string
	Difficulty    *int
	MaxTime       *int
	AuthorID      *uuid.UUID
	Page          int
	Limit         int
}

// ParseDifficulty accepts a numeric level 1-5 or one of easy, medium, hard.
func ParseDifficulty(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
