package domain

import "errors"

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrForbidden            = errors.New("forbidden")
	ErrDeleteWindowExceeded = errors.New("comment delete window exceeded")
	ErrInvalidSteps         = errors.New("recipe must have at least one step")
	ErrInvalidIngredients   = errors.New("recipe must have at least one ingredient")
	ErrInvalidIngredient    = errors.New("ingredient line requires a known ingredientId or a name")
	ErrInvalidCategory      = errors.New("unknown category")
)
