package service

import (
	"github.com/dom/shopcook-api/internal/config"
	"github.com/dom/shopcook-api/internal/mailer"
	"github.com/dom/shopcook-api/internal/repository"
	"github.com/dom/shopcook-api/internal/storage"
)

type Services struct {
	Auth     *AuthService
	User     *UserService
	Recipe   *RecipeService
	Catalog  *CatalogService
	Rating   *RatingService
	Favorite *FavoriteService
	Comment  *CommentService
}

// NewServices wires every service. covers may be nil when cover uploads are disabled.
func NewServices(repos *repository.Repositories, cfg *config.Config, m mailer.Mailer, covers storage.CoverStore) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.PasswordReset, m, cfg),
		User:     NewUserService(repos),
		Recipe:   NewRecipeService(repos.Recipe, repos.Rating, covers),
		Catalog:  NewCatalogService(repos.Category, repos.Ingredient),
		Rating:   NewRatingService(repos.Recipe, repos.Rating),
		Favorite: NewFavoriteService(repos.Recipe, repos.Rating, repos.Favorite),
		Comment:  NewCommentService(repos.Recipe, repos.Comment),
	}
}
