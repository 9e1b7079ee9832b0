package api

import (
	"net/http"

	"github.com/dom/shopcook-api/internal/api/handlers"
	"github.com/dom/shopcook-api/internal/api/middleware"
	"github.com/dom/shopcook-api/internal/config"
	"github.com/dom/shopcook-api/internal/ratelimit"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts every route under /api/v1. limiter is ignored when rate
// limiting is disabled in cfg.
func NewRouter(services *service.Services, limiter ratelimit.Limiter, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.FrontendOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !cfg.RateLimitEnabled {
		limiter = nil
	}

	validate := handlers.NewValidator()
	authHandler := handlers.NewAuthHandler(services.Auth, validate, !cfg.IsProduction())
	userHandler := handlers.NewUserHandler(services.User, validate)
	recipeHandler := handlers.NewRecipeHandler(services.Recipe, validate)
	engagementHandler := handlers.NewEngagementHandler(services, validate)
	catalogHandler := handlers.NewCatalogHandler(services.Catalog)

	requireAuth := middleware.Auth(services.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(limiter, "register", ratelimit.RegisterRule)).Post("/register", authHandler.Register)
			r.With(middleware.RateLimit(limiter, "login", ratelimit.LoginRule)).Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(limiter, "password", ratelimit.PasswordRule))
				r.Post("/forgot-password", authHandler.ForgotPassword)
				r.Post("/reset-password", authHandler.ResetPassword)
			})

			r.With(requireAuth).Post("/logout", authHandler.Logout)
		})

		r.Get("/categories", catalogHandler.Categories)
		r.Get("/ingredients", catalogHandler.Ingredients)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Get("/{id}", recipeHandler.Get)
			r.Get("/{id}/comments", engagementHandler.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", recipeHandler.Create)
				r.Put("/{id}", recipeHandler.Update)
				r.Delete("/{id}", recipeHandler.Delete)
				r.Put("/{id}/ingredients", recipeHandler.ReplaceIngredients)
				r.Post("/{id}/cover", recipeHandler.UploadCover)
				r.With(middleware.RateLimit(limiter, "comment", ratelimit.CommentRule)).Post("/{id}/comments", engagementHandler.CreateComment)
				r.Post("/{id}/rating", engagementHandler.Rate)
				r.Post("/{id}/favorite", engagementHandler.Favorite)
				r.Delete("/{id}/favorite", engagementHandler.Unfavorite)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", userHandler.Me)
				r.Patch("/", userHandler.UpdateMe)
				r.Delete("/", userHandler.DeleteMe)
				r.Get("/export", userHandler.ExportMe)
				r.Get("/recipes", recipeHandler.ListMine)
				r.Get("/favorites", engagementHandler.ListFavorites)
			})

			r.Delete("/comments/{id}", engagementHandler.DeleteComment)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/recipes", recipeHandler.ListForAdmin)
				r.Patch("/recipes/{id}/hide", recipeHandler.Hide)
				r.Get("/comments", engagementHandler.ListAllComments)
				r.Get("/users", userHandler.List)
				r.Patch("/users/{id}", userHandler.AdminUpdate)
				r.Delete("/users/{id}", userHandler.AdminDelete)
			})
		})
	})

	return r
}
