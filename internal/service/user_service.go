package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo     repository.UserRepository
	recipeRepo   repository.RecipeRepository
	commentRepo  repository.CommentRepository
	ratingRepo   repository.RatingRepository
	favoriteRepo repository.FavoriteRepository
	now          func() time.Time
}

func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{
		userRepo:     repos.User,
		recipeRepo:   repos.Recipe,
		commentRepo:  repos.Comment,
		ratingRepo:   repos.Rating,
		favoriteRepo: repos.Favorite,
		now:          time.Now,
	}
}

// UpdateProfileInput carries the self-service profile fields; nil means unchanged.
type UpdateProfileInput struct {
	DisplayName *string
	Email       *string
}

// AdminUpdateInput carries the fields an administrator may change on any account.
type AdminUpdateInput struct {
	DisplayName *string
	Email       *string
	Role        *domain.Role
	Blocked     *bool
}

type AccountExport struct {
	ExportedAt time.Time          `json:"exportedAt"`
	User       ExportedUser       `json:"user"`
	Recipes    []ExportedRecipe   `json:"recipes"`
	Comments   []ExportedComment  `json:"comments"`
	Ratings    []ExportedRating   `json:"ratings"`
	Favorites  []ExportedFavorite `json:"favorites"`
}

type ExportedUser struct {
	ID                   uuid.UUID   `json:"id"`
	Email                string      `json:"email"`
	DisplayName          string      `json:"displayName"`
	Role                 domain.Role `json:"role"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
	PrivacyAcceptedAt    *time.Time  `json:"privacyAcceptedAt"`
	PrivacyPolicyVersion *string     `json:"privacyPolicyVersion"`
}

type ExportedRecipe struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ExportedComment struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipeId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type ExportedRating struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipeId"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"createdAt"`
}

type ExportedFavorite struct {
	RecipeID  uuid.UUID `json:"recipeId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	return s.AdminUpdate(ctx, id, AdminUpdateInput{
		DisplayName: input.DisplayName,
		Email:       input.Email,
	})
}

func (s *UserService) AdminUpdate(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Blocked != nil {
		switch {
		case *input.Blocked && user.BlockedAt == nil:
			now := s.now()
			user.BlockedAt = &now
		case !*input.Blocked:
			user.BlockedAt = nil
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrEmailTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	other, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if other.ID != self {
		return ErrEmailTaken
	}
	return nil
}

func (s *UserService) List(ctx context.Context, page, limit int) (*domain.Page[*domain.User], error) {
	page, limit = domain.UserPageBounds.Normalize(page, limit)

	users, total, err := s.userRepo.List(ctx, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// Export gathers everything stored about the user.
func (s *UserService) Export(ctx context.Context, id uuid.UUID) (*AccountExport, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	recipes, err := s.recipeRepo.ListByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	export := &AccountExport{
		ExportedAt: s.now(),
		User: ExportedUser{
			ID:                   user.ID,
			Email:                user.Email,
			DisplayName:          user.DisplayName,
			Role:                 user.Role,
			CreatedAt:            user.CreatedAt,
			UpdatedAt:            user.UpdatedAt,
			PrivacyAcceptedAt:    user.PrivacyAcceptedAt,
			PrivacyPolicyVersion: user.PrivacyPolicyVersion,
		},
		Recipes:   make([]ExportedRecipe, 0, len(recipes)),
		Comments:  make([]ExportedComment, 0, len(comments)),
		Ratings:   make([]ExportedRating, 0, len(ratings)),
		Favorites: make([]ExportedFavorite, 0, len(favorites)),
	}

	for _, r := range recipes {
		export.Recipes = append(export.Recipes, ExportedRecipe{
			ID:          r.ID,
			Title:       r.Title,
			Slug:        r.Slug,
			IsPublished: r.IsPublished,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	for _, c := range comments {
		export.Comments = append(export.Comments, ExportedComment{ID: c.ID, RecipeID: c.RecipeID, Body: c.Body, CreatedAt: c.CreatedAt})
	}
	for _, r := range ratings {
		export.Ratings = append(export.Ratings, ExportedRating{ID: r.ID, RecipeID: r.RecipeID, Stars: r.Stars, CreatedAt: r.CreatedAt})
	}
	for _, f := range favorites {
		export.Favorites = append(export.Favorites, ExportedFavorite{RecipeID: f.RecipeID, CreatedAt: f.CreatedAt})
	}

	return export, nil
}

// Delete removes the account and all data it owns.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
