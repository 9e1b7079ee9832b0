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

var ErrInvalidStars = errors.New("stars must be between 1 and 5")

type RatingService struct {
	recipeRepo repository.RecipeRepository
	ratingRepo repository.RatingRepository
	now        func() time.Time
}

func NewRatingService(recipeRepo repository.RecipeRepository, ratingRepo repository.RatingRepository) *RatingService {
	return &RatingService{
		recipeRepo: recipeRepo,
		ratingRepo: ratingRepo,
		now:        time.Now,
	}
}

type RateResult struct {
	Stars   int     `json:"stars"`
	Average float64 `json:"average"`
}

// Rate records the caller's rating, replacing any previous one, and returns
// the recipe's new average.
func (s *RatingService) Rate(ctx context.Context, recipeID uuid.UUID, principal domain.Principal, stars int) (*RateResult, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidStars
	}
	if err := requireRecipe(ctx, s.recipeRepo, recipeID); err != nil {
		return nil, err
	}

	now := s.now()
	rating := &domain.Rating{
		ID:        uuid.New(),
		UserID:    principal.ID,
		RecipeID:  recipeID,
		Stars:     stars,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, missingOwner(err)
	}

	stats, err := s.ratingRepo.StatsFor(ctx, []uuid.UUID{recipeID})
	if err != nil {
		return nil, err
	}
	return &RateResult{Stars: stars, Average: stats[recipeID].Average}, nil
}

type FavoriteService struct {
	recipeRepo   repository.RecipeRepository
	ratingRepo   repository.RatingRepository
	favoriteRepo repository.FavoriteRepository
}

func NewFavoriteService(recipeRepo repository.RecipeRepository, ratingRepo repository.RatingRepository, favoriteRepo repository.FavoriteRepository) *FavoriteService {
	return &FavoriteService{
		recipeRepo:   recipeRepo,
		ratingRepo:   ratingRepo,
		favoriteRepo: favoriteRepo,
	}
}

// FavoriteRecipe is a favorited recipe as listed for its owner.
type FavoriteRecipe struct {
	*domain.RecipeSummary
	IsFavorite bool `json:"isFavorite"`
}

// Toggle sets or clears the favorite. Both directions are idempotent.
func (s *FavoriteService) Toggle(ctx context.Context, userID, recipeID uuid.UUID, favorite bool) error {
	if !favorite {
		return s.favoriteRepo.Remove(ctx, userID, recipeID)
	}
	if err := requireRecipe(ctx, s.recipeRepo, recipeID); err != nil {
		return err
	}
	return missingOwner(s.favoriteRepo.Add(ctx, &domain.Favorite{UserID: userID, RecipeID: recipeID}))
}

func (s *FavoriteService) ListForUser(ctx context.Context, userID uuid.UUID) ([]FavoriteRecipe, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.RecipeID)
	}

	recipes, err := s.recipeRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.ratingRepo.StatsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]FavoriteRecipe, 0, len(recipes))
	for _, r := range recipes {
		st := stats[r.ID]
		items = append(items, FavoriteRecipe{
			RecipeSummary: &domain.RecipeSummary{Recipe: *r, AverageRating: st.Average, RatingCount: st.Count},
			IsFavorite:    true,
		})
	}
	return items, nil
}

// CommentView is the public shape of a comment.
type CommentView struct {
	ID         uuid.UUID `json:"id"`
	RecipeID   uuid.UUID `json:"recipeId"`
	UserID     uuid.UUID `json:"userId"`
	AuthorName string    `json:"authorName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newCommentView(c *domain.Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		RecipeID:   c.RecipeID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName(),
		Message:    c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

type CommentService struct {
	recipeRepo  repository.RecipeRepository
	commentRepo repository.CommentRepository
	now         func() time.Time
}

func NewCommentService(recipeRepo repository.RecipeRepository, commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{
		recipeRepo:  recipeRepo,
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *CommentService) ListPublic(ctx context.Context, recipeID uuid.UUID, page, limit int) (*domain.Page[CommentView], error) {
	page, limit = domain.CommentPageBounds.Normalize(page, limit)

	comments, total, err := s.commentRepo.ListByRecipe(ctx, recipeID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, err
	}
	return commentPage(comments, total, page, limit), nil
}

// ListForAdmin lists comments across recipes for moderation.
func (s *CommentService) ListForAdmin(ctx context.Context, recipeID *uuid.UUID, page, limit int) (*domain.Page[CommentView], error) {
	page, limit = domain.UserPageBounds.Normalize(page, limit)

	comments, total, err := s.commentRepo.ListAll(ctx, recipeID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, err
	}
	return commentPage(comments, total, page, limit), nil
}

func commentPage(comments []*domain.Comment, total int64, page, limit int) *domain.Page[CommentView] {
	items := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		items = append(items, newCommentView(c))
	}
	return &domain.Page[CommentView]{Items: items, Total: total, Page: page, Limit: limit}
}

func (s *CommentService) Create(ctx context.Context, recipeID uuid.UUID, principal domain.Principal, body string) (*CommentView, error) {
	if err := requireRecipe(ctx, s.recipeRepo, recipeID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		UserID:    principal.ID,
		RecipeID:  recipeID,
		Body:      strings.TrimSpace(body),
		CreatedAt: s.now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, missingOwner(err)
	}

	saved, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	view := newCommentView(saved)
	return &view, nil
}

// Delete lets admins remove any comment and authors remove their own within
// the edit window.
func (s *CommentService) Delete(ctx context.Context, id uuid.UUID, principal domain.Principal) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCommentNotFound
		}
		return err
	}

	if !principal.IsAdmin() {
		if comment.UserID != principal.ID {
			return domain.ErrForbidden
		}
		if !comment.WithinEditWindow(s.now()) {
			return domain.ErrDeleteWindowExceeded
		}
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCommentNotFound
		}
		return err
	}
	return nil
}

func requireRecipe(ctx context.Context, recipes repository.RecipeRepository, id uuid.UUID) error {
	if _, err := recipes.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// missingOwner reports a write rejected by the user foreign key, which happens
// when a still-valid token outlives its account.
func missingOwner(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUserNotFound
	}
	return err
}
