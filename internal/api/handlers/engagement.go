package handlers

import (
	"net/http"
	"strings"

	"github.com/dom/shopcook-api/internal/api/middleware"
	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type EngagementHandler struct {
	commentService  *service.CommentService
	ratingService   *service.RatingService
	favoriteService *service.FavoriteService
	validate        *validator.Validate
}

func NewEngagementHandler(services *service.Services, validate *validator.Validate) *EngagementHandler {
	return &EngagementHandler{
		commentService:  services.Comment,
		ratingService:   services.Rating,
		favoriteService: services.Favorite,
		validate:        validate,
	}
}

// CreateCommentRequest accepts the text as "body" or, for older clients, "message".
type CreateCommentRequest struct {
	Body    string `json:"body"`
	Message string `json:"message"`
}

type commentText struct {
	Body string `json:"body" validate:"min=3,max=500"`
}

// RateRequest accepts the score as "stars" or "rating".
type RateRequest struct {
	Stars  *int `json:"stars"`
	Rating *int `json:"rating"`
}

func (h *EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	page, err := h.commentService.ListPublic(r.Context(), recipeID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "engagement.ListComments", err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// ListAllComments serves the moderation view, optionally narrowed to one recipe.
func (h *EngagementHandler) ListAllComments(w http.ResponseWriter, r *http.Request) {
	var recipeID *uuid.UUID
	if v := r.URL.Query().Get("recipeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters", map[string]string{"recipeId": "uuid"})
			return
		}
		recipeID = &id
	}

	page, err := h.commentService.ListForAdmin(r.Context(), recipeID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "engagement.ListAllComments", err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *EngagementHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	recipeID, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	text := commentText{Body: strings.TrimSpace(req.Body)}
	if text.Body == "" {
		text.Body = strings.TrimSpace(req.Message)
	}
	if !validate(w, h.validate, &text) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), recipeID, principal, text.Body)
	if err != nil {
		writeError(w, "engagement.CreateComment", err)
		return
	}
	response.JSON(w, http.StatusCreated, comment)
}

func (h *EngagementHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id, ok := pathUUID(w, r, "id", domain.ErrCommentNotFound)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), id, principal); err != nil {
		writeError(w, "engagement.DeleteComment", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *EngagementHandler) Rate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	recipeID, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	var req RateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	stars := req.Stars
	if stars == nil {
		stars = req.Rating
	}
	if stars == nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Validation failed", map[string]string{"stars": "required"})
		return
	}

	result, err := h.ratingService.Rate(r.Context(), recipeID, principal, *stars)
	if err != nil {
		writeError(w, "engagement.Rate", err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *EngagementHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, true)
}

func (h *EngagementHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, false)
}

func (h *EngagementHandler) toggleFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	recipeID, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	if err := h.favoriteService.Toggle(r.Context(), principal.ID, recipeID, favorite); err != nil {
		writeError(w, "engagement.Favorite", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

func (h *EngagementHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	items, err := h.favoriteService.ListForUser(r.Context(), principal.ID)
	if err != nil {
		writeError(w, "engagement.ListFavorites", err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
