package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/dom/shopcook-api/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{service.ErrEmailTaken, http.StatusUnauthorized, "ERR_EMAIL_TAKEN", "Email already registered"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS", "Invalid credentials"},
	{service.ErrInvalidRefresh, http.StatusUnauthorized, "ERR_INVALID_REFRESH", "Invalid refresh token"},
	{service.ErrAccountBlocked, http.StatusForbidden, "ERR_ACCOUNT_BLOCKED", "Account blocked"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, "ERR_INVALID_RESET_TOKEN", "Invalid or expired reset token"},
	{bcrypt.ErrPasswordTooLong, http.StatusBadRequest, response.CodeValidation, "Password must be at most 72 bytes"},
	{service.ErrUserNotFound, http.StatusNotFound, "ERR_USER_NOT_FOUND", "User not found"},
	{service.ErrInvalidStars, http.StatusBadRequest, "ERR_INVALID_STARS", "Stars must be between 1 and 5"},
	{service.ErrCoversDisabled, http.StatusServiceUnavailable, "ERR_COVERS_DISABLED", "Cover uploads are not configured"},
	{storage.ErrUnsupportedImage, http.StatusBadRequest, "ERR_UNSUPPORTED_IMAGE", "Unsupported image type"},
	{domain.ErrRecipeNotFound, http.StatusNotFound, "ERR_RECIPE_NOT_FOUND", "Recipe not found"},
	{domain.ErrCommentNotFound, http.StatusNotFound, "ERR_COMMENT_NOT_FOUND", "Comment not found"},
	{domain.ErrForbidden, http.StatusForbidden, response.CodeForbidden, "Forbidden"},
	{domain.ErrDeleteWindowExceeded, http.StatusForbidden, "ERR_DELETE_WINDOW", "Comments can only be deleted within 10 minutes"},
	{domain.ErrInvalidSteps, http.StatusBadRequest, "ERR_INVALID_STEPS", "At least one step is required"},
	{domain.ErrInvalidIngredients, http.StatusBadRequest, "ERR_INVALID_INGREDIENTS", "At least one ingredient is required"},
	{domain.ErrInvalidIngredient, http.StatusBadRequest, "ERR_INVALID_INGREDIENT", "Invalid ingredient line"},
	{domain.ErrInvalidCategory, http.StatusBadRequest, "ERR_INVALID_CATEGORY", "Unknown category"},
}

// writeError maps a service error to its HTTP status and code. Anything
// unmapped is logged and reported as an internal error.
func writeError(w http.ResponseWriter, op string, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Printf("ERROR [%s] %v", op, err)
			}
			response.Error(w, m.status, m.code, m.message, nil)
			return
		}
	}

	log.Printf("ERROR [%s] %v", op, err)
	response.Error(w, http.StatusInternalServerError, response.CodeInternal, "Internal server error", nil)
}

func unauthorized(w http.ResponseWriter) {
	response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized", nil)
}
