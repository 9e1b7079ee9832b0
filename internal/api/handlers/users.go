package handlers

import (
	"net/http"

	"github.com/dom/shopcook-api/internal/api/middleware"
	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService *service.UserService
	validate    *validator.Validate
}

func NewUserHandler(userService *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{userService: userService, validate: validate}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=3,max=120"`
	Email       *string `json:"email" validate:"omitempty,email,max=190"`
}

type AdminUpdateUserRequest struct {
	DisplayName *string      `json:"displayName" validate:"omitempty,min=3,max=120"`
	Email       *string      `json:"email" validate:"omitempty,email,max=190"`
	Role        *domain.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Blocked     *bool        `json:"blocked"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	user, err := h.userService.GetByID(r.Context(), principal.ID)
	if err != nil {
		writeError(w, "users.Me", err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req UpdateProfileRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), principal.ID, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		writeError(w, "users.UpdateMe", err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) ExportMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	export, err := h.userService.Export(r.Context(), principal.ID)
	if err != nil {
		writeError(w, "users.ExportMe", err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="shopcook-export.json"`)
	response.JSON(w, http.StatusOK, export)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	if err := h.userService.Delete(r.Context(), principal.ID); err != nil {
		writeError(w, "users.DeleteMe", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.userService.List(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "users.List", err)
		return
	}

	response.JSON(w, http.StatusOK, page)
}

func (h *UserHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req AdminUpdateUserRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	user, err := h.userService.AdminUpdate(r.Context(), id, service.AdminUpdateInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
		Blocked:     req.Blocked,
	})
	if err != nil {
		writeError(w, "users.AdminUpdate", err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		writeError(w, "users.AdminDelete", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
