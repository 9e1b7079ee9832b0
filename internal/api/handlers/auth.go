package handlers

import (
	"net/http"

	"github.com/dom/shopcook-api/internal/api/middleware"
	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	exposeReset bool
}

// NewAuthHandler builds the auth endpoints. With exposeReset set, the raw
// reset token is echoed by forgot-password so it can be used without mail.
func NewAuthHandler(authService *service.AuthService, validate *validator.Validate, exposeReset bool) *AuthHandler {
	return &AuthHandler{authService: authService, validate: validate, exposeReset: exposeReset}
}

type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email,max=190"`
	Password             string `json:"password" validate:"required,min=8,password"`
	DisplayName          string `json:"displayName" validate:"required,min=3,max=120"`
	PrivacyAccepted      bool   `json:"privacyAccepted" validate:"required"`
	PrivacyPolicyVersion string `json:"privacyPolicyVersion" validate:"required,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,password"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

func newAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:         newUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:                req.Email,
		Password:             req.Password,
		DisplayName:          req.DisplayName,
		PrivacyPolicyVersion: req.PrivacyPolicyVersion,
	})
	if err != nil {
		writeError(w, "auth.Register", err)
		return
	}

	response.JSON(w, http.StatusCreated, newAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "auth.Login", err)
		return
	}

	response.JSON(w, http.StatusOK, newAuthResponse(result))
}

// Refresh accepts the refresh token as a bearer header or in the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		var req RefreshRequest
		if !decode(w, r, h.validate, &req) {
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		writeError(w, "auth.Refresh", service.ErrInvalidRefresh)
		return
	}

	principal, err := h.authService.ValidateToken(service.RefreshToken, token)
	if err != nil {
		writeError(w, "auth.Refresh", service.ErrInvalidRefresh)
		return
	}

	result, err := h.authService.Refresh(r.Context(), *principal)
	if err != nil {
		writeError(w, "auth.Refresh", err)
		return
	}

	response.JSON(w, http.StatusOK, newAuthResponse(result))
}

// ForgotPassword answers identically whether or not the email is known.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	token, err := h.authService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, "auth.ForgotPassword", err)
		return
	}

	resp := map[string]interface{}{"success": true}
	if h.exposeReset && token != "" {
		resp["resetToken"] = token
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, "auth.ResetPassword", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout is stateless; clients drop their tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
