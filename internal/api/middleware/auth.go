package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// Auth requires a valid access token and stores its principal in the context.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header required", nil)
				return
			}

			token, ok := BearerToken(authHeader)
			if !ok {
				log.Printf("ERROR [middleware.Auth] invalid authorization header format")
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid authorization header", nil)
				return
			}

			principal, err := authService.ValidateToken(service.AccessToken, token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized", nil)
			return
		}
		if !principal.IsAdmin() {
			response.Error(w, http.StatusForbidden, response.CodeForbidden, "Administrator role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(domain.Principal)
	return principal, ok
}
