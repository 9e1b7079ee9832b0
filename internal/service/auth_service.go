package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dom/shopcook-api/internal/config"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/mailer"
	"github.com/dom/shopcook-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrAccountBlocked     = errors.New("account blocked")
	ErrInvalidToken       = errors.New("invalid token")
)

type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

const resetTokenBytes = 32

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	mailer    mailer.Mailer
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, resetRepo repository.PasswordResetRepository, m mailer.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    m,
		cfg:       cfg,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Email                string
	Password             string
	DisplayName          string
	PrivacyPolicyVersion string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	version := input.PrivacyPolicyVersion
	if version == "" {
		version = s.cfg.PrivacyVersion
	}
	now := s.now()

	user := &domain.User{
		ID:                   uuid.New(),
		Email:                email,
		PasswordHash:         string(hashedPassword),
		DisplayName:          strings.TrimSpace(input.DisplayName),
		Role:                 domain.RoleUser,
		PrivacyAcceptedAt:    &now,
		PrivacyPolicyVersion: &version,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.generateTokens(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	return s.generateTokens(user)
}

// Refresh reissues both tokens for the principal of a verified refresh token.
// Claims are rebuilt from the stored user so role or name changes take effect.
func (s *AuthService) Refresh(ctx context.Context, principal domain.Principal) (*AuthResult, error) {
	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	return s.generateTokens(user)
}

func (s *AuthService) generateTokens(user *domain.User) (*AuthResult, error) {
	accessToken, err := s.signToken(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) signToken(user *domain.User, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies signature and expiry against the secret of the given
// kind and returns the principal it carries.
func (s *AuthService) ValidateToken(kind TokenKind, tokenString string) (*domain.Principal, error) {
	secret := s.cfg.JWTSecret
	if kind == RefreshToken {
		secret = s.cfg.RefreshSecret
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", ErrInvalidToken, err)
	}

	return &domain.Principal{
		ID:          userID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	}, nil
}

// RequestPasswordReset issues a reset token when the email is known and
// returns the raw token, or "" for an unknown email. Callers must not reveal
// which case occurred.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	rawToken := hex.EncodeToString(raw)
	now := s.now()

	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Replace(ctx, token); err != nil {
		return "", err
	}

	msg := mailer.PasswordResetMessage(user.Email, s.cfg.AppURL, rawToken)
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("ERROR [service.RequestPasswordReset] failed to send reset mail to %s: %v", user.Email, err)
	}

	return rawToken, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	token, err := s.resetRepo.GetByHash(ctx, hashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	now := s.now()
	if !token.Usable(now) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.resetRepo.Complete(ctx, token, string(hashedPassword), now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
