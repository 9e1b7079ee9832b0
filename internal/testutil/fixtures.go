package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	displayName string
	password    string
	role        domain.Role
	blocked     bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:       fmt.Sprintf("cook_%s@example.com", suffix),
		displayName: fmt.Sprintf("cook_%s", suffix),
		password:    "testpassword123",
		role:        domain.RoleUser,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// Blocked marks the user as blocked by an administrator
func (b *UserBuilder) Blocked() *UserBuilder {
	b.blocked = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		Role:         b.role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if b.blocked {
		user.BlockedAt = &now
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate stores the user and logs in through the API, returning
// the user and an access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	resp := DoJSON(t, http.MethodPost, ts.APIURL("/auth/login"), "", map[string]string{
		"email":    user.Email,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status code: %d: %s", resp.StatusCode, body)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, authResp.AccessToken
}

// CategoryBuilder creates catalog categories
type CategoryBuilder struct {
	name string
}

func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{name: "Plats"}
}

func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = name
	return b
}

func (b *CategoryBuilder) Build(t *testing.T, db *gorm.DB) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name: b.name,
		Slug: fmt.Sprintf("%s-%s", b.name, uuid.New().String()[:8]),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// RecipeBuilder creates recipes directly in the database
type RecipeBuilder struct {
	author      *domain.User
	title       string
	category    *domain.Category
	prepMinutes int
	cookMinutes int
	difficulty  int
	published   bool
	hidden      bool
	createdAt   time.Time
}

// NewRecipeBuilder creates a new RecipeBuilder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		title:       "Tarte aux pommes",
		prepMinutes: 20,
		cookMinutes: 30,
		difficulty:  domain.DifficultyMedium,
		published:   true,
		createdAt:   time.Now(),
	}
}

func (b *RecipeBuilder) WithAuthor(user *domain.User) *RecipeBuilder {
	b.author = user
	return b
}

func (b *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	b.title = title
	return b
}

func (b *RecipeBuilder) WithCategory(category *domain.Category) *RecipeBuilder {
	b.category = category
	return b
}

// WithTimes sets preparation and cooking minutes
func (b *RecipeBuilder) WithTimes(prep, cook int) *RecipeBuilder {
	b.prepMinutes = prep
	b.cookMinutes = cook
	return b
}

func (b *RecipeBuilder) WithDifficulty(difficulty int) *RecipeBuilder {
	b.difficulty = difficulty
	return b
}

// Draft leaves the recipe unpublished
func (b *RecipeBuilder) Draft() *RecipeBuilder {
	b.published = false
	return b
}

// Hidden marks the recipe as hidden by moderation
func (b *RecipeBuilder) Hidden() *RecipeBuilder {
	b.hidden = true
	return b
}

func (b *RecipeBuilder) CreatedAt(at time.Time) *RecipeBuilder {
	b.createdAt = at
	return b
}

// Build creates the recipe in the database
func (b *RecipeBuilder) Build(t *testing.T, db *gorm.DB) *domain.Recipe {
	t.Helper()

	if b.author == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.author = user
	}

	id := uuid.New()
	recipe := &domain.Recipe{
		ID:          id,
		AuthorID:    b.author.ID,
		Title:       b.title,
		Slug:        fmt.Sprintf("recipe-%s", id.String()[:8]),
		Servings:    4,
		PrepMinutes: b.prepMinutes,
		CookMinutes: b.cookMinutes,
		Difficulty:  b.difficulty,
		Steps:       datatypes.JSONSlice[string]{"Préchauffer le four", "Cuire"},
		IsPublished: b.published,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.createdAt,
	}
	if b.category != nil {
		recipe.CategoryID = &b.category.ID
	}
	if b.hidden {
		hiddenAt := time.Now()
		recipe.HiddenAt = &hiddenAt
	}

	if err := db.Omit("Category", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	return recipe
}

// DoJSON sends body as JSON with an optional bearer token
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	return resp
}
