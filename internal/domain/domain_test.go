package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"easy", DifficultyEasy, true},
		{"Medium", DifficultyMedium, true},
		{" HARD ", DifficultyHard, true},
		{"1", 1, true},
		{"5", 5, true},
		{"0", 0, false},
		{"6", 0, false},
		{"extreme", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDifficulty(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageBounds_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		bounds    PageBounds
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"recipe defaults", RecipePageBounds, 0, 0, 1, 12},
		{"recipe cap", RecipePageBounds, 3, 500, 3, 100},
		{"comment defaults", CommentPageBounds, -1, 0, 1, 10},
		{"comment cap", CommentPageBounds, 2, 51, 2, 50},
		{"user defaults", UserPageBounds, 1, 0, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := tt.bounds.Normalize(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}

	assert.Equal(t, 24, Offset(3, 12))
}

func TestRecipe_Status(t *testing.T) {
	now := time.Now()

	assert.Equal(t, RecipeStatusPublished, (&Recipe{IsPublished: true}).Status())
	assert.Equal(t, RecipeStatusDraft, (&Recipe{IsPublished: false}).Status())
	assert.Equal(t, RecipeStatusHidden, (&Recipe{IsPublished: true, HiddenAt: &now}).Status())
	assert.Equal(t, 35, (&Recipe{PrepMinutes: 20, CookMinutes: 15}).TotalMinutes())
}

func TestPrincipal_CanModify(t *testing.T) {
	owner := uuid.New()

	assert.True(t, Principal{ID: owner, Role: RoleUser}.CanModify(owner))
	assert.False(t, Principal{ID: uuid.New(), Role: RoleUser}.CanModify(owner))
	assert.True(t, Principal{ID: uuid.New(), Role: RoleAdmin}.CanModify(owner))
}

func TestComment_EditWindowAndAuthor(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &Comment{CreatedAt: created}

	assert.True(t, c.WithinEditWindow(created.Add(9*time.Minute)))
	assert.True(t, c.WithinEditWindow(created.Add(CommentEditWindow)))
	assert.False(t, c.WithinEditWindow(created.Add(11*time.Minute)))

	assert.Equal(t, AnonymousAuthorName, c.AuthorName())
	c.User = &User{DisplayName: "Chef"}
	assert.Equal(t, "Chef", c.AuthorName())
}

func TestPasswordResetToken_Usable(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Minute)

	assert.True(t, (&PasswordResetToken{ExpiresAt: now.Add(time.Hour)}).Usable(now))
	assert.False(t, (&PasswordResetToken{ExpiresAt: now.Add(-time.Second)}).Usable(now))
	assert.False(t, (&PasswordResetToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}).Usable(now))
}
