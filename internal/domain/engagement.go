package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentEditWindow is how long an author may delete their own comment.
const CommentEditWindow = 10 * time.Minute

// AnonymousAuthorName stands in for a comment author that no longer resolves.
const AnonymousAuthorName = "Utilisateur"

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);index;not null"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uuid.UUID `json:"recipeId" gorm:"type:char(36);index;not null"`
	Body      string    `json:"body" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (c *Comment) AuthorName() string {
	if c.User == nil || c.User.DisplayName == "" {
		return AnonymousAuthorName
	}
	return c.User.DisplayName
}

// WithinEditWindow reports whether now is still inside the author's delete window.
func (c *Comment) WithinEditWindow(now time.Time) bool {
	return now.Sub(c.CreatedAt) <= CommentEditWindow
}

type Rating struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_ratings_user_recipe"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uuid.UUID `json:"recipeId" gorm:"type:char(36);not null;uniqueIndex:idx_ratings_user_recipe;index"`
	Stars     int       `json:"stars" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Favorite struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);primaryKey"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uuid.UUID `json:"recipeId" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
}
