package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email                string     `json:"email" gorm:"size:190;uniqueIndex;not null"`
	PasswordHash         string     `json:"-" gorm:"size:255;not null"`
	DisplayName          string     `json:"displayName" gorm:"size:120;not null"`
	Role                 Role       `json:"role" gorm:"size:16;not null"`
	BlockedAt            *time.Time `json:"blockedAt"`
	PrivacyAcceptedAt    *time.Time `json:"privacyAcceptedAt"`
	PrivacyPolicyVersion *string    `json:"privacyPolicyVersion" gorm:"size:32"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (u *User) IsBlocked() bool {
	return u.BlockedAt != nil
}

func (u *User) Principal() Principal {
	return Principal{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// Principal is the authenticated caller as carried by a verified token.
type Principal struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Role        Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanModify reports whether the caller may mutate a resource owned by authorID.
func (p Principal) CanModify(authorID uuid.UUID) bool {
	return p.IsAdmin() || p.ID == authorID
}

// PasswordResetToken stores only the SHA-256 hex digest of the token handed to the user.
type PasswordResetToken struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:char(36);index;not null"`
	User      *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TokenHash string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
