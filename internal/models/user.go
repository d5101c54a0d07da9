package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:30"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Bio         string    `json:"bio,omitempty"`
	City        string    `json:"city,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Password    string    `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	// Link to Firebase User UID. Empty for local accounts, so the index
	// cannot be unique.
	FirebaseUID string    `json:"firebase_uid,omitempty" gorm:"index;size:128"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the subset of user fields embedded in enriched responses
type UserCompact struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ToCompact returns the compact representation used in feeds and comments
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		PhotoURL: u.PhotoURL,
	}
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=300"`
	City     string `json:"city,omitempty" validate:"omitempty,max=80"`
	PhotoURL string `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
