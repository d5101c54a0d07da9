package models

import "time"

// Pet listing categories
const (
	PetListingLost     = "lost"
	PetListingFound    = "found"
	PetListingAdoption = "adoption"
)

// PetListing is a lost/found/adoption announcement (PostgreSQL).
// Counter fields are maintained exclusively by the counter maintainer.
type PetListing struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index"`
	Category      string    `json:"category" gorm:"size:20;index"` // lost, found, adoption
	Name          string    `json:"name"`
	Species       string    `json:"species" gorm:"size:30;index"` // dog, cat, ...
	Breed         string    `json:"breed,omitempty"`
	Description   string    `json:"description"`
	City          string    `json:"city" gorm:"size:80;index"`
	PhotoURLs     []string  `json:"photo_urls,omitempty" gorm:"serializer:json"`
	Resolved      bool      `json:"resolved" gorm:"default:false;index"`
	LikesCount    int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreatePetListingRequest defines the request body for creating a listing
type CreatePetListingRequest struct {
	Category    string   `json:"category" validate:"required,oneof=lost found adoption"`
	Name        string   `json:"name" validate:"required,min=1,max=60"`
	Species     string   `json:"species" validate:"required,min=2,max=30"`
	Breed       string   `json:"breed,omitempty" validate:"omitempty,max=60"`
	Description string   `json:"description" validate:"required,min=1,max=2000"`
	City        string   `json:"city" validate:"required,min=2,max=80"`
	PhotoURLs   []string `json:"photo_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdatePetListingRequest defines the request body for updating a listing
type UpdatePetListingRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=1,max=60"`
	Breed       string   `json:"breed,omitempty" validate:"omitempty,max=60"`
	Description string   `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	City        string   `json:"city,omitempty" validate:"omitempty,min=2,max=80"`
	PhotoURLs   []string `json:"photo_urls,omitempty" validate:"omitempty,dive,url"`
}
