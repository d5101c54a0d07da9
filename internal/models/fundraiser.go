package models

import "time"

// Fundraiser is a donation campaign for a pet (PostgreSQL). RaisedCents only
// moves when the payment gateway confirms a donation; counter fields are
// maintained by the counter maintainer.
type Fundraiser struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index"`
	PetListingID  *uint     `json:"pet_listing_id,omitempty" gorm:"index"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	GoalCents     int64     `json:"goal_cents"`
	RaisedCents   int64     `json:"raised_cents" gorm:"default:0"`
	Active        bool      `json:"active" gorm:"default:true;index"`
	LikesCount    int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateFundraiserRequest defines the request body for opening a campaign
type CreateFundraiserRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=120"`
	Description  string `json:"description" validate:"required,min=1,max=3000"`
	GoalCents    int64  `json:"goal_cents" validate:"required,min=100"`
	PetListingID *uint  `json:"pet_listing_id,omitempty"`
}
