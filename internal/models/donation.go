package models

import "time"

// Donation statuses, mirroring the gateway's payment lifecycle
const (
	DonationPending = "pending"
	DonationPaid    = "paid"
	DonationFailed  = "failed"
)

// Donation is one monetary contribution to a fundraiser (PostgreSQL). A row
// is created in pending state together with the gateway payment; the webhook
// moves it to paid or failed.
type Donation struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FundraiserID   uint      `json:"fundraiser_id" gorm:"index"`
	UserID         uint      `json:"user_id" gorm:"index"`
	AmountCents    int64     `json:"amount_cents"`
	Message        string    `json:"message,omitempty"`
	Status         string    `json:"status" gorm:"size:20;default:'pending';index"`
	PaymentID      string    `json:"payment_id" gorm:"uniqueIndex;size:64"` // gateway payment intent id
	IdempotencyKey string    `json:"-" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateDonationRequest defines the request body for donating to a fundraiser
type CreateDonationRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,min=100"`
	Message     string `json:"message,omitempty" validate:"omitempty,max=300"`
}
