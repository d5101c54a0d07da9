package models

import "time"

// Message is one direct message between two users (PostgreSQL)
type Message struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"sender_id" gorm:"index:idx_msg_pair"`
	RecipientID uint       `json:"recipient_id" gorm:"index:idx_msg_pair"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Conversation summarizes the latest exchange with one other user
type Conversation struct {
	OtherUserID uint      `json:"other_user_id"`
	LastMessage string    `json:"last_message"`
	LastSentAt  time.Time `json:"last_sent_at"`
	UnreadCount int64     `json:"unread_count"`
}
