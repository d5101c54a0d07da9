package models

import "time"

// InteractionKind names the action a user performed against a subject.
type InteractionKind string

const (
	KindLike    InteractionKind = "like"
	KindSave    InteractionKind = "save"
	KindComment InteractionKind = "comment"
)

// SubjectType discriminates which kind of content an interaction targets.
type SubjectType string

const (
	SubjectPost       SubjectType = "post"
	SubjectPet        SubjectType = "pet"
	SubjectFundraiser SubjectType = "fundraiser"
	SubjectComment    SubjectType = "comment"
)

// Interaction is one like, save or comment made by a user against a content
// item. Likes and saves are presence/absence relations: the partial unique
// index keeps at most one row per (user, subject, kind) tuple. Comments may
// repeat, so the index excludes them.
type Interaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;uniqueIndex:idx_user_subject_kind"`
	SubjectType SubjectType     `json:"subject_type" gorm:"size:20;index:idx_subject;uniqueIndex:idx_user_subject_kind"`
	SubjectID   string          `json:"subject_id" gorm:"size:64;index:idx_subject;uniqueIndex:idx_user_subject_kind"`
	Kind        InteractionKind `json:"kind" gorm:"size:10;index:idx_subject;uniqueIndex:idx_user_subject_kind,where:kind <> 'comment'"`
	Payload     string          `json:"payload,omitempty"` // comment body, empty for like/save
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
}

// CreateCommentRequest defines the request body for posting a comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentView is a comment joined with its author, as returned by the API
type CommentView struct {
	ID           uint      `json:"id"`
	Content      string    `json:"content"`
	UserID       uint      `json:"userId"`
	Username     string    `json:"username"`
	UserPhotoURL string    `json:"userPhotoUrl"`
	LikesCount   int64     `json:"likesCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
