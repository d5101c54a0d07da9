package repositories

import (
	"time"

	"github.com/patinhas-app/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetThread(userA, userB uint, limit int) ([]models.Message, error)
	GetConversations(userID uint) ([]models.Conversation, error)
	MarkThreadRead(recipientID, senderID uint) error
	GetUnreadCount(userID uint) (int64, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetThread retrieves the newest messages exchanged between two users
func (r *PostgresMessageRepository) GetThread(userA, userB uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Order("created_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// GetConversations summarizes the latest message per counterpart
func (r *PostgresMessageRepository) GetConversations(userID uint) ([]models.Conversation, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").Find(&messages).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]*models.Conversation)
	var order []uint
	for _, m := range messages {
		other := m.SenderID
		if other == userID {
			other = m.RecipientID
		}
		conv, ok := seen[other]
		if !ok {
			conv = &models.Conversation{
				OtherUserID: other,
				LastMessage: m.Content,
				LastSentAt:  m.CreatedAt,
			}
			seen[other] = conv
			order = append(order, other)
		}
		if m.RecipientID == userID && m.ReadAt == nil {
			conv.UnreadCount++
		}
	}

	conversations := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, *seen[id])
	}
	return conversations, nil
}

// MarkThreadRead marks every unread message from sender to recipient as read
func (r *PostgresMessageRepository) MarkThreadRead(recipientID, senderID uint) error {
	now := time.Now()
	return r.db.Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND read_at IS NULL", recipientID, senderID).
		Update("read_at", &now).Error
}

func (r *PostgresMessageRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).Count(&count).Error
	return count, err
}
