package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// MessageRepository handles persistence for the family message board.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	List(ctx context.Context, limit, offset int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) List(ctx context.Context, limit, offset int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
