package repository

import (
	"context"

	"planroom/internal/models"
	"planroom/internal/storage"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByRoom(ctx context.Context, room string) ([]models.Message, error)
}

type messageRepository struct {
	db *storage.PostgresDB
}

func NewMessageRepository(db *storage.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByRoom 依時間升冪回傳房間內所有訊息（含作者）
func (r *messageRepository) FindByRoom(ctx context.Context, room string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("room = ?", room).
		Order("timestamp asc").
		Order("id asc").
		Find(&messages).Error
	return messages, err
}
