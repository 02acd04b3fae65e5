package repositories

import (
	"context"
	"time"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines the interface for private message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id uint) (*models.Message, error)
	GetConversation(ctx context.Context, userA, userB uint) ([]models.Message, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id uint) error
	DeleteMessage(ctx context.Context, id uint) error
}

type postgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := models.Validate(msg); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *postgresMessageRepository) GetMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, classify(err)
	}
	return &msg, nil
}

// GetConversation returns the messages exchanged between two users in both directions, oldest first
func (r *postgresMessageRepository) GetConversation(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order("id").
		Find(&msgs).Error
	return msgs, classify(err)
}

func (r *postgresMessageRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where(map[string]interface{}{"recipient_id": recipientID, "read": false}).
		Count(&count).Error
	return count, classify(err)
}

// MarkAsRead flags a message read and records when
func (r *postgresMessageRepository) MarkAsRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "read_time": time.Now()})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresMessageRepository) DeleteMessage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
