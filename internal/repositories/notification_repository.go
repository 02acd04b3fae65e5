package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID uint, name string, data interface{}) (*models.Notification, error)
	GetNotificationByID(ctx context.Context, id uint) (*models.Notification, error)
	GetByUserID(ctx context.Context, userID uint, since float64) ([]models.Notification, error)
	GetPayload(ctx context.Context, id uint) (datatypes.JSON, error)
	DeleteNotification(ctx context.Context, id uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateNotification encodes data as the payload and stores it for the user
func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, userID uint, name string, data interface{}) (*models.Notification, error) {
	n := &models.Notification{UserID: userID, Name: name}
	if err := n.SetData(data); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, classify(err)
	}
	return n, nil
}

func (r *postgresNotificationRepository) GetNotificationByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, classify(err)
	}
	return &n, nil
}

// GetByUserID returns the notifications of a user newer than since (unix seconds), oldest first
func (r *postgresNotificationRepository) GetByUserID(ctx context.Context, userID uint, since float64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(clause.Gt{Column: clause.Column{Name: "timestamp"}, Value: since}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Find(&notifications).Error
	return notifications, classify(err)
}

// GetPayload loads a notification and decodes its payload. A malformed
// payload yields models.ErrPayloadDecode.
func (r *postgresNotificationRepository) GetPayload(ctx context.Context, id uint) (datatypes.JSON, error) {
	n, err := r.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.RawData()
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
