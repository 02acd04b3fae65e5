package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotifyRepository defines the interface for notify record operations
type NotifyRepository interface {
	CreateNotify(ctx context.Context, n *models.Notify) error
	GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notify, int64, error)
	DeleteNotify(ctx context.Context, id uint) error
}

type postgresNotifyRepository struct {
	db *gorm.DB
}

func NewPostgresNotifyRepository(db *gorm.DB) NotifyRepository {
	return &postgresNotifyRepository{db: db}
}

func (r *postgresNotifyRepository) CreateNotify(ctx context.Context, n *models.Notify) error {
	if err := models.Validate(n); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(n).Error)
}

func (r *postgresNotifyRepository) GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notify, int64, error) {
	var notifies []models.Notify
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notify{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	err := db.Where("recipient_id = ?", recipientID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Offset(offset).Limit(limit).
		Find(&notifies).Error

	return notifies, total, classify(err)
}

func (r *postgresNotifyRepository) DeleteNotify(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notify{}, id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
