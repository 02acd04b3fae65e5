package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// PostViewRepository defines the interface for post view records
type PostViewRepository interface {
	CreateView(ctx context.Context, view *models.PostView) error
	RecordView(ctx context.Context, userID, postID uint) (bool, error)
	HasViewed(ctx context.Context, userID, postID uint) (bool, error)
	GetViewsCount(ctx context.Context, postID uint) (int64, error)
}

type postgresPostViewRepository struct {
	db *gorm.DB
}

func NewPostgresPostViewRepository(db *gorm.DB) PostViewRepository {
	return &postgresPostViewRepository{db: db}
}

// CreateView inserts a view record; a repeated pair fails with ErrIntegrityViolation
func (r *postgresPostViewRepository) CreateView(ctx context.Context, view *models.PostView) error {
	return classify(r.db.WithContext(ctx).Create(view).Error)
}

// RecordView marks the post as viewed by the user; repeated views are no-ops
func (r *postgresPostViewRepository) RecordView(ctx context.Context, userID, postID uint) (bool, error) {
	return insertIgnore(ctx, r.db, &models.PostView{UserID: userID, PostID: postID})
}

func (r *postgresPostViewRepository) HasViewed(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostView{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, classify(err)
}

func (r *postgresPostViewRepository) GetViewsCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostView{}).Where("post_id = ?", postID).Count(&count).Error
	return count, classify(err)
}
