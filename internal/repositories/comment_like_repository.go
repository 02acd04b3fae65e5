package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	LikeComment(ctx context.Context, commentID, userID uint) (bool, error)
	DeleteCommentLike(ctx context.Context, commentID, userID uint) error
	HasUserLikedComment(ctx context.Context, commentID, userID uint) (bool, error)
	GetLikesCount(ctx context.Context, commentID uint) (int64, error)
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return classify(r.db.WithContext(ctx).Create(like).Error)
}

// LikeComment records the like unless it is already there
func (r *postgresCommentLikeRepository) LikeComment(ctx context.Context, commentID, userID uint) (bool, error) {
	return insertIgnore(ctx, r.db, &models.CommentLike{UserID: userID, CommentID: commentID})
}

func (r *postgresCommentLikeRepository) DeleteCommentLike(ctx context.Context, commentID, userID uint) error {
	res := r.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresCommentLikeRepository) HasUserLikedComment(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ? AND user_id = ?", commentID, userID).Count(&count).Error
	return count > 0, classify(err)
}

func (r *postgresCommentLikeRepository) GetLikesCount(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, classify(err)
}
