package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// PostFavouriteRepository defines the interface for favourite operations
type PostFavouriteRepository interface {
	CreateFavourite(ctx context.Context, fav *models.PostFavourite) error
	Favourite(ctx context.Context, userID, postID uint) (bool, error)
	Unfavourite(ctx context.Context, userID, postID uint) error
	IsFavourite(ctx context.Context, userID, postID uint) (bool, error)
	GetFavouritesByUser(ctx context.Context, userID uint) ([]models.PostFavourite, error)
	GetFavouritePostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
}

// PostgresPostFavouriteRepository implements PostFavouriteRepository
type PostgresPostFavouriteRepository struct {
	db *gorm.DB
}

func NewPostgresPostFavouriteRepository(db *gorm.DB) *PostgresPostFavouriteRepository {
	return &PostgresPostFavouriteRepository{db: db}
}

func (r *PostgresPostFavouriteRepository) CreateFavourite(ctx context.Context, fav *models.PostFavourite) error {
	return classify(r.db.WithContext(ctx).Create(fav).Error)
}

// Favourite adds the post to the user's favourites; a repeat is a no-op
func (r *PostgresPostFavouriteRepository) Favourite(ctx context.Context, userID, postID uint) (bool, error) {
	return insertIgnore(ctx, r.db, &models.PostFavourite{UserID: userID, PostID: postID})
}

func (r *PostgresPostFavouriteRepository) Unfavourite(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostFavourite{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPostFavouriteRepository) IsFavourite(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostFavourite{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, classify(err)
}

func (r *PostgresPostFavouriteRepository) GetFavouritesByUser(ctx context.Context, userID uint) ([]models.PostFavourite, error) {
	var favs []models.PostFavourite
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("post_id").Find(&favs).Error
	return favs, classify(err)
}

func (r *PostgresPostFavouriteRepository) GetFavouritePostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var favs []models.PostFavourite
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&favs).Error
	if err != nil {
		return nil, classify(err)
	}
	for _, f := range favs {
		result[f.PostID] = true
	}
	return result, nil
}
