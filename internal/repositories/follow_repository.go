package repositories

import (
	"context"
	"fmt"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follower) error
	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
}

// PostgresFollowRepository implements FollowRepository on top of gorm
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts the edge as a new row. An existing pair fails with
// ErrIntegrityViolation.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follower) error {
	return classify(r.db.WithContext(ctx).Create(follow).Error)
}

// Follow affirms that followerID follows followedID. Re-affirming an
// existing edge is a no-op; the returned bool tells whether a row was added.
func (r *PostgresFollowRepository) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, fmt.Errorf("%w: user %d cannot follow themselves", ErrInvalidKey, followerID)
	}
	return insertIgnore(ctx, r.db, &models.Follower{FollowerID: followerID, FollowedID: followedID})
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followedID uint) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follower{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follower{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Model(&models.Follower{}).Select("follower_id").Where("followed_id = ?", userID),
	).Order("id").Find(&users).Error
	return users, classify(err)
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Model(&models.Follower{}).Select("followed_id").Where("follower_id = ?", userID),
	).Order("id").Find(&users).Error
	return users, classify(err)
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follower{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, classify(err)
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follower{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, classify(err)
}

// insertIgnore inserts row unless a row with the same primary key exists.
// Foreign-key failures are still reported.
func insertIgnore(ctx context.Context, db *gorm.DB, row interface{}) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}
