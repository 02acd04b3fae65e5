package repositories

import (
	"context"
	"time"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository on top of gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost inserts a post; an unknown author fails with ErrIntegrityViolation
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := models.Validate(post); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(post).Error)
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, classify(err)
	}
	return &post, nil
}

// GetPostsByUserID retrieves the posts of one author, newest first
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

// UpdatePost saves an existing post and stamps last_update_time
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := models.Validate(post); err != nil {
		return err
	}
	post.LastUpdateTime = time.Now()
	return classify(r.db.WithContext(ctx).Save(post).Error)
}

// DeletePost removes a post together with its comments, view records and
// favourite records.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return classify(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
