package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context, offset, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	DeleteUser(ctx context.Context, id uint) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository on top of gorm
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a user. A username or email that is already taken
// fails with ErrIntegrityViolation.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := models.Validate(user); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by primary key
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, the identity the session layer keys on
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

// GetUsers lists users ordered by id
func (r *PostgresUserRepository) GetUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// UpdateUser saves every column of an existing user
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := models.Validate(user); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Save(user).Error)
}

// SetRole changes only the role column, so rows that predate the current
// validation rules can still be promoted or demoted.
func (r *PostgresUserRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("role", role)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user. Posts, comments, messages in both directions,
// notifications, notify records and every join-table row of the user go
// with it through the ON DELETE CASCADE foreign keys, inside one transaction.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	return classify(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

// SearchUsers searches users by username or email (case-insensitive)
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}
