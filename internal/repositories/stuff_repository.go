package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StuffRepository defines the interface for named content records
type StuffRepository interface {
	CreateStuff(ctx context.Context, s *models.Stuff) error
	GetStuffByName(ctx context.Context, name string) (*models.Stuff, error)
	PutStuff(ctx context.Context, name, content string) (*models.Stuff, error)
	DeleteStuff(ctx context.Context, name string) error
}

type postgresStuffRepository struct {
	db *gorm.DB
}

func NewPostgresStuffRepository(db *gorm.DB) StuffRepository {
	return &postgresStuffRepository{db: db}
}

// CreateStuff inserts a record; a taken name fails with ErrIntegrityViolation
func (r *postgresStuffRepository) CreateStuff(ctx context.Context, s *models.Stuff) error {
	if err := models.Validate(s); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(s).Error)
}

func (r *postgresStuffRepository) GetStuffByName(ctx context.Context, name string) (*models.Stuff, error) {
	var s models.Stuff
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error; err != nil {
		return nil, classify(err)
	}
	return &s, nil
}

// PutStuff creates the named record or replaces its content
func (r *postgresStuffRepository) PutStuff(ctx context.Context, name, content string) (*models.Stuff, error) {
	s := &models.Stuff{Name: name, Content: content}
	if err := models.Validate(s); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"content"}),
	}).Create(s).Error
	if err != nil {
		return nil, classify(err)
	}
	return r.GetStuffByName(ctx, name)
}

func (r *postgresStuffRepository) DeleteStuff(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Stuff{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
