package repositories

import (
	"fmt"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table, index and foreign key of the
// schema. Parents are migrated before the tables that reference them.
func Migrate(db *gorm.DB) error {
	for _, model := range models.All() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto migrate %T: %w", model, err)
		}
	}
	return nil
}
