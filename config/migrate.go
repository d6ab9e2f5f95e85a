package config

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kurakani/kurakani/models"
)

// MigrateDB creates or updates the articles and users tables.
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Article{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
