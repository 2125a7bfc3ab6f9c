package database

import (
	"fmt"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"
	"workhub-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnection opens the application database
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables of every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&authdomain.User{}, &workdomain.WorkItem{}, &workdomain.WorkThread{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
