package database

import (
	"fmt"
	"time"

	"github.com/Desla-ai/Doeum/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	log.Info("Database connection established successfully")
	return db, nil
}

// Config returns the gorm settings shared by the server and tests.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Marketplace models
	marketplaceModels := []interface{}{
		&models.Request{},
		&models.Proposal{},
		&models.Order{},
		&models.WorkEvent{},
		&models.PaymentTransaction{},
	}

	// User-owned models
	userModels := []interface{}{
		&models.Profile{},
		&models.Address{},
	}

	// Chat models
	chatModels := []interface{}{
		&models.ChatThread{},
		&models.ChatMember{},
		&models.ChatMessage{},
	}

	for _, group := range [][]interface{}{marketplaceModels, userModels, chatModels} {
		for _, model := range group {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("migrate %T: %w", model, err)
			}
		}
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
