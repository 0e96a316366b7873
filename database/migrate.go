package database

import (
	"fmt"

	"colegio_backend/internal/config"
	"colegio_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm opens (and memoizes) the GORM handle from the configured
// DSN.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate migrates every model.
func AutoMigrate() error {
	db, err := ConnectGorm()
	if err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.RefreshToken{},
		&models.Announcement{},
		&models.Event{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageReadReceipt{},
		&models.PickupRequest{},
		&models.Boletin{},
		&models.ReadMarker{},
	)
}
