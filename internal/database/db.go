package database

import (
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Contact{},
		&model.Box{},
		&model.Document{},
		&model.File{},
		&model.Payment{},
		&model.WhtTracking{},
		&model.InboxDraft{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to auto-migrate models")
	}

	return db, nil
}
