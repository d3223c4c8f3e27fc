package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/betagate/internal/models"
)

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.BetaInvite{},
	)
}
