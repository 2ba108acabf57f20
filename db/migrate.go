package db

import (
	"gorm.io/gorm"

	"github.com/servease/marketplace/models"
)

// Migrate applies the schema. Run explicitly via the "migrate" command, never
// at server startup.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Service{},
		&models.ServiceImage{},
		&models.Booking{},
		&models.Review{},
	)
}
