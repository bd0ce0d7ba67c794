package database

import "capstone/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Student{},
		&models.Supervisor{},
		&models.PartnershipRequest{},
		&models.Application{},
	}
}
