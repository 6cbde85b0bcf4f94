package database

import (
	"log"

	"gradation-backend/internal/config"
	"gradation-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("database connected, migration complete")
}

// Migrate runs AutoMigrate for every model. Split out of Init so tests
// can run it against their own handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CodeMaster{},
		&models.DocCounter{},
		&models.AuditLog{},
		// pipeline ledger
		&models.WorkOrder{},
		&models.ReturnBatch{},
		&models.Transfer{},
		// generic ledger (replay target)
		&models.Lot{},
		&models.LotShipment{},
		&models.ProcessingRecord{},
	)
}
