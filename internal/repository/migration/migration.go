package migration

import (
	"github.com/questx-lab/persuade-agent/internal/entity"
	"gorm.io/gorm"
)

func DoMigration(db *gorm.DB) error {
	return db.AutoMigrate(&entity.WinnerLedgerEntry{})
}
