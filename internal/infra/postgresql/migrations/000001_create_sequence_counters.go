package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"gorm.io/gorm"
)

func createSequenceCountersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_sequence_counters",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.SequenceCounterModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SequenceCounterModel{})
		},
	}
}
