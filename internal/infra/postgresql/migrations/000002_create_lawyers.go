package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"gorm.io/gorm"
)

func createLawyersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_lawyers",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.LawyerModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_lawyers_code ON lawyers (code)`,
				`CREATE INDEX IF NOT EXISTS idx_lawyers_eligibility ON lawyers (current_case_load, success_rate_percent) WHERE is_active AND is_available`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.LawyerModel{})
		},
	}
}
