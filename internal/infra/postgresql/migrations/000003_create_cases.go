package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"gorm.io/gorm"
)

func createCasesTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_cases",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.LegalCaseModel{}, &repository.CaseAssignmentModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_legal_cases_case_code ON legal_cases (case_code)`,
				`CREATE INDEX IF NOT EXISTS idx_legal_cases_loan_account ON legal_cases (loan_account_number)`,
				`CREATE INDEX IF NOT EXISTS idx_assignments_case_status ON case_assignments (case_id, status)`,
				// One ACTIVE assignment per case, enforced against concurrent
				// first assignments where there is no existing row to lock.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_case_active ON case_assignments (case_id) WHERE status = 'ACTIVE'`,
				`CREATE INDEX IF NOT EXISTS idx_assignments_lawyer ON case_assignments (lawyer_id) WHERE status = 'ACTIVE'`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&repository.CaseAssignmentModel{},
				&repository.LegalCaseModel{},
			)
		},
	}
}
