package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"gorm.io/gorm"
)

func createNoticesTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_notices",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(
				&repository.LegalNoticeModel{},
				&repository.NoticeAcknowledgementModel{},
				&repository.NoticeDeliveryModel{},
			); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_notices_notice_code ON legal_notices (notice_code)`,
				`CREATE INDEX IF NOT EXISTS idx_notices_suppression ON legal_notices (loan_account_number, dpd_days, notice_generation_date)`,
				`CREATE INDEX IF NOT EXISTS idx_notices_expiry_due ON legal_notices (expiry_date) WHERE status = 'SENT'`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_acknowledgements_notice_id ON notice_acknowledgements (notice_id)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_acknowledgements_ack_code ON notice_acknowledgements (acknowledgement_code)`,
				`CREATE INDEX IF NOT EXISTS idx_deliveries_notice_id ON notice_deliveries (notice_id)`,
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
				&repository.NoticeDeliveryModel{},
				&repository.NoticeAcknowledgementModel{},
				&repository.LegalNoticeModel{},
			)
		},
	}
}
