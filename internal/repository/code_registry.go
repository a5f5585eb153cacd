package repository

import (
	"context"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
)

// CodeRegistry answers whether a fully formatted identifier already exists in
// the entity table that owns its prefix. Defense-in-depth against formatting
// bugs, independent of the counter rows.
type CodeRegistry interface {
	Exists(ctx context.Context, prefix, code string) (bool, error)
}

type GormCodeRegistry struct {
	db *gorm.DB
}

func NewGormCodeRegistry(db *gorm.DB) *GormCodeRegistry {
	return &GormCodeRegistry{db: db}
}

func (r *GormCodeRegistry) Exists(ctx context.Context, prefix, code string) (bool, error) {
	type probe struct {
		model  any
		column string
	}

	var probes []probe
	switch prefix {
	case domain.PrefixCase:
		probes = []probe{{&LegalCaseModel{}, "case_code"}}
	case domain.PrefixNotice:
		probes = []probe{{&LegalNoticeModel{}, "notice_code"}}
	case domain.PrefixAcknowledgement:
		probes = []probe{{&NoticeAcknowledgementModel{}, "acknowledgement_code"}}
	case domain.PrefixLawyer:
		probes = []probe{{&LawyerModel{}, "code"}}
	default:
		// Unknown prefix: scan every code column.
		probes = []probe{
			{&LegalCaseModel{}, "case_code"},
			{&LegalNoticeModel{}, "notice_code"},
			{&NoticeAcknowledgementModel{}, "acknowledgement_code"},
			{&LawyerModel{}, "code"},
		}
	}

	for _, p := range probes {
		var count int64
		err := r.db.WithContext(ctx).
			Model(p.model).
			Where(p.column+" = ?", code).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}

	return false, nil
}
