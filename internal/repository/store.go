package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates the entity repositories and exposes a shared transaction
// boundary. Orchestrator operations that must be atomic across repositories
// (sequence allocation + entity insert, acknowledgement insert + notice
// status flip) run inside Transaction, where every repository obtained from
// the inner Store is bound to the same database transaction.
type Store interface {
	Sequences() SequenceRepository
	Codes() CodeRegistry
	Lawyers() LawyerRepository
	Cases() CaseRepository
	Notices() NoticeRepository
	Acknowledgements() AcknowledgementRepository
	Deliveries() DeliveryRepository

	Transaction(ctx context.Context, fn func(Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Sequences() SequenceRepository { return NewGormSequenceRepo(s.db) }

func (s *GormStore) Codes() CodeRegistry { return NewGormCodeRegistry(s.db) }

func (s *GormStore) Lawyers() LawyerRepository { return NewGormLawyerRepo(s.db) }

func (s *GormStore) Cases() CaseRepository { return NewGormCaseRepo(s.db) }

func (s *GormStore) Notices() NoticeRepository { return NewGormNoticeRepo(s.db) }

func (s *GormStore) Acknowledgements() AcknowledgementRepository {
	return NewGormAcknowledgementRepo(s.db)
}

func (s *GormStore) Deliveries() DeliveryRepository { return NewGormDeliveryRepo(s.db) }

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
