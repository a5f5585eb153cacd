package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
)

type SequenceRepository interface {
	// Increment atomically bumps the counter for one partition key and
	// returns the new value, inserting the row at 1 when absent. Read,
	// increment, and write-back happen in a single statement so two
	// concurrent callers can never observe the same value.
	Increment(ctx context.Context, prefix, category, dateStamp string) (int64, error)
	// Get reads the current counter without allocating.
	Get(ctx context.Context, prefix, category, dateStamp string) (*domain.SequenceCounter, error)
}

type GormSequenceRepo struct {
	db *gorm.DB
}

func NewGormSequenceRepo(db *gorm.DB) *GormSequenceRepo {
	return &GormSequenceRepo{db: db}
}

func (r *GormSequenceRepo) Increment(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
	key := domain.PartitionKey(prefix, category, dateStamp)

	var current int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (partition_key, prefix, category_code, date_stamp, current_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET current_value = sequence_counters.current_value + 1, updated_at = NOW()
		RETURNING current_value`,
		key, prefix, category, dateStamp,
	).Scan(&current).Error
	if err != nil {
		return 0, err
	}

	return current, nil
}

func (r *GormSequenceRepo) Get(ctx context.Context, prefix, category, dateStamp string) (*domain.SequenceCounter, error) {
	var model SequenceCounterModel
	err := r.db.WithContext(ctx).
		First(&model, "partition_key = ?", domain.PartitionKey(prefix, category, dateStamp)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sequenceModelToDomain(&model), nil
}
