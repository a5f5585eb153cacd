package repository

import (
	"context"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.NoticeDelivery) error
	GetByNoticeID(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error)
}

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) Create(ctx context.Context, d *domain.NoticeDelivery) error {
	model := deliveryModelFromDomain(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if d != nil {
		*d = *deliveryModelToDomain(model)
	}
	return nil
}

func (r *GormDeliveryRepo) GetByNoticeID(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error) {
	var models []NoticeDeliveryModel
	err := r.db.WithContext(ctx).
		Where("notice_id = ?", noticeID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	deliveries := make([]domain.NoticeDelivery, 0, len(models))
	for i := range models {
		deliveries = append(deliveries, *deliveryModelToDomain(&models[i]))
	}

	return deliveries, nil
}
