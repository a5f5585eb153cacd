package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
)

type AcknowledgementRepository interface {
	Create(ctx context.Context, a *domain.NoticeAcknowledgement) error
	GetByNoticeID(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error)
	ExistsForNotice(ctx context.Context, noticeID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.AcknowledgementStatus) error
}

type GormAcknowledgementRepo struct {
	db *gorm.DB
}

func NewGormAcknowledgementRepo(db *gorm.DB) *GormAcknowledgementRepo {
	return &GormAcknowledgementRepo{db: db}
}

func (r *GormAcknowledgementRepo) Create(ctx context.Context, a *domain.NoticeAcknowledgement) error {
	model := ackModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *ackModelToDomain(model)
	}
	return nil
}

func (r *GormAcknowledgementRepo) GetByNoticeID(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error) {
	var model NoticeAcknowledgementModel
	err := r.db.WithContext(ctx).
		Where("notice_id = ?", noticeID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ackModelToDomain(&model), nil
}

func (r *GormAcknowledgementRepo) ExistsForNotice(ctx context.Context, noticeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NoticeAcknowledgementModel{}).
		Where("notice_id = ?", noticeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormAcknowledgementRepo) UpdateStatus(ctx context.Context, id string, status domain.AcknowledgementStatus) error {
	result := r.db.WithContext(ctx).
		Model(&NoticeAcknowledgementModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
