package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoticeListParams filters notice listings.
type NoticeListParams struct {
	Status            *domain.NoticeStatus
	LoanAccountNumber string
	From              *time.Time
	To                *time.Time
	Page              int
	PageSize          int
}

type NoticeRepository interface {
	Create(ctx context.Context, n *domain.LegalNotice) error
	GetByID(ctx context.Context, id string) (*domain.LegalNotice, error)
	GetByCode(ctx context.Context, code string) (*domain.LegalNotice, error)
	List(ctx context.Context, params NoticeListParams) ([]domain.LegalNotice, int64, error)
	// LockByID reads a notice under a row lock so the caller's transaction
	// serializes concurrent acknowledgement attempts.
	LockByID(ctx context.Context, id string) (*domain.LegalNotice, error)
	// UpdateStatusFrom flips status only when the current value is in from;
	// returns ErrConflict when the row exists but the guard failed.
	UpdateStatusFrom(ctx context.Context, id string, from []domain.NoticeStatus, to domain.NoticeStatus) error
	// LastGeneratedSince returns the most recent notice for the same
	// (loanAccountNumber, dpdDays) generated on or after since, for the
	// duplicate suppression guard.
	LastGeneratedSince(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error)
	// ExpireDue moves SENT notices whose expiry date passed to EXPIRED and
	// returns how many rows changed.
	ExpireDue(ctx context.Context, asOf time.Time, limit int) (int64, error)
}

type GormNoticeRepo struct {
	db *gorm.DB
}

func NewGormNoticeRepo(db *gorm.DB) *GormNoticeRepo {
	return &GormNoticeRepo{db: db}
}

func (r *GormNoticeRepo) Create(ctx context.Context, n *domain.LegalNotice) error {
	model := noticeModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if n != nil {
		*n = *noticeModelToDomain(model)
	}
	return nil
}

func (r *GormNoticeRepo) GetByID(ctx context.Context, id string) (*domain.LegalNotice, error) {
	var model LegalNoticeModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return noticeModelToDomain(&model), nil
}

func (r *GormNoticeRepo) GetByCode(ctx context.Context, code string) (*domain.LegalNotice, error) {
	var model LegalNoticeModel
	err := r.db.WithContext(ctx).First(&model, "notice_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return noticeModelToDomain(&model), nil
}

func (r *GormNoticeRepo) List(ctx context.Context, params NoticeListParams) ([]domain.LegalNotice, int64, error) {
	query := r.db.WithContext(ctx).Model(&LegalNoticeModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.LoanAccountNumber != "" {
		query = query.Where("loan_account_number = ?", params.LoanAccountNumber)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []LegalNoticeModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	notices := make([]domain.LegalNotice, 0, len(models))
	for i := range models {
		notices = append(notices, *noticeModelToDomain(&models[i]))
	}

	return notices, total, nil
}

func (r *GormNoticeRepo) LockByID(ctx context.Context, id string) (*domain.LegalNotice, error) {
	var model LegalNoticeModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return noticeModelToDomain(&model), nil
}

func (r *GormNoticeRepo) UpdateStatusFrom(ctx context.Context, id string, from []domain.NoticeStatus, to domain.NoticeStatus) error {
	result := r.db.WithContext(ctx).
		Model(&LegalNoticeModel{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&LegalNoticeModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *GormNoticeRepo) LastGeneratedSince(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error) {
	var model LegalNoticeModel
	err := r.db.WithContext(ctx).
		Where("loan_account_number = ? AND dpd_days = ? AND notice_generation_date >= ?", loanAccountNumber, dpdDays, since).
		Order("notice_generation_date DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return noticeModelToDomain(&model), nil
}

func (r *GormNoticeRepo) ExpireDue(ctx context.Context, asOf time.Time, limit int) (int64, error) {
	if limit < 1 {
		limit = 100
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE legal_notices SET status = ?, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM legal_notices
			WHERE status = ? AND expiry_date IS NOT NULL AND expiry_date < ?
			ORDER BY expiry_date ASC
			LIMIT ?
		)`,
		domain.NoticeStatusExpired, domain.NoticeStatusSent, asOf, limit,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
