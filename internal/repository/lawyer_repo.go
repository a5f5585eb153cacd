package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
)

// EligibleFilter narrows candidate selection. Empty fields match everything;
// non-empty fields match as case-insensitive substrings.
type EligibleFilter struct {
	Specialization string
	Jurisdiction   string
	Limit          int
}

type LawyerRepository interface {
	Create(ctx context.Context, l *domain.Lawyer) error
	GetByID(ctx context.Context, id string) (*domain.Lawyer, error)
	GetByCode(ctx context.Context, code string) (*domain.Lawyer, error)
	// ListEligible returns lawyers passing the availability/capacity filter,
	// ordered by current load ascending with success rate as tie-break.
	ListEligible(ctx context.Context, filter EligibleFilter) ([]domain.Lawyer, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// Deactivate soft-deactivates; lawyers with open cases are never deleted.
	Deactivate(ctx context.Context, id string) error
}

type GormLawyerRepo struct {
	db *gorm.DB
}

func NewGormLawyerRepo(db *gorm.DB) *GormLawyerRepo {
	return &GormLawyerRepo{db: db}
}

func (r *GormLawyerRepo) Create(ctx context.Context, l *domain.Lawyer) error {
	model := lawyerModelFromDomain(l)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if l != nil {
		*l = *lawyerModelToDomain(model)
	}
	return nil
}

func (r *GormLawyerRepo) GetByID(ctx context.Context, id string) (*domain.Lawyer, error) {
	var model LawyerModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lawyerModelToDomain(&model), nil
}

func (r *GormLawyerRepo) GetByCode(ctx context.Context, code string) (*domain.Lawyer, error) {
	var model LawyerModel
	err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lawyerModelToDomain(&model), nil
}

func (r *GormLawyerRepo) ListEligible(ctx context.Context, filter EligibleFilter) ([]domain.Lawyer, error) {
	query := r.db.WithContext(ctx).
		Model(&LawyerModel{}).
		Where("is_active AND is_available AND current_case_load < max_case_load")

	if spec := strings.TrimSpace(filter.Specialization); spec != "" {
		query = query.Where("specialization ILIKE ?", "%"+spec+"%")
	}
	if jur := strings.TrimSpace(filter.Jurisdiction); jur != "" {
		query = query.Where("jurisdiction ILIKE ?", "%"+jur+"%")
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var models []LawyerModel
	err := query.
		Order("current_case_load ASC, success_rate_percent DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lawyers := make([]domain.Lawyer, 0, len(models))
	for i := range models {
		lawyers = append(lawyers, *lawyerModelToDomain(&models[i]))
	}

	return lawyers, nil
}

func (r *GormLawyerRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	result := r.db.WithContext(ctx).
		Model(&LawyerModel{}).
		Where("id = ?", id).
		Update("is_available", available)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormLawyerRepo) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&LawyerModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":    false,
			"is_available": false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
