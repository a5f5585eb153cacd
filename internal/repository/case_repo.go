package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation surfaced through gorm.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// AssignLawyerParams carries everything the assignment transaction needs.
type AssignLawyerParams struct {
	CaseID     string
	LawyerID   string
	Score      float64
	AssignedAt time.Time
}

type CaseRepository interface {
	Create(ctx context.Context, c *domain.LegalCase) error
	GetByID(ctx context.Context, id string) (*domain.LegalCase, error)
	GetByCode(ctx context.Context, code string) (*domain.LegalCase, error)
	GetActiveAssignment(ctx context.Context, caseID string) (*domain.CaseAssignment, error)
	// AssignLawyer applies the full assignment as one transaction: any
	// previous ACTIVE assignment flips to REASSIGNED and its lawyer's load
	// is decremented, then the new lawyer's load is incremented (guarded by
	// the capacity condition) and the new ACTIVE row inserted. Concurrent
	// attempts on the same case serialize on the locked case row; the
	// partial unique index on ACTIVE assignments backstops the race and
	// surfaces as ErrConflict.
	AssignLawyer(ctx context.Context, params AssignLawyerParams) (*domain.CaseAssignment, error)
	CloseAssignment(ctx context.Context, caseID string, status domain.AssignmentStatus) error
	UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error
}

type GormCaseRepo struct {
	db *gorm.DB
}

func NewGormCaseRepo(db *gorm.DB) *GormCaseRepo {
	return &GormCaseRepo{db: db}
}

func (r *GormCaseRepo) Create(ctx context.Context, c *domain.LegalCase) error {
	model := caseModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *caseModelToDomain(model)
	}
	return nil
}

func (r *GormCaseRepo) GetByID(ctx context.Context, id string) (*domain.LegalCase, error) {
	var model LegalCaseModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return caseModelToDomain(&model), nil
}

func (r *GormCaseRepo) GetByCode(ctx context.Context, code string) (*domain.LegalCase, error) {
	var model LegalCaseModel
	err := r.db.WithContext(ctx).First(&model, "case_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return caseModelToDomain(&model), nil
}

func (r *GormCaseRepo) GetActiveAssignment(ctx context.Context, caseID string) (*domain.CaseAssignment, error) {
	var model CaseAssignmentModel
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND status = ?", caseID, domain.AssignmentStatusActive).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return assignmentModelToDomain(&model), nil
}

func (r *GormCaseRepo) AssignLawyer(ctx context.Context, params AssignLawyerParams) (*domain.CaseAssignment, error) {
	var assignment *domain.CaseAssignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the case row so first assignments serialize even though there
		// is no assignment row to lock yet.
		var caseRow LegalCaseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&caseRow, "id = ?", params.CaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var previous CaseAssignmentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("case_id = ? AND status = ?", params.CaseID, domain.AssignmentStatusActive).
			First(&previous).Error
		switch {
		case err == nil:
			if previous.LawyerID == params.LawyerID {
				return domain.ErrConflict
			}
			if err := tx.Model(&CaseAssignmentModel{}).
				Where("id = ?", previous.ID).
				Update("status", domain.AssignmentStatusReassigned).Error; err != nil {
				return err
			}
			if err := tx.Model(&LawyerModel{}).
				Where("id = ? AND current_case_load > 0", previous.LawyerID).
				Update("current_case_load", gorm.Expr("current_case_load - 1")).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First assignment for this case.
		default:
			return err
		}

		increment := tx.Model(&LawyerModel{}).
			Where("id = ? AND is_active AND is_available AND current_case_load < max_case_load", params.LawyerID).
			Update("current_case_load", gorm.Expr("current_case_load + 1"))
		if increment.Error != nil {
			return increment.Error
		}
		if increment.RowsAffected == 0 {
			// Lawyer vanished, filled up, or went unavailable since selection.
			return domain.ErrConflict
		}

		model := &CaseAssignmentModel{
			ID:                        uuid.NewString(),
			CaseID:                    params.CaseID,
			LawyerID:                  params.LawyerID,
			AssignedAt:                params.AssignedAt,
			WorkloadScoreAtAssignment: params.Score,
			Status:                    domain.AssignmentStatusActive,
		}
		if err := tx.Create(model).Error; err != nil {
			// The partial unique index on (case_id) WHERE status = 'ACTIVE'
			// backstops a concurrent first assignment that slipped past the
			// row lock.
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		assignment = assignmentModelToDomain(model)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

func (r *GormCaseRepo) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	if !status.IsValid() {
		return domain.ErrValidation
	}

	result := r.db.WithContext(ctx).
		Model(&LegalCaseModel{}).
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

func (r *GormCaseRepo) CloseAssignment(ctx context.Context, caseID string, status domain.AssignmentStatus) error {
	if status != domain.AssignmentStatusCompleted && status != domain.AssignmentStatusCancelled {
		return domain.ErrValidation
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active CaseAssignmentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("case_id = ? AND status = ?", caseID, domain.AssignmentStatusActive).
			First(&active).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&CaseAssignmentModel{}).
			Where("id = ?", active.ID).
			Update("status", status).Error; err != nil {
			return err
		}

		return tx.Model(&LawyerModel{}).
			Where("id = ? AND current_case_load > 0", active.LawyerID).
			Update("current_case_load", gorm.Expr("current_case_load - 1")).Error
	})
}
