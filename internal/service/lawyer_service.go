package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"go.uber.org/zap"
)

// Candidate pairs a lawyer with the composite workload score computed at
// selection time.
type Candidate struct {
	Lawyer domain.Lawyer
	Score  float64
}

type LawyerService struct {
	store     repository.Store
	allocator *SequenceAllocator
	logger    *zap.Logger
}

func NewLawyerService(
	store repository.Store,
	allocator *SequenceAllocator,
	logger *zap.Logger,
) (*LawyerService, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LawyerService{
		store:     store,
		allocator: allocator,
		logger:    logger,
	}, nil
}

// Register creates a lawyer and allocates its LWYR code in the same
// transaction, so an insert failure never leaks a used code into the wild.
func (s *LawyerService) Register(ctx context.Context, lawyer *domain.Lawyer) (*domain.Lawyer, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if lawyer == nil {
		return nil, fmt.Errorf("%w: lawyer is required", domain.ErrValidation)
	}

	lawyer.Name = strings.TrimSpace(lawyer.Name)
	lawyer.Specialization = strings.TrimSpace(lawyer.Specialization)
	lawyer.Jurisdiction = strings.TrimSpace(lawyer.Jurisdiction)
	lawyer.IsActive = true
	lawyer.CurrentCaseLoad = 0

	if err := lawyer.Validate(); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		code, err := s.allocator.AllocateIn(ctx, tx.Sequences(), domain.PrefixLawyer, "")
		if err != nil {
			return err
		}

		lawyer.ID = uuid.NewString()
		lawyer.Code = code

		return tx.Lawyers().Create(ctx, lawyer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lawyer registered",
		zap.String("lawyerId", lawyer.ID),
		zap.String("lawyerCode", lawyer.Code),
	)

	return lawyer, nil
}

func (s *LawyerService) GetByID(ctx context.Context, id string) (*domain.Lawyer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: lawyer id is required", domain.ErrValidation)
	}
	return s.store.Lawyers().GetByID(ctx, strings.TrimSpace(id))
}

func (s *LawyerService) GetByCode(ctx context.Context, code string) (*domain.Lawyer, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: lawyer code is required", domain.ErrValidation)
	}
	return s.store.Lawyers().GetByCode(ctx, strings.TrimSpace(code))
}

// SelectCandidates returns eligible lawyers ordered least-loaded first, each
// annotated with its composite score. The ordering follows raw case load with
// success rate as the tie-break; the score is reported for audit and display.
func (s *LawyerService) SelectCandidates(ctx context.Context, filter repository.EligibleFilter) ([]Candidate, error) {
	lawyers, err := s.store.Lawyers().ListEligible(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(lawyers))
	for i := range lawyers {
		candidates = append(candidates, Candidate{
			Lawyer: lawyers[i],
			Score:  lawyers[i].Score(),
		})
	}

	return candidates, nil
}

func (s *LawyerService) SetAvailability(ctx context.Context, id string, available bool) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: lawyer id is required", domain.ErrValidation)
	}
	return s.store.Lawyers().SetAvailability(ctx, strings.TrimSpace(id), available)
}

// Deactivate soft-deactivates a lawyer. Existing assignments stay untouched;
// the lawyer simply stops matching the eligibility filter.
func (s *LawyerService) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: lawyer id is required", domain.ErrValidation)
	}
	return s.store.Lawyers().Deactivate(ctx, strings.TrimSpace(id))
}
