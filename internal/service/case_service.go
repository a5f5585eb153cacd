package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/gateway"
	"github.com/kursadbilgin/collections-engine/internal/observability"
	"github.com/kursadbilgin/collections-engine/internal/queue"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"go.uber.org/zap"
)

// AssignmentRequest selects the lawyer for a case. When LawyerID is set the
// assignment targets that lawyer directly; otherwise the least-loaded eligible
// candidate matching the filters wins.
type AssignmentRequest struct {
	CaseID         string
	LawyerID       string
	Specialization string
	Jurisdiction   string
}

type CaseService struct {
	store     repository.Store
	borrowers gateway.BorrowerLookup
	allocator *SequenceAllocator
	publisher queue.Publisher
	metrics   *observability.Metrics
	clock     Clock
	logger    *zap.Logger
}

func NewCaseService(
	store repository.Store,
	borrowers gateway.BorrowerLookup,
	allocator *SequenceAllocator,
	publisher queue.Publisher,
	metrics *observability.Metrics,
	clock Clock,
	logger *zap.Logger,
) (*CaseService, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if borrowers == nil {
		return nil, fmt.Errorf("borrower lookup is required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CaseService{
		store:     store,
		borrowers: borrowers,
		allocator: allocator,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Create opens a collections case: the borrower is resolved from the loan
// account, then the LC code allocation and the case insert commit together.
func (s *CaseService) Create(ctx context.Context, legalCase *domain.LegalCase) (*domain.LegalCase, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if legalCase == nil {
		return nil, fmt.Errorf("%w: case is required", domain.ErrValidation)
	}

	legalCase.LoanAccountNumber = strings.TrimSpace(legalCase.LoanAccountNumber)
	legalCase.CaseType = strings.TrimSpace(legalCase.CaseType)
	legalCase.Status = domain.CaseStatusOpen

	if err := legalCase.Validate(); err != nil {
		return nil, err
	}

	borrower, err := s.borrowers.GetByLoanAccount(ctx, legalCase.LoanAccountNumber)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(legalCase.BorrowerName) == "" {
		legalCase.BorrowerName = borrower.Name
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		code, err := s.allocator.AllocateIn(ctx, tx.Sequences(), domain.PrefixCase, "")
		if err != nil {
			return err
		}

		legalCase.ID = uuid.NewString()
		legalCase.CaseCode = code

		return tx.Cases().Create(ctx, legalCase)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventCaseCreated, legalCase.CaseCode, legalCase.LoanAccountNumber, nil)

	s.logger.Info("case created",
		zap.String("caseId", legalCase.ID),
		zap.String("caseCode", legalCase.CaseCode),
		zap.String("loanAccountNumber", legalCase.LoanAccountNumber),
	)

	return legalCase, nil
}

func (s *CaseService) GetByID(ctx context.Context, id string) (*domain.LegalCase, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: case id is required", domain.ErrValidation)
	}
	return s.store.Cases().GetByID(ctx, strings.TrimSpace(id))
}

func (s *CaseService) GetByCode(ctx context.Context, code string) (*domain.LegalCase, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: case code is required", domain.ErrValidation)
	}
	return s.store.Cases().GetByCode(ctx, strings.TrimSpace(code))
}

func (s *CaseService) GetActiveAssignment(ctx context.Context, caseID string) (*domain.CaseAssignment, error) {
	if strings.TrimSpace(caseID) == "" {
		return nil, fmt.Errorf("%w: case id is required", domain.ErrValidation)
	}
	return s.store.Cases().GetActiveAssignment(ctx, strings.TrimSpace(caseID))
}

// AssignLawyer picks the lawyer for a case and applies the assignment. With
// automatic selection a candidate that filled up between selection and commit
// is skipped and the next one is tried, so a burst of concurrent assignments
// spreads over the candidate list instead of failing.
func (s *CaseService) AssignLawyer(ctx context.Context, req AssignmentRequest) (*domain.CaseAssignment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.CaseID) == "" {
		return nil, fmt.Errorf("%w: case id is required", domain.ErrValidation)
	}

	legalCase, err := s.store.Cases().GetByID(ctx, strings.TrimSpace(req.CaseID))
	if err != nil {
		return nil, err
	}
	if legalCase.Status == domain.CaseStatusClosed {
		return nil, fmt.Errorf("%w: case %s is closed", domain.ErrInvalidState, legalCase.CaseCode)
	}

	var assignment *domain.CaseAssignment
	if strings.TrimSpace(req.LawyerID) != "" {
		assignment, err = s.assignDirect(ctx, legalCase, strings.TrimSpace(req.LawyerID))
	} else {
		assignment, err = s.assignAuto(ctx, legalCase, req)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncCaseAssigned(legalCase.CaseType)
	s.publishEvent(ctx, queue.EventCaseAssigned, legalCase.CaseCode, legalCase.LoanAccountNumber, map[string]string{
		"lawyerId": assignment.LawyerID,
	})

	s.logger.Info("lawyer assigned",
		zap.String("caseCode", legalCase.CaseCode),
		zap.String("lawyerId", assignment.LawyerID),
		zap.Float64("workloadScore", assignment.WorkloadScoreAtAssignment),
	)

	return assignment, nil
}

func (s *CaseService) assignDirect(ctx context.Context, legalCase *domain.LegalCase, lawyerID string) (*domain.CaseAssignment, error) {
	lawyer, err := s.store.Lawyers().GetByID(ctx, lawyerID)
	if err != nil {
		return nil, err
	}
	if !lawyer.Eligible() {
		return nil, fmt.Errorf("%w: lawyer %s is not eligible for assignment", domain.ErrConflict, lawyer.Code)
	}

	return s.store.Cases().AssignLawyer(ctx, repository.AssignLawyerParams{
		CaseID:     legalCase.ID,
		LawyerID:   lawyer.ID,
		Score:      lawyer.Score(),
		AssignedAt: s.clock.Now().UTC(),
	})
}

func (s *CaseService) assignAuto(ctx context.Context, legalCase *domain.LegalCase, req AssignmentRequest) (*domain.CaseAssignment, error) {
	lawyers, err := s.store.Lawyers().ListEligible(ctx, repository.EligibleFilter{
		Specialization: req.Specialization,
		Jurisdiction:   req.Jurisdiction,
	})
	if err != nil {
		return nil, err
	}
	if len(lawyers) == 0 {
		return nil, fmt.Errorf("%w: no eligible lawyer matches the filters", domain.ErrNotFound)
	}

	for i := range lawyers {
		assignment, err := s.store.Cases().AssignLawyer(ctx, repository.AssignLawyerParams{
			CaseID:     legalCase.ID,
			LawyerID:   lawyers[i].ID,
			Score:      lawyers[i].Score(),
			AssignedAt: s.clock.Now().UTC(),
		})
		if err == nil {
			return assignment, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: every candidate was taken or at capacity", domain.ErrConflict)
}

// Close completes the active assignment, releases the lawyer's slot, and
// moves the case to CLOSED. A case without an active assignment still closes.
func (s *CaseService) Close(ctx context.Context, caseID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(caseID) == "" {
		return fmt.Errorf("%w: case id is required", domain.ErrValidation)
	}
	caseID = strings.TrimSpace(caseID)

	legalCase, err := s.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if legalCase.Status == domain.CaseStatusClosed {
		return fmt.Errorf("%w: case %s is already closed", domain.ErrInvalidState, legalCase.CaseCode)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		err := tx.Cases().CloseAssignment(ctx, caseID, domain.AssignmentStatusCompleted)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.Cases().UpdateStatus(ctx, caseID, domain.CaseStatusClosed)
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, queue.EventCaseClosed, legalCase.CaseCode, legalCase.LoanAccountNumber, nil)
	return nil
}

func (s *CaseService) publishEvent(ctx context.Context, eventType queue.EventType, caseCode, loanAccountNumber string, attrs map[string]string) {
	event := queue.LifecycleEvent{
		EventID:           uuid.NewString(),
		EventType:         eventType,
		OccurredAt:        s.clock.Now().UTC(),
		CaseCode:          caseCode,
		LoanAccountNumber: loanAccountNumber,
		Attributes:        attrs,
	}

	if err := s.publisher.Publish(ctx, queue.EventQueue(eventType), event); err != nil {
		// Lifecycle events are an audit side channel; failures never fail the operation.
		s.logger.Warn("failed to publish case lifecycle event",
			zap.String("eventType", eventType.String()),
			zap.String("caseCode", caseCode),
			zap.Error(err),
		)
	}
}
