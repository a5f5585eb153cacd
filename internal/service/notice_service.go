package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/gateway"
	"github.com/kursadbilgin/collections-engine/internal/observability"
	"github.com/kursadbilgin/collections-engine/internal/queue"
	"github.com/kursadbilgin/collections-engine/internal/ratelimit"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"go.uber.org/zap"
)

const defaultNoticeExpiryDays = 30

// AcknowledgementParams carries a recorded acknowledgement. AcknowledgedBy
// equal to "Refused" (case-insensitive) records a refusal; anything else
// lands in pending verification until a reviewer confirms it.
type AcknowledgementParams struct {
	NoticeID            string
	AcknowledgedBy      string
	AcknowledgementDate time.Time
	Mode                domain.CommunicationMode
	Remarks             string
	ProofDocument       []byte
	ProofFileName       string
}

type NoticeService struct {
	store      repository.Store
	borrowers  gateway.BorrowerLookup
	dispatch   gateway.NotificationDispatch
	documents  gateway.DocumentStorage
	limiter    ratelimit.RateLimiter
	allocator  *SequenceAllocator
	guard      *DuplicateGuard
	publisher  queue.Publisher
	metrics    *observability.Metrics
	clock      Clock
	logger     *zap.Logger
	expiryDays int
}

func NewNoticeService(
	store repository.Store,
	borrowers gateway.BorrowerLookup,
	dispatch gateway.NotificationDispatch,
	documents gateway.DocumentStorage,
	limiter ratelimit.RateLimiter,
	allocator *SequenceAllocator,
	guard *DuplicateGuard,
	publisher queue.Publisher,
	metrics *observability.Metrics,
	clock Clock,
	expiryDays int,
	logger *zap.Logger,
) (*NoticeService, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if borrowers == nil {
		return nil, fmt.Errorf("borrower lookup is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch gateway is required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	if guard == nil {
		return nil, fmt.Errorf("duplicate guard is required")
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	if expiryDays < 1 {
		expiryDays = defaultNoticeExpiryDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NoticeService{
		store:      store,
		borrowers:  borrowers,
		dispatch:   dispatch,
		documents:  documents,
		limiter:    limiter,
		allocator:  allocator,
		guard:      guard,
		publisher:  publisher,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
		expiryDays: expiryDays,
	}, nil
}

// Create runs the full issue flow: borrower lookup, duplicate suppression,
// atomic PLN allocation + insert, delivery through every requested mode, and
// the final transition to SENT or FAILED. Notices persist as GENERATED unless
// the caller stages them as DRAFT. The guard runs before the allocation (and
// again inside the transaction) so suppressed requests consume no sequence
// numbers.
func (s *NoticeService) Create(ctx context.Context, notice *domain.LegalNotice) (*domain.LegalNotice, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if notice == nil {
		return nil, fmt.Errorf("%w: notice is required", domain.ErrValidation)
	}

	notice.LoanAccountNumber = strings.TrimSpace(notice.LoanAccountNumber)
	notice.Content = strings.TrimSpace(notice.Content)
	if notice.TriggerType == "" {
		notice.TriggerType = domain.TriggerManual
	}

	if err := notice.Validate(); err != nil {
		return nil, err
	}

	borrower, err := s.borrowers.GetByLoanAccount(ctx, notice.LoanAccountNumber)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(notice.BorrowerName) == "" {
		notice.BorrowerName = borrower.Name
	}

	if err := s.guard.Check(ctx, notice.LoanAccountNumber, notice.DPDDays); err != nil {
		return nil, err
	}

	// Callers may stage the notice as DRAFT; everything else is persisted as
	// GENERATED. Both accept the dispatch events below.
	initialStatus := domain.NoticeStatusGenerated
	if notice.Status == domain.NoticeStatusDraft {
		initialStatus = domain.NoticeStatusDraft
	}

	now := s.clock.Now().UTC()
	generationDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := generationDate.AddDate(0, 0, s.expiryDays)

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		// Re-check against the tx-scoped repository: a concurrent create
		// for the same (account, dpd) may have committed since the
		// pre-flight check above.
		if err := s.guard.CheckIn(ctx, tx.Notices(), notice.LoanAccountNumber, notice.DPDDays); err != nil {
			return err
		}

		code, err := s.allocator.AllocateIn(ctx, tx.Sequences(), domain.PrefixNotice, "")
		if err != nil {
			return err
		}

		notice.ID = uuid.NewString()
		notice.NoticeCode = code
		notice.Status = initialStatus
		notice.NoticeGenerationDate = generationDate
		notice.ExpiryDate = &expiry

		return tx.Notices().Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}

	delivered := s.deliver(ctx, notice, borrower)

	event := domain.NoticeEventDispatchFailed
	if delivered > 0 {
		event = domain.NoticeEventDispatched
	}

	next, err := domain.NextNoticeStatus(notice.Status, event)
	if err != nil {
		return nil, err
	}
	if err := s.store.Notices().UpdateStatusFrom(ctx, notice.ID, []domain.NoticeStatus{initialStatus}, next); err != nil {
		return nil, err
	}
	notice.Status = next

	s.metrics.IncNoticeIssued(next.String())

	lifecycleEvent := queue.EventNoticeSent
	if next == domain.NoticeStatusFailed {
		lifecycleEvent = queue.EventNoticeFailed
	}
	s.publishEvent(ctx, lifecycleEvent, notice, map[string]string{
		"deliveredModes": fmt.Sprintf("%d/%d", delivered, len(notice.CommunicationModes)),
	})

	s.logger.Info("notice issued",
		zap.String("noticeCode", notice.NoticeCode),
		zap.String("status", notice.Status.String()),
		zap.Int("deliveredModes", delivered),
		zap.Int("requestedModes", len(notice.CommunicationModes)),
	)

	return notice, nil
}

// deliver attempts every requested mode and records one delivery row per
// attempt. It returns how many modes succeeded.
func (s *NoticeService) deliver(ctx context.Context, notice *domain.LegalNotice, borrower *gateway.Borrower) int {
	delivered := 0

	for _, mode := range notice.CommunicationModes {
		if err := s.limiter.Wait(ctx, strings.ToLower(mode.String())); err != nil {
			s.recordDelivery(ctx, notice, mode, "", false, nil, "", err)
			continue
		}

		recipient := borrower.Contact(mode)
		start := s.clock.Now()
		result, err := s.dispatch.Send(ctx, gateway.Delivery{
			NoticeCode: notice.NoticeCode,
			Mode:       mode,
			Recipient:  recipient,
			Content:    notice.Content,
		})
		s.metrics.ObserveDispatchDuration(mode.String(), s.clock.Now().Sub(start))

		if err != nil {
			reason := "permanent_error"
			if gateway.IsTransient(err) {
				reason = "transient_error"
			}
			s.metrics.IncDispatchFailed(mode.String(), reason)
			s.recordDelivery(ctx, notice, mode, recipient, false, nil, "", err)
			s.logger.Warn("notice delivery failed",
				zap.String("noticeCode", notice.NoticeCode),
				zap.String("mode", mode.String()),
				zap.Error(err),
			)
			continue
		}

		delivered++
		s.recordDelivery(ctx, notice, mode, recipient, true, &result.StatusCode, result.MessageID, nil)
	}

	return delivered
}

func (s *NoticeService) recordDelivery(
	ctx context.Context,
	notice *domain.LegalNotice,
	mode domain.CommunicationMode,
	recipient string,
	succeeded bool,
	statusCode *int,
	messageID string,
	sendErr error,
) {
	delivery := &domain.NoticeDelivery{
		ID:         uuid.NewString(),
		NoticeID:   notice.ID,
		Mode:       mode,
		Recipient:  recipient,
		Succeeded:  succeeded,
		StatusCode: statusCode,
	}
	if messageID != "" {
		delivery.ProviderMessageID = &messageID
	}
	if sendErr != nil {
		msg := sendErr.Error()
		delivery.Error = &msg
	}

	if err := s.store.Deliveries().Create(ctx, delivery); err != nil {
		s.logger.Error("failed to record notice delivery",
			zap.String("noticeCode", notice.NoticeCode),
			zap.String("mode", mode.String()),
			zap.Error(err),
		)
	}
}

// RecordAcknowledgement attaches the single acknowledgement a SENT notice may
// receive. The notice lock, duplicate check, ACKN allocation, acknowledgement
// insert, and status flip all commit in one transaction.
func (s *NoticeService) RecordAcknowledgement(ctx context.Context, params AcknowledgementParams) (*domain.NoticeAcknowledgement, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(params.NoticeID) == "" {
		return nil, fmt.Errorf("%w: notice id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(params.AcknowledgedBy) == "" {
		return nil, fmt.Errorf("%w: acknowledgedBy is required", domain.ErrValidation)
	}
	if params.AcknowledgementDate.IsZero() {
		return nil, fmt.Errorf("%w: acknowledgement date is required", domain.ErrValidation)
	}
	if !params.Mode.IsValid() {
		return nil, fmt.Errorf("%w: invalid acknowledgement mode %q", domain.ErrValidation, params.Mode)
	}

	if len(params.ProofDocument) > 0 && s.documents == nil {
		return nil, fmt.Errorf("%w: document storage is not configured", domain.ErrExternalDependency)
	}

	ackStatus, noticeEvent := domain.AcknowledgementOutcome(params.AcknowledgedBy)

	ack := &domain.NoticeAcknowledgement{
		AcknowledgedBy:      strings.TrimSpace(params.AcknowledgedBy),
		AcknowledgementDate: params.AcknowledgementDate,
		AcknowledgementMode: params.Mode,
		Status:              ackStatus,
	}
	if remarks := strings.TrimSpace(params.Remarks); remarks != "" {
		ack.Remarks = &remarks
	}

	var notice *domain.LegalNotice
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		notice, err = tx.Notices().LockByID(ctx, strings.TrimSpace(params.NoticeID))
		if err != nil {
			return err
		}

		if notice.Status != domain.NoticeStatusSent {
			return fmt.Errorf("%w: notice %s is %s, acknowledgements require SENT",
				domain.ErrInvalidState, notice.NoticeCode, notice.Status)
		}

		exists, err := tx.Acknowledgements().ExistsForNotice(ctx, notice.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: notice %s already has an acknowledgement",
				domain.ErrDuplicateAcknowledgement, notice.NoticeCode)
		}

		if err := domain.ValidateAcknowledgementDate(
			params.AcknowledgementDate, notice.NoticeGenerationDate, s.clock.Now().UTC(),
		); err != nil {
			return err
		}

		// Store the proof only once the acknowledgement is known to be
		// admissible, so a rejected request leaves no orphaned document.
		if len(params.ProofDocument) > 0 {
			path, err := s.documents.Store(ctx, params.ProofDocument, gateway.DocumentMetadata{
				FileName: params.ProofFileName,
			})
			if err != nil {
				return err
			}
			ack.ProofDocumentPath = &path
		}

		code, err := s.allocator.AllocateIn(ctx, tx.Sequences(), domain.PrefixAcknowledgement, "")
		if err != nil {
			return err
		}

		ack.ID = uuid.NewString()
		ack.AcknowledgementCode = code
		ack.NoticeID = notice.ID

		if err := tx.Acknowledgements().Create(ctx, ack); err != nil {
			return err
		}

		next, err := domain.NextNoticeStatus(notice.Status, noticeEvent)
		if err != nil {
			return err
		}
		if err := tx.Notices().UpdateStatusFrom(ctx, notice.ID, []domain.NoticeStatus{domain.NoticeStatusSent}, next); err != nil {
			return err
		}
		notice.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAcknowledgement(ackStatus.String())

	lifecycleEvent := queue.EventNoticeAcknowledged
	if ackStatus == domain.AckStatusRefused {
		lifecycleEvent = queue.EventNoticeRefused
	}
	s.publishEvent(ctx, lifecycleEvent, notice, map[string]string{
		"acknowledgementCode": ack.AcknowledgementCode,
		"outcome":             ackStatus.String(),
	})

	s.logger.Info("acknowledgement recorded",
		zap.String("noticeCode", notice.NoticeCode),
		zap.String("acknowledgementCode", ack.AcknowledgementCode),
		zap.String("outcome", ackStatus.String()),
	)

	return ack, nil
}

// VerifyAcknowledgement confirms a pending acknowledgement after manual
// review, completing the PENDING_VERIFICATION -> ACKNOWLEDGED transition.
func (s *NoticeService) VerifyAcknowledgement(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(noticeID) == "" {
		return nil, fmt.Errorf("%w: notice id is required", domain.ErrValidation)
	}

	var (
		notice *domain.LegalNotice
		ack    *domain.NoticeAcknowledgement
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		notice, err = tx.Notices().LockByID(ctx, strings.TrimSpace(noticeID))
		if err != nil {
			return err
		}

		next, err := domain.NextNoticeStatus(notice.Status, domain.NoticeEventVerified)
		if err != nil {
			return err
		}

		ack, err = tx.Acknowledgements().GetByNoticeID(ctx, notice.ID)
		if err != nil {
			return err
		}

		if err := tx.Acknowledgements().UpdateStatus(ctx, ack.ID, domain.AckStatusAcknowledged); err != nil {
			return err
		}
		ack.Status = domain.AckStatusAcknowledged

		if err := tx.Notices().UpdateStatusFrom(ctx, notice.ID,
			[]domain.NoticeStatus{domain.NoticeStatusPendingVerification}, next); err != nil {
			return err
		}
		notice.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAcknowledgement(domain.AckStatusAcknowledged.String())
	s.publishEvent(ctx, queue.EventNoticeAcknowledged, notice, map[string]string{
		"acknowledgementCode": ack.AcknowledgementCode,
		"verified":            "true",
	})

	return ack, nil
}

func (s *NoticeService) GetByID(ctx context.Context, id string) (*domain.LegalNotice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: notice id is required", domain.ErrValidation)
	}
	return s.store.Notices().GetByID(ctx, strings.TrimSpace(id))
}

func (s *NoticeService) GetByCode(ctx context.Context, code string) (*domain.LegalNotice, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: notice code is required", domain.ErrValidation)
	}
	return s.store.Notices().GetByCode(ctx, strings.TrimSpace(code))
}

func (s *NoticeService) List(ctx context.Context, params repository.NoticeListParams) ([]domain.LegalNotice, int64, error) {
	return s.store.Notices().List(ctx, params)
}

func (s *NoticeService) GetDeliveries(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error) {
	if strings.TrimSpace(noticeID) == "" {
		return nil, fmt.Errorf("%w: notice id is required", domain.ErrValidation)
	}
	return s.store.Deliveries().GetByNoticeID(ctx, strings.TrimSpace(noticeID))
}

func (s *NoticeService) GetAcknowledgement(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error) {
	if strings.TrimSpace(noticeID) == "" {
		return nil, fmt.Errorf("%w: notice id is required", domain.ErrValidation)
	}
	return s.store.Acknowledgements().GetByNoticeID(ctx, strings.TrimSpace(noticeID))
}

// SequenceStatus reports today's counter position for a prefix without
// allocating a number.
func (s *NoticeService) SequenceStatus(ctx context.Context, prefix, category string) (*domain.SequenceCounter, error) {
	return s.allocator.Peek(ctx, prefix, category)
}

func (s *NoticeService) publishEvent(ctx context.Context, eventType queue.EventType, notice *domain.LegalNotice, attrs map[string]string) {
	event := queue.LifecycleEvent{
		EventID:           uuid.NewString(),
		EventType:         eventType,
		OccurredAt:        s.clock.Now().UTC(),
		NoticeCode:        notice.NoticeCode,
		LoanAccountNumber: notice.LoanAccountNumber,
		Attributes:        attrs,
	}

	if err := s.publisher.Publish(ctx, queue.EventQueue(eventType), event); err != nil {
		// Lifecycle events are an audit side channel; failures never fail the operation.
		s.logger.Warn("failed to publish notice lifecycle event",
			zap.String("eventType", eventType.String()),
			zap.String("noticeCode", notice.NoticeCode),
			zap.Error(err),
		)
	}
}
