package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/gateway"
	"github.com/kursadbilgin/collections-engine/internal/queue"
	"github.com/kursadbilgin/collections-engine/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeSequenceRepo struct {
	incrementFn func(ctx context.Context, prefix, category, dateStamp string) (int64, error)
	getFn       func(ctx context.Context, prefix, category, dateStamp string) (*domain.SequenceCounter, error)
}

func (f *fakeSequenceRepo) Increment(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
	if f.incrementFn == nil {
		return 0, errors.New("incrementFn not set")
	}
	return f.incrementFn(ctx, prefix, category, dateStamp)
}

func (f *fakeSequenceRepo) Get(ctx context.Context, prefix, category, dateStamp string) (*domain.SequenceCounter, error) {
	if f.getFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getFn(ctx, prefix, category, dateStamp)
}

// memSequenceRepo mimics the atomic upsert with a mutex-guarded map.
type memSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemSequenceRepo() *memSequenceRepo {
	return &memSequenceRepo{counters: make(map[string]int64)}
}

func (m *memSequenceRepo) Increment(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.PartitionKey(prefix, category, dateStamp)
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memSequenceRepo) Get(ctx context.Context, prefix, category, dateStamp string) (*domain.SequenceCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.PartitionKey(prefix, category, dateStamp)
	value, ok := m.counters[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.SequenceCounter{
		PartitionKey: key,
		Prefix:       prefix,
		CategoryCode: category,
		DateStamp:    dateStamp,
		CurrentValue: value,
	}, nil
}

type fakeCodeRegistry struct {
	existsFn func(ctx context.Context, prefix, code string) (bool, error)
}

func (f *fakeCodeRegistry) Exists(ctx context.Context, prefix, code string) (bool, error) {
	if f.existsFn == nil {
		return false, nil
	}
	return f.existsFn(ctx, prefix, code)
}

type fakeLawyerRepo struct {
	createFn          func(ctx context.Context, l *domain.Lawyer) error
	getByIDFn         func(ctx context.Context, id string) (*domain.Lawyer, error)
	getByCodeFn       func(ctx context.Context, code string) (*domain.Lawyer, error)
	listEligibleFn    func(ctx context.Context, filter repository.EligibleFilter) ([]domain.Lawyer, error)
	setAvailabilityFn func(ctx context.Context, id string, available bool) error
	deactivateFn      func(ctx context.Context, id string) error
}

func (f *fakeLawyerRepo) Create(ctx context.Context, l *domain.Lawyer) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, l)
}

func (f *fakeLawyerRepo) GetByID(ctx context.Context, id string) (*domain.Lawyer, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeLawyerRepo) GetByCode(ctx context.Context, code string) (*domain.Lawyer, error) {
	if f.getByCodeFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByCodeFn(ctx, code)
}

func (f *fakeLawyerRepo) ListEligible(ctx context.Context, filter repository.EligibleFilter) ([]domain.Lawyer, error) {
	if f.listEligibleFn == nil {
		return nil, nil
	}
	return f.listEligibleFn(ctx, filter)
}

func (f *fakeLawyerRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	if f.setAvailabilityFn == nil {
		return nil
	}
	return f.setAvailabilityFn(ctx, id, available)
}

func (f *fakeLawyerRepo) Deactivate(ctx context.Context, id string) error {
	if f.deactivateFn == nil {
		return nil
	}
	return f.deactivateFn(ctx, id)
}

type fakeCaseRepo struct {
	createFn              func(ctx context.Context, c *domain.LegalCase) error
	getByIDFn             func(ctx context.Context, id string) (*domain.LegalCase, error)
	getByCodeFn           func(ctx context.Context, code string) (*domain.LegalCase, error)
	getActiveAssignmentFn func(ctx context.Context, caseID string) (*domain.CaseAssignment, error)
	assignLawyerFn        func(ctx context.Context, params repository.AssignLawyerParams) (*domain.CaseAssignment, error)
	closeAssignmentFn     func(ctx context.Context, caseID string, status domain.AssignmentStatus) error
	updateStatusFn        func(ctx context.Context, id string, status domain.CaseStatus) error
}

func (f *fakeCaseRepo) Create(ctx context.Context, c *domain.LegalCase) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, c)
}

func (f *fakeCaseRepo) GetByID(ctx context.Context, id string) (*domain.LegalCase, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeCaseRepo) GetByCode(ctx context.Context, code string) (*domain.LegalCase, error) {
	if f.getByCodeFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByCodeFn(ctx, code)
}

func (f *fakeCaseRepo) GetActiveAssignment(ctx context.Context, caseID string) (*domain.CaseAssignment, error) {
	if f.getActiveAssignmentFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getActiveAssignmentFn(ctx, caseID)
}

func (f *fakeCaseRepo) AssignLawyer(ctx context.Context, params repository.AssignLawyerParams) (*domain.CaseAssignment, error) {
	if f.assignLawyerFn == nil {
		return nil, errors.New("assignLawyerFn not set")
	}
	return f.assignLawyerFn(ctx, params)
}

func (f *fakeCaseRepo) CloseAssignment(ctx context.Context, caseID string, status domain.AssignmentStatus) error {
	if f.closeAssignmentFn == nil {
		return nil
	}
	return f.closeAssignmentFn(ctx, caseID, status)
}

func (f *fakeCaseRepo) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	if f.updateStatusFn == nil {
		return nil
	}
	return f.updateStatusFn(ctx, id, status)
}

type fakeNoticeRepo struct {
	createFn             func(ctx context.Context, n *domain.LegalNotice) error
	getByIDFn            func(ctx context.Context, id string) (*domain.LegalNotice, error)
	getByCodeFn          func(ctx context.Context, code string) (*domain.LegalNotice, error)
	listFn               func(ctx context.Context, params repository.NoticeListParams) ([]domain.LegalNotice, int64, error)
	lockByIDFn           func(ctx context.Context, id string) (*domain.LegalNotice, error)
	updateStatusFromFn   func(ctx context.Context, id string, from []domain.NoticeStatus, to domain.NoticeStatus) error
	lastGeneratedSinceFn func(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error)
	expireDueFn          func(ctx context.Context, asOf time.Time, limit int) (int64, error)
}

func (f *fakeNoticeRepo) Create(ctx context.Context, n *domain.LegalNotice) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, n)
}

func (f *fakeNoticeRepo) GetByID(ctx context.Context, id string) (*domain.LegalNotice, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeNoticeRepo) GetByCode(ctx context.Context, code string) (*domain.LegalNotice, error) {
	if f.getByCodeFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByCodeFn(ctx, code)
}

func (f *fakeNoticeRepo) List(ctx context.Context, params repository.NoticeListParams) ([]domain.LegalNotice, int64, error) {
	if f.listFn == nil {
		return nil, 0, nil
	}
	return f.listFn(ctx, params)
}

func (f *fakeNoticeRepo) LockByID(ctx context.Context, id string) (*domain.LegalNotice, error) {
	if f.lockByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.lockByIDFn(ctx, id)
}

func (f *fakeNoticeRepo) UpdateStatusFrom(ctx context.Context, id string, from []domain.NoticeStatus, to domain.NoticeStatus) error {
	if f.updateStatusFromFn == nil {
		return nil
	}
	return f.updateStatusFromFn(ctx, id, from, to)
}

func (f *fakeNoticeRepo) LastGeneratedSince(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error) {
	if f.lastGeneratedSinceFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.lastGeneratedSinceFn(ctx, loanAccountNumber, dpdDays, since)
}

func (f *fakeNoticeRepo) ExpireDue(ctx context.Context, asOf time.Time, limit int) (int64, error) {
	if f.expireDueFn == nil {
		return 0, nil
	}
	return f.expireDueFn(ctx, asOf, limit)
}

type fakeAckRepo struct {
	createFn          func(ctx context.Context, a *domain.NoticeAcknowledgement) error
	getByNoticeIDFn   func(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error)
	existsForNoticeFn func(ctx context.Context, noticeID string) (bool, error)
	updateStatusFn    func(ctx context.Context, id string, status domain.AcknowledgementStatus) error
}

func (f *fakeAckRepo) Create(ctx context.Context, a *domain.NoticeAcknowledgement) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, a)
}

func (f *fakeAckRepo) GetByNoticeID(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error) {
	if f.getByNoticeIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByNoticeIDFn(ctx, noticeID)
}

func (f *fakeAckRepo) ExistsForNotice(ctx context.Context, noticeID string) (bool, error) {
	if f.existsForNoticeFn == nil {
		return false, nil
	}
	return f.existsForNoticeFn(ctx, noticeID)
}

func (f *fakeAckRepo) UpdateStatus(ctx context.Context, id string, status domain.AcknowledgementStatus) error {
	if f.updateStatusFn == nil {
		return nil
	}
	return f.updateStatusFn(ctx, id, status)
}

type fakeDeliveryRepo struct {
	createFn        func(ctx context.Context, d *domain.NoticeDelivery) error
	getByNoticeIDFn func(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error)
}

func (f *fakeDeliveryRepo) Create(ctx context.Context, d *domain.NoticeDelivery) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, d)
}

func (f *fakeDeliveryRepo) GetByNoticeID(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error) {
	if f.getByNoticeIDFn == nil {
		return nil, nil
	}
	return f.getByNoticeIDFn(ctx, noticeID)
}

// fakeStore hands out the configured fakes; Transaction simply runs the
// callback against the same store.
type fakeStore struct {
	sequences  repository.SequenceRepository
	codes      repository.CodeRegistry
	lawyers    repository.LawyerRepository
	cases      repository.CaseRepository
	notices    repository.NoticeRepository
	acks       repository.AcknowledgementRepository
	deliveries repository.DeliveryRepository

	transactionFn func(ctx context.Context, fn func(repository.Store) error) error
}

func (f *fakeStore) Sequences() repository.SequenceRepository {
	if f.sequences == nil {
		return &fakeSequenceRepo{}
	}
	return f.sequences
}

func (f *fakeStore) Codes() repository.CodeRegistry {
	if f.codes == nil {
		return &fakeCodeRegistry{}
	}
	return f.codes
}

func (f *fakeStore) Lawyers() repository.LawyerRepository {
	if f.lawyers == nil {
		return &fakeLawyerRepo{}
	}
	return f.lawyers
}

func (f *fakeStore) Cases() repository.CaseRepository {
	if f.cases == nil {
		return &fakeCaseRepo{}
	}
	return f.cases
}

func (f *fakeStore) Notices() repository.NoticeRepository {
	if f.notices == nil {
		return &fakeNoticeRepo{}
	}
	return f.notices
}

func (f *fakeStore) Acknowledgements() repository.AcknowledgementRepository {
	if f.acks == nil {
		return &fakeAckRepo{}
	}
	return f.acks
}

func (f *fakeStore) Deliveries() repository.DeliveryRepository {
	if f.deliveries == nil {
		return &fakeDeliveryRepo{}
	}
	return f.deliveries
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	if f.transactionFn != nil {
		return f.transactionFn(ctx, fn)
	}
	return fn(f)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, event queue.LifecycleEvent) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, event queue.LifecycleEvent) error {
	if f.publishFn == nil {
		return nil
	}
	return f.publishFn(ctx, queueName, event)
}

func (f *fakePublisher) Close() error { return nil }

type fakeBorrowerLookup struct {
	getFn func(ctx context.Context, accountNumber string) (*gateway.Borrower, error)
}

func (f *fakeBorrowerLookup) GetByLoanAccount(ctx context.Context, accountNumber string) (*gateway.Borrower, error) {
	if f.getFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getFn(ctx, accountNumber)
}

type fakeDispatch struct {
	sendFn func(ctx context.Context, delivery gateway.Delivery) (*gateway.DispatchResult, error)
}

func (f *fakeDispatch) Send(ctx context.Context, delivery gateway.Delivery) (*gateway.DispatchResult, error) {
	if f.sendFn == nil {
		return &gateway.DispatchResult{StatusCode: 202}, nil
	}
	return f.sendFn(ctx, delivery)
}

type fakeDocumentStorage struct {
	storeFn func(ctx context.Context, content []byte, meta gateway.DocumentMetadata) (string, error)
}

func (f *fakeDocumentStorage) Store(ctx context.Context, content []byte, meta gateway.DocumentMetadata) (string, error) {
	if f.storeFn == nil {
		return "/tmp/proof.pdf", nil
	}
	return f.storeFn(ctx, content, meta)
}

func testBorrower() *gateway.Borrower {
	return &gateway.Borrower{
		LoanAccountNumber: "LN-1001",
		Name:              "Ayse Demir",
		Email:             "ayse@example.com",
		Phone:             "+905551112233",
		Address:           "Kadikoy, Istanbul",
	}
}

func mustAllocator(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, store repository.Store, clock Clock) *SequenceAllocator {
	t.Helper()
	allocator, err := NewSequenceAllocator(store, clock, 3, nil, nil)
	if err != nil {
		t.Fatalf("NewSequenceAllocator() error = %v", err)
	}
	return allocator
}
