package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
)

func fixedClock(value string) *fakeClock {
	parsed, err := time.Parse("2006-01-02T15:04:05Z", value)
	if err != nil {
		panic(err)
	}
	return &fakeClock{now: parsed.UTC()}
}

func TestSequenceAllocatorAllocateFormatsID(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, fixedClock("2025-07-21T10:00:00Z"))

	id, err := allocator.Allocate(context.Background(), "LC", "MIC")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if id != "LC-20250721-MIC-0001" {
		t.Fatalf("id = %s, want LC-20250721-MIC-0001", id)
	}

	id, err = allocator.Allocate(context.Background(), "LC", "MIC")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if id != "LC-20250721-MIC-0002" {
		t.Fatalf("id = %s, want LC-20250721-MIC-0002", id)
	}
}

func TestSequenceAllocatorIndependentPartitions(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, fixedClock("2025-07-21T10:00:00Z"))

	first, err := allocator.Allocate(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Allocate(PLN) error = %v", err)
	}
	second, err := allocator.Allocate(context.Background(), "ACKN", "")
	if err != nil {
		t.Fatalf("Allocate(ACKN) error = %v", err)
	}

	if first != "PLN-20250721-0001" {
		t.Fatalf("first = %s, want PLN-20250721-0001", first)
	}
	if second != "ACKN-20250721-0001" {
		t.Fatalf("second = %s, want ACKN-20250721-0001", second)
	}
}

func TestSequenceAllocatorDayRollover(t *testing.T) {
	t.Parallel()

	clock := fixedClock("2025-07-21T23:59:59Z")
	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, clock)

	beforeMidnight, err := allocator.Allocate(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if beforeMidnight != "PLN-20250721-0001" {
		t.Fatalf("id = %s, want PLN-20250721-0001", beforeMidnight)
	}

	clock.now = clock.now.Add(time.Second)

	afterMidnight, err := allocator.Allocate(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if afterMidnight != "PLN-20250722-0001" {
		t.Fatalf("id = %s, want PLN-20250722-0001 (numbering restarts)", afterMidnight)
	}
}

func TestSequenceAllocatorInvalidInput(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, fixedClock("2025-07-21T10:00:00Z"))

	testCases := []struct {
		name     string
		prefix   string
		category string
	}{
		{name: "lowercase prefix", prefix: "lc", category: ""},
		{name: "one char prefix", prefix: "X", category: ""},
		{name: "too long prefix", prefix: "ABCDEFGHIJK", category: ""},
		{name: "prefix with dash", prefix: "LC-X", category: ""},
		{name: "bad category", prefix: "LC", category: "m!c"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := allocator.Allocate(context.Background(), tc.prefix, tc.category)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Allocate(%q, %q) error = %v, want ErrValidation", tc.prefix, tc.category, err)
			}
		})
	}
}

func TestSequenceAllocatorRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	sequences := &fakeSequenceRepo{
		incrementFn: func(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
			attempts++
			if attempts < 3 {
				return 0, errors.New("ERROR: could not serialize access due to concurrent update")
			}
			return 7, nil
		},
	}

	allocator := mustAllocator(t, &fakeStore{sequences: sequences}, fixedClock("2025-07-21T10:00:00Z"))

	id, err := allocator.Allocate(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if id != "PLN-20250721-0007" {
		t.Fatalf("id = %s, want PLN-20250721-0007", id)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSequenceAllocatorExhaustsAttempts(t *testing.T) {
	t.Parallel()

	sequences := &fakeSequenceRepo{
		incrementFn: func(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
			return 0, errors.New("deadlock detected")
		},
	}

	allocator := mustAllocator(t, &fakeStore{sequences: sequences}, fixedClock("2025-07-21T10:00:00Z"))

	_, err := allocator.Allocate(context.Background(), "PLN", "")
	if !errors.Is(err, domain.ErrAllocationConflict) {
		t.Fatalf("Allocate() error = %v, want ErrAllocationConflict", err)
	}
}

func TestSequenceAllocatorPermanentErrorNoRetry(t *testing.T) {
	t.Parallel()

	attempts := 0
	sequences := &fakeSequenceRepo{
		incrementFn: func(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
			attempts++
			return 0, errors.New("connection refused")
		},
	}

	allocator := mustAllocator(t, &fakeStore{sequences: sequences}, fixedClock("2025-07-21T10:00:00Z"))

	_, err := allocator.Allocate(context.Background(), "PLN", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrAllocationConflict) {
		t.Fatalf("permanent errors must not be reported as allocation conflicts: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestSequenceAllocatorConcurrentAllocationsAreUnique(t *testing.T) {
	t.Parallel()

	const workers = 50

	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, fixedClock("2025-07-21T10:00:00Z"))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, workers)
	)

	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			id, err := allocator.Allocate(context.Background(), "PLN", "")
			if err != nil {
				errs <- err
				return
			}

			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Allocate() error = %v", err)
	}

	if len(ids) != workers {
		t.Fatalf("unique ids = %d, want %d", len(ids), workers)
	}

	// The allocated range must be contiguous 1..workers with no gaps.
	for n := 1; n <= workers; n++ {
		expected := fmt.Sprintf("PLN-20250721-%04d", n)
		if _, ok := ids[expected]; !ok {
			t.Fatalf("missing id %s in allocated set", expected)
		}
	}
}

func TestSequenceAllocatorSequenceGrowsPastPadding(t *testing.T) {
	t.Parallel()

	sequences := &fakeSequenceRepo{
		incrementFn: func(ctx context.Context, prefix, category, dateStamp string) (int64, error) {
			return 10000, nil
		},
	}

	allocator := mustAllocator(t, &fakeStore{sequences: sequences}, fixedClock("2025-07-21T10:00:00Z"))

	id, err := allocator.Allocate(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if id != "PLN-20250721-10000" {
		t.Fatalf("id = %s, want PLN-20250721-10000 (no truncation)", id)
	}
}

func TestSequenceAllocatorPeek(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sequences: newMemSequenceRepo()}
	allocator := mustAllocator(t, store, fixedClock("2025-07-21T10:00:00Z"))

	counter, err := allocator.Peek(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if counter.CurrentValue != 0 {
		t.Fatalf("CurrentValue = %d, want 0 before any allocation", counter.CurrentValue)
	}

	if _, err := allocator.Allocate(context.Background(), "PLN", ""); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	counter, err = allocator.Peek(context.Background(), "PLN", "")
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if counter.CurrentValue != 1 {
		t.Fatalf("CurrentValue = %d, want 1", counter.CurrentValue)
	}
}

func TestSequenceAllocatorIsUnique(t *testing.T) {
	t.Parallel()

	codes := &fakeCodeRegistry{
		existsFn: func(ctx context.Context, prefix, code string) (bool, error) {
			return code == "PLN-20250721-0001", nil
		},
	}

	allocator := mustAllocator(t, &fakeStore{codes: codes}, fixedClock("2025-07-21T10:00:00Z"))

	unique, err := allocator.IsUnique(context.Background(), "PLN-20250721-0001")
	if err != nil {
		t.Fatalf("IsUnique() error = %v", err)
	}
	if unique {
		t.Fatal("existing code should not be unique")
	}

	unique, err = allocator.IsUnique(context.Background(), "PLN-20250721-0002")
	if err != nil {
		t.Fatalf("IsUnique() error = %v", err)
	}
	if !unique {
		t.Fatal("absent code should be unique")
	}

	if _, err := allocator.IsUnique(context.Background(), "not-an-id"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("IsUnique(malformed) error = %v, want ErrValidation", err)
	}
}
