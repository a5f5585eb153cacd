package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
)

func TestDuplicateGuardAllowsFirstNotice(t *testing.T) {
	t.Parallel()

	notices := &fakeNoticeRepo{
		lastGeneratedSinceFn: func(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error) {
			return nil, domain.ErrNotFound
		},
	}

	guard, err := NewDuplicateGuard(notices, 7, fixedClock("2025-07-21T10:00:00Z"))
	if err != nil {
		t.Fatalf("NewDuplicateGuard() error = %v", err)
	}

	if err := guard.Check(context.Background(), "LN-1001", 60); err != nil {
		t.Fatalf("Check() error = %v, want nil", err)
	}
}

func TestDuplicateGuardSuppressesWithinWindow(t *testing.T) {
	t.Parallel()

	existing := &domain.LegalNotice{
		NoticeCode:           "PLN-20250718-0003",
		LoanAccountNumber:    "LN-1001",
		DPDDays:              60,
		NoticeGenerationDate: time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
	}

	notices := &fakeNoticeRepo{
		lastGeneratedSinceFn: func(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error) {
			if loanAccountNumber != "LN-1001" {
				t.Fatalf("loanAccountNumber = %s, want LN-1001", loanAccountNumber)
			}
			if dpdDays != 60 {
				t.Fatalf("dpdDays = %d, want 60", dpdDays)
			}
			return existing, nil
		},
	}

	guard, err := NewDuplicateGuard(notices, 7, fixedClock("2025-07-21T10:00:00Z"))
	if err != nil {
		t.Fatalf("NewDuplicateGuard() error = %v", err)
	}

	err = guard.Check(context.Background(), "LN-1001", 60)
	if !errors.Is(err, domain.ErrDuplicateNotice) {
		t.Fatalf("Check() error = %v, want ErrDuplicateNotice", err)
	}
}

func TestDuplicateGuardWindowLowerBound(t *testing.T) {
	t.Parallel()

	var gotSince time.Time
	notices := &fakeNoticeRepo{
		lastGeneratedSinceFn: func(ctx context.Context, loanAccountNumber string, dpdDays int, since time.Time) (*domain.LegalNotice, error) {
			gotSince = since
			return nil, domain.ErrNotFound
		},
	}

	guard, err := NewDuplicateGuard(notices, 7, fixedClock("2025-07-21T15:30:00Z"))
	if err != nil {
		t.Fatalf("NewDuplicateGuard() error = %v", err)
	}

	if err := guard.Check(context.Background(), "LN-1001", 60); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	// 7 days back from today's midnight: a notice generated on the 14th is
	// still inside the window, one from the 13th is not.
	want := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	if !gotSince.Equal(want) {
		t.Fatalf("since = %s, want %s", gotSince, want)
	}
}

func TestDuplicateGuardRequiresLoanAccount(t *testing.T) {
	t.Parallel()

	guard, err := NewDuplicateGuard(&fakeNoticeRepo{}, 7, fixedClock("2025-07-21T10:00:00Z"))
	if err != nil {
		t.Fatalf("NewDuplicateGuard() error = %v", err)
	}

	if err := guard.Check(context.Background(), "  ", 60); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Check() error = %v, want ErrValidation", err)
	}
}
