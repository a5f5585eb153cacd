package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/repository"
)

const defaultSuppressionWindowDays = 7

// DuplicateGuard suppresses re-issuing a notice for the same delinquency. A
// new notice for the same (loan account, DPD bucket) is rejected while the
// previous one's generation date is inside the window. The check runs before
// any sequence allocation so rejected requests consume no numbers.
type DuplicateGuard struct {
	notices    repository.NoticeRepository
	windowDays int
	clock      Clock
}

func NewDuplicateGuard(notices repository.NoticeRepository, windowDays int, clock Clock) (*DuplicateGuard, error) {
	if notices == nil {
		return nil, fmt.Errorf("notice repository is required")
	}
	if windowDays < 1 {
		windowDays = defaultSuppressionWindowDays
	}
	if clock == nil {
		clock = SystemClock()
	}

	return &DuplicateGuard{
		notices:    notices,
		windowDays: windowDays,
		clock:      clock,
	}, nil
}

func (g *DuplicateGuard) Check(ctx context.Context, loanAccountNumber string, dpdDays int) error {
	return g.CheckIn(ctx, g.notices, loanAccountNumber, dpdDays)
}

// CheckIn runs the window check against the given repository, so callers can
// re-check inside a transaction against the tx-scoped notice repository and
// close the gap between a pre-flight check and the insert.
func (g *DuplicateGuard) CheckIn(ctx context.Context, notices repository.NoticeRepository, loanAccountNumber string, dpdDays int) error {
	loanAccountNumber = strings.TrimSpace(loanAccountNumber)
	if loanAccountNumber == "" {
		return fmt.Errorf("%w: loan account number is required", domain.ErrValidation)
	}

	now := g.clock.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -g.windowDays)

	existing, err := notices.LastGeneratedSince(ctx, loanAccountNumber, dpdDays, since)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: notice %s already generated for account %s at %d dpd on %s",
		domain.ErrDuplicateNotice,
		existing.NoticeCode,
		loanAccountNumber,
		dpdDays,
		existing.NoticeGenerationDate.Format("2006-01-02"),
	)
}
