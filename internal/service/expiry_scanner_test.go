package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExpiryScannerScanDuePassesClockAndLimit(t *testing.T) {
	t.Parallel()

	var (
		gotAsOf  time.Time
		gotLimit int
	)
	notices := &fakeNoticeRepo{
		expireDueFn: func(ctx context.Context, asOf time.Time, limit int) (int64, error) {
			gotAsOf = asOf
			gotLimit = limit
			return 3, nil
		},
	}

	scanner, err := NewExpiryScanner(notices, nil, fixedClock("2025-07-21T10:00:00Z"), time.Minute, 25, nil)
	if err != nil {
		t.Fatalf("NewExpiryScanner() error = %v", err)
	}

	if err := scanner.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}

	want := time.Date(2025, 7, 21, 10, 0, 0, 0, time.UTC)
	if !gotAsOf.Equal(want) {
		t.Fatalf("asOf = %s, want %s", gotAsOf, want)
	}
	if gotLimit != 25 {
		t.Fatalf("limit = %d, want 25", gotLimit)
	}
}

func TestExpiryScannerScanDuePropagatesError(t *testing.T) {
	t.Parallel()

	notices := &fakeNoticeRepo{
		expireDueFn: func(ctx context.Context, asOf time.Time, limit int) (int64, error) {
			return 0, errors.New("db unavailable")
		},
	}

	scanner, err := NewExpiryScanner(notices, nil, fixedClock("2025-07-21T10:00:00Z"), time.Minute, 100, nil)
	if err != nil {
		t.Fatalf("NewExpiryScanner() error = %v", err)
	}

	if err := scanner.scanDue(context.Background()); err == nil {
		t.Fatal("expected error from failing ExpireDue")
	}
}

func TestExpiryScannerStartRunsInitialScanAndStops(t *testing.T) {
	t.Parallel()

	scanned := make(chan struct{}, 1)
	notices := &fakeNoticeRepo{
		expireDueFn: func(ctx context.Context, asOf time.Time, limit int) (int64, error) {
			select {
			case scanned <- struct{}{}:
			default:
			}
			return 0, nil
		},
	}

	scanner, err := NewExpiryScanner(notices, nil, SystemClock(), time.Hour, 100, nil)
	if err != nil {
		t.Fatalf("NewExpiryScanner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- scanner.Start(ctx)
	}()

	select {
	case <-scanned:
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not run")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop on context cancellation")
	}
}
