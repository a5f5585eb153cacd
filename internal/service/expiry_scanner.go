package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/observability"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultExpiryScanInterval = time.Minute
	defaultExpiryScanLimit    = 100
)

// ExpiryScanner periodically moves SENT notices past their expiry date to
// EXPIRED. The flip itself is one guarded statement, so overlapping scanner
// instances cannot double-expire a notice.
type ExpiryScanner struct {
	notices  repository.NoticeRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
	clock    Clock
	interval time.Duration
	limit    int
}

func NewExpiryScanner(
	notices repository.NoticeRepository,
	metrics *observability.Metrics,
	clock Clock,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*ExpiryScanner, error) {
	if notices == nil {
		return nil, fmt.Errorf("notice repository is required")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = defaultExpiryScanInterval
	}
	if limit <= 0 {
		limit = defaultExpiryScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExpiryScanner{
		notices:  notices,
		metrics:  metrics,
		logger:   logger,
		clock:    clock,
		interval: interval,
		limit:    limit,
	}, nil
}

func (s *ExpiryScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-due notices do not wait for the first ticker edge.
	if err := s.scanDue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("expiry scanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("expiry scanner scan failed", zap.Error(err))
			}
		}
	}
}

func (s *ExpiryScanner) scanDue(ctx context.Context) error {
	expired, err := s.notices.ExpireDue(ctx, s.clock.Now().UTC(), s.limit)
	if err != nil {
		return fmt.Errorf("failed to expire due notices: %w", err)
	}

	if expired > 0 {
		s.metrics.AddNoticesExpired(int(expired))
		s.logger.Info("expired overdue notices", zap.Int64("count", expired))
	}

	return nil
}
