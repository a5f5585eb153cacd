package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/observability"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"go.uber.org/zap"
)

const defaultAllocatorMaxAttempts = 3

// SequenceAllocator hands out date-partitioned sequential identifiers of the
// form PREFIX-YYYYMMDD[-CATEGORY]-NNNN. The counter bump is a single atomic
// statement; the bounded retry loop only absorbs transient serialization
// failures under stricter isolation levels.
type SequenceAllocator struct {
	store       repository.Store
	clock       Clock
	maxAttempts int
	metrics     *observability.Metrics
	logger      *zap.Logger
}

func NewSequenceAllocator(
	store repository.Store,
	clock Clock,
	maxAttempts int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*SequenceAllocator, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if maxAttempts < 1 {
		maxAttempts = defaultAllocatorMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SequenceAllocator{
		store:       store,
		clock:       clock,
		maxAttempts: maxAttempts,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// Allocate reserves the next number for (prefix, category) on today's
// partition and returns the formatted identifier. Every call consumes a
// number: callers that fail after allocation leave a gap, never a duplicate.
func (a *SequenceAllocator) Allocate(ctx context.Context, prefix, category string) (string, error) {
	return a.AllocateIn(ctx, a.store.Sequences(), prefix, category)
}

// AllocateIn runs the allocation against the given repository, which may be
// bound to an enclosing transaction so the identifier and the row that uses
// it commit together.
func (a *SequenceAllocator) AllocateIn(ctx context.Context, sequences repository.SequenceRepository, prefix, category string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if sequences == nil {
		return "", fmt.Errorf("sequence repository is required")
	}

	prefix = strings.TrimSpace(prefix)
	category = strings.TrimSpace(category)
	if err := domain.ValidatePrefix(prefix); err != nil {
		return "", err
	}
	if err := domain.ValidateCategoryCode(category); err != nil {
		return "", err
	}

	dateStamp := a.clock.Now().UTC().Format(domain.DateStampLayout)

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		n, err := sequences.Increment(ctx, prefix, category, dateStamp)
		if err == nil {
			return domain.FormatSequenceID(prefix, dateStamp, category, n), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryableAllocationError(err) {
			return "", err
		}

		lastErr = err
		a.metrics.IncAllocationRetry(prefix)
		a.logger.Warn("sequence allocation attempt failed",
			zap.String("prefix", prefix),
			zap.String("category", category),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	a.metrics.IncAllocationConflict(prefix)
	return "", fmt.Errorf("%w: allocation for %s exhausted %d attempts: %v",
		domain.ErrAllocationConflict, domain.PartitionKey(prefix, category, dateStamp), a.maxAttempts, lastErr)
}

// Peek reads today's counter state for (prefix, category) without allocating.
// A missing row means nothing was allocated yet today.
func (a *SequenceAllocator) Peek(ctx context.Context, prefix, category string) (*domain.SequenceCounter, error) {
	prefix = strings.TrimSpace(prefix)
	category = strings.TrimSpace(category)
	if err := domain.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategoryCode(category); err != nil {
		return nil, err
	}

	dateStamp := a.clock.Now().UTC().Format(domain.DateStampLayout)

	counter, err := a.store.Sequences().Get(ctx, prefix, category, dateStamp)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.SequenceCounter{
			PartitionKey: domain.PartitionKey(prefix, category, dateStamp),
			Prefix:       prefix,
			CategoryCode: category,
			DateStamp:    dateStamp,
			CurrentValue: 0,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return counter, nil
}

// IsUnique reports whether a formatted identifier is absent from the entity
// table owning its prefix.
func (a *SequenceAllocator) IsUnique(ctx context.Context, code string) (bool, error) {
	parsed, err := domain.ParseSequenceID(code)
	if err != nil {
		return false, err
	}

	exists, err := a.store.Codes().Exists(ctx, parsed.Prefix, strings.TrimSpace(code))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func isRetryableAllocationError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock detected")
}
