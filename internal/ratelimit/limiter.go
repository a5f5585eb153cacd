package ratelimit

import "context"

// RateLimiter controls outbound dispatch throughput per communication mode.
type RateLimiter interface {
	Allow(ctx context.Context, mode string) (bool, error)
	Wait(ctx context.Context, mode string) error
}

// Unlimited allows every dispatch. Used when no Redis backend is configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

func (Unlimited) Wait(context.Context, string) error { return nil }
