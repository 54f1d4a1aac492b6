// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/oib/internal/model"
)

// CounterStore persists usage counters.
type CounterStore interface {
	// Increment adds one to the counter and returns the new total.
	Increment(ctx context.Context, kind model.CounterKind) (int64, error)
	// Add adds delta (which must be positive) and returns the new total.
	Add(ctx context.Context, kind model.CounterKind, delta int64) (int64, error)
	// Stats returns all counter totals.
	Stats(ctx context.Context) (*model.Stats, error)
	// Reset sets every counter back to zero.
	Reset(ctx context.Context) error
	Close() error
}

// HistoryStore is implemented by counter stores that keep individual events.
type HistoryStore interface {
	StatsSince(ctx context.Context, since time.Time) (*model.Stats, error)
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
