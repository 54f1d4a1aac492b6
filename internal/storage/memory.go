package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/oib/internal/model"
)

// MemoryCounter keeps counters in process memory. Totals vanish on exit.
type MemoryCounter struct {
	now    func() time.Time
	events []memoryEvent
	stats  model.Stats
	mu     sync.Mutex
}

type memoryEvent struct {
	at    time.Time
	kind  model.CounterKind
	count int64
}

// NewMemoryCounter creates an empty in-memory counter store.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now}
}

// Increment adds one to the counter and returns the new total.
func (m *MemoryCounter) Increment(ctx context.Context, kind model.CounterKind) (int64, error) {
	return m.Add(ctx, kind, 1)
}

// Add adds delta to the counter and returns the new total.
func (m *MemoryCounter) Add(ctx context.Context, kind model.CounterKind, delta int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateKind(kind); err != nil {
		return 0, err
	}
	if err := validateDelta(delta); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.events = append(m.events, memoryEvent{kind: kind, at: now, count: delta})
	m.stats.UpdatedAt = now
	total := m.stats.Get(kind) + delta
	applyTotal(&m.stats, kind, total)
	return total, nil
}

// Stats returns a copy of the current totals.
func (m *MemoryCounter) Stats(ctx context.Context) (*model.Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats
	return &stats, nil
}

// StatsSince counts the events recorded at or after since.
func (m *MemoryCounter) StatsSince(ctx context.Context, since time.Time) (*model.Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &model.Stats{}
	for _, ev := range m.events {
		if ev.at.Before(since) {
			continue
		}
		applyTotal(stats, ev.kind, stats.Get(ev.kind)+ev.count)
		if ev.at.After(stats.UpdatedAt) {
			stats.UpdatedAt = ev.at
		}
	}
	return stats, nil
}

// Reset zeroes every counter.
func (m *MemoryCounter) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = model.Stats{UpdatedAt: m.now()}
	m.events = nil
	return nil
}

// Close is a no-op.
func (m *MemoryCounter) Close() error {
	return nil
}
