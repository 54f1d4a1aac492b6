// Package engine drives the OIB checksum core on behalf of the CLI, the TUI
// and the HTTP API. It adds what the pure core deliberately leaves out: usage
// counting, metrics and serialized access to the random source.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/oib/internal/common"
	"github.com/Veraticus/oib/internal/metrics"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
	"github.com/Veraticus/oib/internal/service"
)

// ErrHistoryUnsupported is returned by StatsSince when the store keeps no events.
var ErrHistoryUnsupported = errors.New("counter store does not keep history")

// Result is a validation outcome together with its calculation trace. Steps
// is empty unless the input had exactly eleven digits.
type Result struct {
	Steps   []oib.Step
	Outcome oib.Outcome
}

// Engine coordinates OIB operations with usage counting.
type Engine struct {
	store   service.CounterStore
	metrics *metrics.Metrics
	newGen  func(worker int) *oib.Generator
	gen     *oib.Generator
	genMu   sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records Prometheus metrics for every operation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSeed makes generation deterministic. Worker w of a batch uses seed+w+1.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.newGen = func(worker int) *oib.Generator {
			return oib.NewSeededGenerator(seed + int64(worker) + 1)
		}
		e.gen = oib.NewSeededGenerator(seed)
	}
}

// WithGeneratorFactory injects the generator used by each batch worker and,
// with worker -1, by single generations.
func WithGeneratorFactory(factory func(worker int) *oib.Generator) Option {
	return func(e *Engine) {
		e.newGen = factory
		e.gen = factory(-1)
	}
}

// New creates an engine. A nil store disables counting.
func New(store service.CounterStore, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.newGen == nil {
		e.newGen = func(int) *oib.Generator { return oib.NewRandomGenerator() }
	}
	if e.gen == nil {
		e.gen = e.newGen(-1)
	}
	return e
}

// Validate checks input and returns the outcome with its trace. Any
// non-empty input counts as a validation, whatever the result.
func (e *Engine) Validate(ctx context.Context, input string) Result {
	start := time.Now()
	out := oib.Validate(input)
	res := Result{Outcome: out, Steps: oib.Trace(input)}

	e.metrics.ObserveValidation(out.Valid, string(out.Reason))
	if out.Reason != oib.ReasonEmpty {
		e.count(ctx, model.CounterValidated, 1)
	}
	e.metrics.ObserveDuration("validate", time.Since(start))

	slog.Debug("Validated OIB",
		"valid", out.Valid,
		"reason", out.Reason.String(),
		"length", out.Length)
	return res
}

// Trace returns the calculation steps for input without counting anything.
func (e *Engine) Trace(input string) []oib.Step {
	start := time.Now()
	steps := oib.Trace(input)
	e.metrics.ObserveDuration("trace", time.Since(start))
	return steps
}

// CheckDigit computes the check digit for an untrusted payload.
func (e *Engine) CheckDigit(payload string) (int, error) {
	return oib.CheckDigitOf(oib.Strip(payload))
}

// Generate returns one fresh identifier. The identifier is re-validated
// before it is handed out and only then counted.
func (e *Engine) Generate(ctx context.Context) (string, error) {
	start := time.Now()

	e.genMu.Lock()
	id := e.gen.Generate()
	e.genMu.Unlock()

	if err := selfCheck(id); err != nil {
		return "", err
	}

	e.metrics.AddGenerated(1)
	e.count(ctx, model.CounterGenerated, 1)
	e.metrics.ObserveDuration("generate", time.Since(start))
	return id, nil
}

// Stats returns the usage totals.
func (e *Engine) Stats(ctx context.Context) (*model.Stats, error) {
	if e.store == nil {
		return &model.Stats{}, nil
	}
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

// StatsSince returns the usage recorded since the given time.
func (e *Engine) StatsSince(ctx context.Context, since time.Time) (*model.Stats, error) {
	history, ok := e.store.(service.HistoryStore)
	if !ok {
		return nil, ErrHistoryUnsupported
	}
	stats, err := history.StatsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats since %s: %w", since.Format(time.RFC3339), err)
	}
	return stats, nil
}

// Reset zeroes all usage counters.
func (e *Engine) Reset(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	slog.Info("Usage counters reset")
	return nil
}

// count persists usage. Counting is best effort: a broken store must not
// stop anyone from validating or generating, so failures are logged.
func (e *Engine) count(ctx context.Context, kind model.CounterKind, n int64) {
	if e.store == nil || n == 0 {
		return
	}
	if _, err := e.store.Add(ctx, kind, n); err != nil {
		e.metrics.IncrementCounterError(string(kind))
		common.LogError(err, "Failed to update usage counter", common.Fields{
			"kind":  kind,
			"delta": n,
		})
	}
}

func selfCheck(id string) error {
	if out := oib.Validate(id); !out.Valid {
		return fmt.Errorf("%w: %s (%s)", common.ErrGenerationFailed, id, out.Reason)
	}
	return nil
}
