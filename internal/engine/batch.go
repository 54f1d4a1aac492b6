package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/oib/internal/model"
)

// MaxBatchSize caps a single batch request.
const MaxBatchSize = 100_000

// BatchOptions controls GenerateBatch.
type BatchOptions struct {
	// OnGenerated is called once per identifier, from worker goroutines.
	OnGenerated func()
	Count       int
	Workers     int
	Unique      bool
}

// GenerateBatch produces opts.Count identifiers in parallel. Every worker owns
// its own generator, so no random source is shared between goroutines. For a
// seeded engine the output is deterministic for a given Count and Workers.
func (e *Engine) GenerateBatch(ctx context.Context, opts BatchOptions) ([]string, error) {
	if opts.Count <= 0 {
		return nil, nil
	}
	if opts.Count > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds maximum of %d", opts.Count, MaxBatchSize)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Count {
		workers = opts.Count
	}

	start := time.Now()
	ids := make([]string, opts.Count)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (opts.Count + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, opts.Count)
		if lo >= hi {
			break
		}
		gen := e.newGen(w)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				id := gen.Generate()
				if err := selfCheck(id); err != nil {
					return err
				}
				ids[i] = id
				if opts.OnGenerated != nil {
					opts.OnGenerated()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch generation failed: %w", err)
	}

	if opts.Unique {
		ids = e.dedupe(ids)
	}

	e.metrics.AddGenerated(len(ids))
	e.count(ctx, model.CounterGenerated, int64(len(ids)))
	e.metrics.ObserveDuration("batch", time.Since(start))
	return ids, nil
}

// dedupe drops repeats, keeping first occurrences in order, and tops the
// batch back up from the engine's own generator.
func (e *Engine) dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	want := len(ids)
	e.genMu.Lock()
	defer e.genMu.Unlock()
	for len(out) < want {
		id := e.gen.Generate()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
