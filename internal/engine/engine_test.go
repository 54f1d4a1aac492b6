package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/oib/internal/metrics"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
	"github.com/Veraticus/oib/internal/storage"
	"github.com/Veraticus/oib/internal/testutil"
)

var errStoreDown = errors.New("store down")

// failingStore rejects every write.
type failingStore struct {
	adds atomic.Int64
}

func (f *failingStore) Increment(ctx context.Context, kind model.CounterKind) (int64, error) {
	return f.Add(ctx, kind, 1)
}

func (f *failingStore) Add(_ context.Context, _ model.CounterKind, _ int64) (int64, error) {
	f.adds.Add(1)
	return 0, errStoreDown
}

func (f *failingStore) Stats(context.Context) (*model.Stats, error) { return nil, errStoreDown }
func (f *failingStore) Reset(context.Context) error                 { return errStoreDown }
func (f *failingStore) Close() error                                { return nil }

func TestValidateCountsNonEmptyInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage, WithSeed(1))
	ctx := context.Background()

	res := e.Validate(ctx, "69435151530")
	assert.True(t, res.Outcome.Valid)
	assert.Len(t, res.Steps, oib.PayloadLength)

	res = e.Validate(ctx, "69435151531")
	assert.Equal(t, oib.ReasonChecksumMismatch, res.Outcome.Reason)
	assert.Len(t, res.Steps, oib.PayloadLength)

	res = e.Validate(ctx, "12ab")
	assert.Equal(t, oib.ReasonNonDigit, res.Outcome.Reason)
	assert.Empty(t, res.Steps)

	res = e.Validate(ctx, "   ")
	assert.Equal(t, oib.ReasonEmpty, res.Outcome.Reason)

	stats := db.MustStats()
	assert.Equal(t, int64(3), stats.Validated)
	assert.Equal(t, int64(0), stats.Generated)
}

func TestGenerateCountsAndValidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage, WithSeed(7))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id, err := e.Generate(ctx)
		require.NoError(t, err)
		assert.True(t, oib.IsValid(id), id)
	}

	stats := db.MustStats()
	assert.Equal(t, int64(5), stats.Generated)
	assert.Equal(t, int64(0), stats.Validated)
}

func TestGenerateIsDeterministicWithSeed(t *testing.T) {
	a := New(nil, WithSeed(11))
	b := New(nil, WithSeed(11))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		x, err := a.Generate(ctx)
		require.NoError(t, err)
		y, err := b.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestCountingIsBestEffort(t *testing.T) {
	store := &failingStore{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := New(store, WithSeed(3), WithMetrics(m))
	ctx := context.Background()

	res := e.Validate(ctx, "69435151530")
	assert.True(t, res.Outcome.Valid)

	id, err := e.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, oib.IsValid(id))

	assert.Equal(t, int64(2), store.adds.Load())
	assert.InDelta(t, 1, promtest.ToFloat64(m.CounterErrors.WithLabelValues(string(model.CounterValidated))), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.CounterErrors.WithLabelValues(string(model.CounterGenerated))), 0)

	_, err = e.Stats(ctx)
	assert.ErrorIs(t, err, errStoreDown)
	assert.ErrorIs(t, e.Reset(ctx), errStoreDown)
}

func TestGenerateUsesInjectedFactory(t *testing.T) {
	e := New(nil, WithGeneratorFactory(func(int) *oib.Generator {
		return oib.NewGenerator(constSource(0))
	}))

	id, err := e.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000000001", id)
}

type constSource int

func (c constSource) Intn(int) int { return int(c) }

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := New(storage.NewMemoryCounter(), WithSeed(5), WithMetrics(m))
	ctx := context.Background()

	e.Validate(ctx, "69435151530")
	e.Validate(ctx, "69435151531")
	e.Validate(ctx, "123")
	_, err := e.Generate(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 1, promtest.ToFloat64(m.Validations.WithLabelValues("valid", "none")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.Validations.WithLabelValues("invalid", "CHECKSUM_MISMATCH")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.Validations.WithLabelValues("invalid", "WRONG_LENGTH")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.Generated), 0)
}

func TestTraceDoesNotCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)

	steps := e.Trace("69435151530")
	require.Len(t, steps, oib.PayloadLength)
	assert.Equal(t, int64(0), db.MustStats().Validated)
}

func TestCheckDigit(t *testing.T) {
	e := New(nil)

	d, err := e.CheckDigit("69 435 151 53")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = e.CheckDigit("69435")
	assert.ErrorIs(t, err, oib.ErrInvalidPayload)
}

func TestStatsAndReset(t *testing.T) {
	db := testutil.SetupTestDB(t).Seed(2, 3)
	e := New(db.Storage)
	ctx := context.Background()

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Generated)
	assert.Equal(t, int64(3), stats.Validated)

	require.NoError(t, e.Reset(ctx))
	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total())
}

func TestStatsWithoutStore(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total())
	require.NoError(t, e.Reset(ctx))

	_, err = e.StatsSince(ctx, time.Now())
	assert.ErrorIs(t, err, ErrHistoryUnsupported)
}

func TestStatsSince(t *testing.T) {
	e := New(storage.NewMemoryCounter(), WithSeed(9))
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	e.Validate(ctx, "69435151530")
	_, err := e.Generate(ctx)
	require.NoError(t, err)

	stats, err := e.StatsSince(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Generated)
	assert.Equal(t, int64(1), stats.Validated)

	stats, err = e.StatsSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total())
}

func TestGenerateBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage, WithSeed(21))

	var seen atomic.Int64
	ids, err := e.GenerateBatch(context.Background(), BatchOptions{
		Count:       250,
		Workers:     4,
		OnGenerated: func() { seen.Add(1) },
	})
	require.NoError(t, err)
	require.Len(t, ids, 250)
	for _, id := range ids {
		require.True(t, oib.IsValid(id), id)
	}
	assert.Equal(t, int64(250), seen.Load())
	assert.Equal(t, int64(250), db.MustStats().Generated)
}

func TestGenerateBatchIsDeterministicWithSeed(t *testing.T) {
	ctx := context.Background()
	opts := BatchOptions{Count: 100, Workers: 3}

	a, err := New(nil, WithSeed(4)).GenerateBatch(ctx, opts)
	require.NoError(t, err)
	b, err := New(nil, WithSeed(4)).GenerateBatch(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateBatchUnique(t *testing.T) {
	// Every worker draws from the same seed, so without deduplication the
	// batch would repeat itself.
	e := New(nil, WithGeneratorFactory(func(int) *oib.Generator {
		return oib.NewSeededGenerator(1)
	}))

	ids, err := e.GenerateBatch(context.Background(), BatchOptions{Count: 40, Workers: 4, Unique: true})
	require.NoError(t, err)
	require.Len(t, ids, 40)

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
		assert.True(t, oib.IsValid(id))
	}
	assert.Len(t, set, 40)
}

func TestGenerateBatchEdgeCases(t *testing.T) {
	e := New(nil, WithSeed(1))
	ctx := context.Background()

	ids, err := e.GenerateBatch(ctx, BatchOptions{Count: 0})
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = e.GenerateBatch(ctx, BatchOptions{Count: MaxBatchSize + 1})
	require.Error(t, err)

	ids, err = e.GenerateBatch(ctx, BatchOptions{Count: 2, Workers: 16})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestGenerateBatchCancelled(t *testing.T) {
	e := New(nil, WithSeed(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.GenerateBatch(ctx, BatchOptions{Count: 10, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
