package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/oib/internal/model"
)

const (
	// Redis key prefix for counters.
	counterKeyPrefix = "oib:stats:"
	updatedAtKey     = counterKeyPrefix + "updated_at"
)

// RedisCounter is a Redis-backed counter store, for deployments where several
// processes share the same totals.
type RedisCounter struct {
	client *redis.Client
	now    func() time.Time
	prefix string
}

// RedisCounterOption configures a RedisCounter instance.
type RedisCounterOption func(*RedisCounter)

// WithKeyPrefix namespaces all counter keys, e.g. per environment.
func WithKeyPrefix(prefix string) RedisCounterOption {
	return func(c *RedisCounter) {
		c.prefix = prefix
	}
}

// NewRedisCounter constructs a Redis-backed counter store.
func NewRedisCounter(client *redis.Client, opts ...RedisCounterOption) *RedisCounter {
	c := &RedisCounter{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCounter) key(kind model.CounterKind) string {
	return c.prefix + counterKeyPrefix + string(kind)
}

// Increment adds one to the counter and returns the new total.
func (c *RedisCounter) Increment(ctx context.Context, kind model.CounterKind) (int64, error) {
	return c.Add(ctx, kind, 1)
}

// Add atomically bumps the counter with INCRBY and stamps the update time.
func (c *RedisCounter) Add(ctx context.Context, kind model.CounterKind, delta int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateKind(kind); err != nil {
		return 0, err
	}
	if err := validateDelta(delta); err != nil {
		return 0, err
	}

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, c.key(kind), delta)
		pipe.Set(ctx, c.prefix+updatedAtKey, c.now().UTC().Unix(), 0)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s counter: %w", kind, err)
	}
	return incr.Val(), nil
}

// Stats reads all counters in one MGET.
func (c *RedisCounter) Stats(ctx context.Context) (*model.Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(model.CounterKinds)+1)
	for _, kind := range model.CounterKinds {
		keys = append(keys, c.key(kind))
	}
	keys = append(keys, c.prefix+updatedAtKey)

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read counters: %w", err)
	}

	stats := &model.Stats{}
	for i, kind := range model.CounterKinds {
		n, err := parseRedisInt(vals[i])
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", kind, err)
		}
		applyTotal(stats, kind, n)
	}
	if ts, err := parseRedisInt(vals[len(vals)-1]); err == nil && ts > 0 {
		stats.UpdatedAt = time.Unix(ts, 0).UTC()
	}
	return stats, nil
}

// Reset deletes every counter key.
func (c *RedisCounter) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	keys := []string{c.prefix + updatedAtKey}
	for _, kind := range model.CounterKinds {
		keys = append(keys, c.key(kind))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset counters: %w", err)
	}
	return nil
}

// Health checks if the Redis connection is healthy.
func (c *RedisCounter) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCounter) Close() error {
	return c.client.Close()
}

var errUnexpectedRedisValue = errors.New("unexpected redis value")

// parseRedisInt converts an MGET slot; missing keys come back as nil.
func parseRedisInt(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errUnexpectedRedisValue, val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", errUnexpectedRedisValue, v)
	}
}
