//go:build integration

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/storage"
	"github.com/Veraticus/oib/internal/testutil/containers"
)

type RedisCounterSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	counter *storage.RedisCounter
}

func TestRedisCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterSuite))
}

func (s *RedisCounterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.counter = storage.NewRedisCounter(s.redis.Client, storage.WithKeyPrefix("test:"))
}

func (s *RedisCounterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCounterSuite) TestIncrementAndStats() {
	ctx := context.Background()

	n, err := s.counter.Increment(ctx, model.CounterGenerated)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.counter.Increment(ctx, model.CounterGenerated)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.counter.Increment(ctx, model.CounterValidated)
	s.Require().NoError(err)

	stats, err := s.counter.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), stats.Generated)
	s.Equal(int64(1), stats.Validated)
	s.False(stats.UpdatedAt.IsZero())
}

func (s *RedisCounterSuite) TestStatsOnEmptyDatabase() {
	stats, err := s.counter.Stats(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(0), stats.Total())
	s.True(stats.UpdatedAt.IsZero())
}

func (s *RedisCounterSuite) TestReset() {
	ctx := context.Background()
	_, err := s.counter.Increment(ctx, model.CounterValidated)
	s.Require().NoError(err)

	s.Require().NoError(s.counter.Reset(ctx))

	stats, err := s.counter.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), stats.Total())
}

func (s *RedisCounterSuite) TestKeysArePrefixed() {
	ctx := context.Background()
	_, err := s.counter.Increment(ctx, model.CounterGenerated)
	s.Require().NoError(err)

	val, err := s.redis.Client.Get(ctx, "test:oib:stats:generated").Result()
	s.Require().NoError(err)
	s.Equal("1", val)
}

func (s *RedisCounterSuite) TestHealth() {
	s.NoError(s.counter.Health(context.Background()))
}
