//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"isleport/internal/notification/store"
	id "isleport/pkg/domain"
	"isleport/pkg/testutil/containers"
)

type UnreadCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.UnreadCache
}

func TestUnreadCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnreadCacheSuite))
}

func (s *UnreadCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = store.NewUnreadCache(s.redis.Client, time.Minute)
}

func (s *UnreadCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *UnreadCacheSuite) TestMissThenHit() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	_, hit, err := s.cache.Get(ctx, userID)
	s.Require().NoError(err)
	s.False(hit)

	s.Require().NoError(s.cache.Set(ctx, userID, 7))

	count, hit, err := s.cache.Get(ctx, userID)
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(7, count)
}

func (s *UnreadCacheSuite) TestZeroIsACachedValue() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	s.Require().NoError(s.cache.Set(ctx, userID, 0))

	count, hit, err := s.cache.Get(ctx, userID)
	s.Require().NoError(err)
	s.True(hit, "zero must be a hit, not a miss")
	s.Zero(count)
}

func (s *UnreadCacheSuite) TestInvalidateDropsOnlyGivenUsers() {
	ctx := context.Background()
	first := id.UserID(uuid.New())
	second := id.UserID(uuid.New())

	s.Require().NoError(s.cache.Set(ctx, first, 1))
	s.Require().NoError(s.cache.Set(ctx, second, 2))

	s.Require().NoError(s.cache.Invalidate(ctx, first))

	_, hit, err := s.cache.Get(ctx, first)
	s.Require().NoError(err)
	s.False(hit)

	count, hit, err := s.cache.Get(ctx, second)
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(2, count)
}

func (s *UnreadCacheSuite) TestInvalidateNoUsersIsNoop() {
	s.NoError(s.cache.Invalidate(context.Background()))
}
