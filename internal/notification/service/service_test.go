package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"isleport/internal/notification/models"
	"isleport/internal/notification/store"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// fakeCache records cache traffic and can simulate Redis failures.
type fakeCache struct {
	counts      map[id.UserID]int
	sets        int
	invalidated []id.UserID
	err         error
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: make(map[id.UserID]int)}
}

func (c *fakeCache) Get(_ context.Context, userID id.UserID) (int, bool, error) {
	if c.err != nil {
		return 0, false, c.err
	}
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *fakeCache) Set(_ context.Context, userID id.UserID, count int) error {
	if c.err != nil {
		return c.err
	}
	c.counts[userID] = count
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userIDs ...id.UserID) error {
	if c.err != nil {
		return c.err
	}
	for _, userID := range userIDs {
		delete(c.counts, userID)
	}
	c.invalidated = append(c.invalidated, userIDs...)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.InMemory
	cache *fakeCache
	svc   *Service

	actor id.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.cache = newFakeCache()
	s.svc = New(s.store, slog.New(slog.DiscardHandler), WithUnreadCache(s.cache))
	s.actor = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleUser}
}

func (s *ServiceSuite) deliver(userID id.UserID, title string, at time.Time) *models.Notification {
	n, err := models.New(id.NotificationID(uuid.New()), userID, title, "", at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.BulkInsert(s.ctx, []*models.Notification{n}))
	return n
}

func (s *ServiceSuite) TestListNewestFirstWithClampedLimit() {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.deliver(s.actor.UserID, "notice", base.Add(time.Duration(i)*time.Minute))
	}
	newest := s.deliver(s.actor.UserID, "latest", base.Add(time.Hour))

	rows, total, err := s.svc.List(s.ctx, s.actor, false, -5, 0)
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Require().NotEmpty(rows)
	s.Equal(newest.ID, rows[0].ID)
}

func (s *ServiceSuite) TestMarkReadNotFoundForForeignRow() {
	other := s.deliver(id.UserID(uuid.New()), "theirs", time.Now())

	err := s.svc.MarkRead(s.ctx, s.actor, other.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.cache.invalidated, "failed toggle must not invalidate")
}

func (s *ServiceSuite) TestMarkReadInvalidatesCache() {
	n := s.deliver(s.actor.UserID, "mine", time.Now())
	s.cache.counts[s.actor.UserID] = 1

	s.Require().NoError(s.svc.MarkRead(s.ctx, s.actor, n.ID))
	s.Equal([]id.UserID{s.actor.UserID}, s.cache.invalidated)
}

func (s *ServiceSuite) TestMarkAllRead() {
	s.deliver(s.actor.UserID, "one", time.Now())
	s.deliver(s.actor.UserID, "two", time.Now())

	updated, err := s.svc.MarkAllRead(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Equal(2, updated)
	s.Equal([]id.UserID{s.actor.UserID}, s.cache.invalidated)

	s.Run("nothing unread skips invalidation", func() {
		s.cache.invalidated = nil
		updated, err := s.svc.MarkAllRead(s.ctx, s.actor)
		s.Require().NoError(err)
		s.Zero(updated)
		s.Empty(s.cache.invalidated)
	})
}

func (s *ServiceSuite) TestUnreadCountCacheAside() {
	s.deliver(s.actor.UserID, "one", time.Now())

	count, err := s.svc.UnreadCount(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal(1, s.cache.sets, "miss populates the cache")

	// A stale cached value wins until invalidated.
	s.cache.counts[s.actor.UserID] = 9
	count, err = s.svc.UnreadCount(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Equal(9, count)
}

func (s *ServiceSuite) TestUnreadCountSurvivesCacheOutage() {
	s.deliver(s.actor.UserID, "one", time.Now())
	s.cache.err = errors.New("redis down")

	count, err := s.svc.UnreadCount(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestNoCacheConfigured() {
	svc := New(s.store, slog.New(slog.DiscardHandler))
	s.deliver(s.actor.UserID, "one", time.Now())

	count, err := svc.UnreadCount(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Equal(1, count)
}
