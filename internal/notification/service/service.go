// Package service exposes a user's notification feed: listing, read
// toggles and the unread counter.
package service

import (
	"context"
	"errors"
	"log/slog"

	"isleport/internal/notification/models"
	"isleport/internal/notification/store"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/platform/sentinel"
)

// UnreadCache is the optional counter cache; a nil cache disables it.
type UnreadCache interface {
	Get(ctx context.Context, userID id.UserID) (int, bool, error)
	Set(ctx context.Context, userID id.UserID, count int) error
	Invalidate(ctx context.Context, userIDs ...id.UserID) error
}

type Service struct {
	store  store.Store
	cache  UnreadCache
	logger *slog.Logger
}

type Option func(*Service)

// WithUnreadCache enables the Redis-backed unread counter cache.
func WithUnreadCache(cache UnreadCache) Option {
	return func(s *Service) { s.cache = cache }
}

func New(store store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the actor's notifications, newest first.
func (s *Service) List(ctx context.Context, actor id.Actor, onlyUnread bool, limit, offset int) ([]*models.Notification, int, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.store.List(ctx, actor.UserID, onlyUnread, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return rows, total, nil
}

// MarkRead flags one of the actor's notifications as read. Another
// user's notification is indistinguishable from a missing one.
func (s *Service) MarkRead(ctx context.Context, actor id.Actor, notificationID id.NotificationID) error {
	if err := s.store.MarkRead(ctx, notificationID, actor.UserID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	s.invalidate(ctx, actor.UserID)
	return nil
}

// MarkAllRead flags all of the actor's unread notifications as read and
// returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, actor id.Actor) (int, error) {
	updated, err := s.store.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "mark all notifications read")
	}
	if updated > 0 {
		s.invalidate(ctx, actor.UserID)
	}
	return updated, nil
}

// UnreadCount returns the actor's unread counter, preferring the cache.
func (s *Service) UnreadCount(ctx context.Context, actor id.Actor) (int, error) {
	if s.cache != nil {
		count, hit, err := s.cache.Get(ctx, actor.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "unread cache read failed", "error", err)
		} else if hit {
			return count, nil
		}
	}

	count, err := s.store.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, actor.UserID, count); err != nil {
			s.logger.WarnContext(ctx, "unread cache write failed", "error", err)
		}
	}
	return count, nil
}

// InvalidateUnread drops cached counters after fan-out delivers new
// rows to the given users.
func (s *Service) InvalidateUnread(ctx context.Context, userIDs ...id.UserID) {
	s.invalidate(ctx, userIDs...)
}

func (s *Service) invalidate(ctx context.Context, userIDs ...id.UserID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.logger.WarnContext(ctx, "unread cache invalidation failed", "error", err)
	}
}
