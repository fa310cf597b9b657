package store

import (
	"context"
	"sort"
	"sync"

	"isleport/internal/notification/models"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded notification store for tests and local
// development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[id.NotificationID]models.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.NotificationID]models.Notification)}
}

func (s *InMemory) BulkInsert(_ context.Context, notifications []*models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range notifications {
		if _, ok := s.rows[n.ID]; ok {
			return sentinel.ErrConflict
		}
	}
	for _, n := range notifications {
		s.rows[n.ID] = *n
	}
	return nil
}

func (s *InMemory) List(_ context.Context, userID id.UserID, onlyUnread bool, limit, offset int) ([]*models.Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Notification
	for _, n := range s.rows {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		row := n
		matched = append(matched, &row)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *InMemory) Find(_ context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.rows[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &n, nil
}

func (s *InMemory) MarkRead(_ context.Context, notificationID id.NotificationID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.rows[notificationID]
	if !ok || n.UserID != userID {
		return sentinel.ErrNotFound
	}
	n.IsRead = true
	s.rows[notificationID] = n
	return nil
}

func (s *InMemory) MarkAllRead(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int
	for notificationID, n := range s.rows {
		if n.UserID != userID || n.IsRead {
			continue
		}
		n.IsRead = true
		s.rows[notificationID] = n
		updated++
	}
	return updated, nil
}

func (s *InMemory) CountUnread(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	for _, n := range s.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
