package store

import (
	"context"

	"isleport/internal/notification/models"
	id "isleport/pkg/domain"
)

// Store persists notifications. BulkInsert is the only write path for
// new rows; the fan-out engine is its only caller.
type Store interface {
	// BulkInsert persists all rows or none.
	BulkInsert(ctx context.Context, notifications []*models.Notification) error
	List(ctx context.Context, userID id.UserID, onlyUnread bool, limit, offset int) ([]*models.Notification, int, error)
	Find(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
	CountUnread(ctx context.Context, userID id.UserID) (int, error)
}
