package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "isleport/pkg/domain"
)

const unreadKeyPrefix = "isleport:unread:"

// UnreadCache keeps per-user unread counters in Redis so the badge
// endpoint avoids a COUNT(*) on every poll. Misses fall through to the
// store; writes invalidate rather than recompute.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UnreadCache{client: client, ttl: ttl}
}

// Get returns the cached count and whether the cache held one.
func (c *UnreadCache) Get(ctx context.Context, userID id.UserID) (int, bool, error) {
	raw, err := c.client.Get(ctx, unreadKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return count, true, nil
}

func (c *UnreadCache) Set(ctx context.Context, userID id.UserID, count int) error {
	return c.client.Set(ctx, unreadKeyPrefix+userID.String(), count, c.ttl).Err()
}

// Invalidate drops the cached counts for the given users. Used after
// read-state toggles and after fan-out delivers new rows.
func (c *UnreadCache) Invalidate(ctx context.Context, userIDs ...id.UserID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, unreadKeyPrefix+userID.String())
	}
	return c.client.Del(ctx, keys...).Err()
}
