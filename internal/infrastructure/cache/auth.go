package cache

import (
	"context"
	"strconv"
	"time"
)

const (
	revokedPrefix  = "auth:revoked:"
	activityPrefix = "activity:"

	// ActivityWindow bounds how often last_activity_at is written per user.
	ActivityWindow = 5 * time.Minute
)

// TokenDenylist stores revoked token ids until their natural expiry.
type TokenDenylist struct {
	redis *Redis
}

func NewTokenDenylist(r *Redis) *TokenDenylist {
	return &TokenDenylist{redis: r}
}

func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	_, err := d.redis.SetIfNotExists(ctx, revokedPrefix+tokenID, "1", ttl)
	return err
}

// IsRevoked reports false when Redis is down; logout is best effort there.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return d.redis.Exists(ctx, revokedPrefix+tokenID)
}

type ActivityThrottle struct {
	redis  *Redis
	window time.Duration
}

func NewActivityThrottle(r *Redis) *ActivityThrottle {
	return &ActivityThrottle{redis: r, window: ActivityWindow}
}

// Allow returns true at most once per window for a user. Without Redis
// there is nothing to throttle on, so every call is allowed.
func (t *ActivityThrottle) Allow(ctx context.Context, userID int64) bool {
	if !t.redis.Available() {
		return true
	}
	ok, err := t.redis.SetIfNotExists(ctx, activityPrefix+strconv.FormatInt(userID, 10), "1", t.window)
	if err != nil {
		return false
	}
	return ok
}
