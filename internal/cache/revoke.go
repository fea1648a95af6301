package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedTokenPrefix is the Redis key prefix for deny-listed access token ids.
const revokedTokenPrefix = "auth:revoked:"

// RevokeToken deny-lists an access token id until ttl elapses.
// A non-positive ttl means the token already expired and nothing is stored.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether an access token id has been deny-listed.
func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := c.client.Get(ctx, revokedTokenKey(tokenID)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("check revoked token: %w", err)
}

func revokedTokenKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}
