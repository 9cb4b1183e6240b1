package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 15 * time.Minute

// SessionCache maps session tokens to user ids in Redis.
// Key format: session:<token>. Entries are advisory: the auth service
// re-verifies every hit against the user store, so the TTL only bounds
// how long a dead entry lingers, never how long a session lives.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a SessionCache wrapping the given Redis client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// Put records the token's owner.
func (c *SessionCache) Put(ctx context.Context, token, userID string) error {
	if err := c.client.Set(ctx, c.key(token), userID, cacheTTL).Err(); err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}

// Lookup returns the cached owner id, or "" when the token is not cached.
func (c *SessionCache) Lookup(ctx context.Context, token string) (string, error) {
	val, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session cache get: %w", err)
	}
	return val, nil
}

// Drop removes the token's entry.
func (c *SessionCache) Drop(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("session cache del: %w", err)
	}
	return nil
}

func (c *SessionCache) key(token string) string {
	return "session:" + token
}
