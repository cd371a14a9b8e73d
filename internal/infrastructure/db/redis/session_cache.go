package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "sv_session:"

// SessionCache is the local session cache: one raw record per client key.
// Records are stored verbatim so unreadable ones can be detected and
// removed by the resolver.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a cache whose records expire after ttl. A zero
// ttl keeps records until they are deleted.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

func (c *SessionCache) Get(ctx context.Context, clientKey string) (string, bool, error) {
	raw, err := c.client.Get(ctx, sessionKey(clientKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session cache get: %w", err)
	}
	return raw, true, nil
}

func (c *SessionCache) Set(ctx context.Context, clientKey, raw string) error {
	if err := c.client.Set(ctx, sessionKey(clientKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}

// Delete is idempotent.
func (c *SessionCache) Delete(ctx context.Context, clientKey string) error {
	if err := c.client.Del(ctx, sessionKey(clientKey)).Err(); err != nil {
		return fmt.Errorf("session cache delete: %w", err)
	}
	return nil
}

func sessionKey(clientKey string) string {
	return sessionKeyPrefix + clientKey
}
