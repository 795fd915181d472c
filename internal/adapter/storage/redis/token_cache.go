package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundflow/internal/gateway"

	goredis "github.com/redis/go-redis/v9"
)

var _ gateway.TokenCache = (*TokenCache)(nil)

// TokenCache shares provider bearer tokens across instances so each gateway
// account logs in once per token lifetime rather than once per process.
type TokenCache struct {
	client *goredis.Client
	prefix string
}

// NewTokenCache creates a Redis-backed gateway token cache.
func NewTokenCache(client *goredis.Client) *TokenCache {
	return &TokenCache{
		client: client,
		prefix: "gwtoken:",
	}
}

// GetToken returns ("", false, nil) when no live token is cached.
func (c *TokenCache) GetToken(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis token get: %w", err)
	}
	return val, true, nil
}

func (c *TokenCache) SetToken(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis token set: %w", err)
	}
	return nil
}

func (c *TokenCache) DeleteToken(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis token delete: %w", err)
	}
	return nil
}
