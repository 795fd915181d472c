package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundflow/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

var _ ports.WebhookDeduper = (*WebhookDeduper)(nil)

// WebhookDeduper implements ports.WebhookDeduper using Redis SET NX.
type WebhookDeduper struct {
	client *goredis.Client
	prefix string
}

// NewWebhookDeduper creates a Redis-backed callback deduper.
func NewWebhookDeduper(client *goredis.Client) *WebhookDeduper {
	return &WebhookDeduper{
		client: client,
		prefix: "webhook:",
	}
}

// CheckAndSet atomically records key. Returns true if the key is new, false if it was already seen.
func (s *WebhookDeduper) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis webhook dedupe: %w", err)
	}
	return result == "OK", nil
}

// Release drops key after a failed processing run so the provider's retry is accepted.
func (s *WebhookDeduper) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis webhook release: %w", err)
	}
	return nil
}
